package engine

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/vault"
	"go.uber.org/zap"
)

// RegisterReferral creates the referrer's record account at its derived
// address, funded to its rent floor by the referrer. Registering twice is a
// no-op returning the same address.
func (e *Engine) RegisterReferral(referrer solana.PublicKey) (solana.PublicKey, error) {
	addr, created, err := e.book.Register(referrer)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !created {
		return addr, nil
	}

	floor := vault.MinimumBalance(referralAccountSize)
	e.vault.EnsureAccount(addr, floor)
	err = e.vault.NewBatch().
		TransferLamports(referrer, addr, floor).
		Apply()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to fund referral account: %w", err)
	}

	e.logger.Info("Referral registered",
		zap.String("referrer", referrer.String()),
		zap.String("record", addr.String()))
	return addr, nil
}

// ClaimReferralFees sweeps the referral record's balance above its rent floor
// back to the referrer.
func (e *Engine) ClaimReferralFees(referrer solana.PublicKey) (uint64, error) {
	addr, err := e.book.DeriveAddress(referrer)
	if err != nil {
		return 0, err
	}
	if _, err := e.book.Resolve(addr); err != nil {
		return 0, err
	}

	balance := e.vault.Balance(addr)
	floor := e.vault.RentFloor(addr)
	if balance <= floor {
		return 0, ErrNotEnoughLamports
	}
	amount := balance - floor

	err = e.vault.NewBatch().
		TransferLamports(addr, referrer, amount).
		Apply()
	if err != nil {
		return 0, fmt.Errorf("failed to claim referral fees: %w", err)
	}

	e.logger.Info("Referral fees claimed",
		zap.String("referrer", referrer.String()),
		zap.Uint64("amount", amount))
	return amount, nil
}

// resolveReferral validates a claimed referral record address. The zero key
// means no referral.
func (e *Engine) resolveReferral(claimed solana.PublicKey) (solana.PublicKey, bool, error) {
	if claimed.IsZero() {
		return solana.PublicKey{}, false, nil
	}
	if _, err := e.book.Resolve(claimed); err != nil {
		return solana.PublicKey{}, false, err
	}
	return claimed, true, nil
}

// creditReferral bumps the record's accounting after a settled disbursement.
func (e *Engine) creditReferral(addr solana.PublicKey, amount uint64) {
	if err := e.book.Credit(addr, amount); err != nil {
		e.logger.Warn("Failed to credit referral record",
			zap.String("record", addr.String()),
			zap.Error(err))
	}
}
