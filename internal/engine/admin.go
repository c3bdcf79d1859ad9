package engine

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/global"
	"go.uber.org/zap"
)

// InitGlobalConfig creates the global config with launch defaults. Only the
// pre-provisioned deployer identity may call it, once.
func (e *Engine) InitGlobalConfig(operator solana.PublicKey) error {
	if err := e.cfg.Initialize(operator); err != nil {
		return err
	}
	e.logger.Info("Global config initialized",
		zap.String("authority", operator.String()))
	return nil
}

// UpdateGlobalConfig applies a partial config update on behalf of the
// authority. A validation failure leaves every field unchanged.
func (e *Engine) UpdateGlobalConfig(operator solana.PublicKey, upd global.Update) error {
	return e.cfg.Apply(operator, upd)
}

// GlobalConfig returns the current config snapshot.
func (e *Engine) GlobalConfig() (global.Snapshot, error) {
	return e.cfg.Snapshot()
}

// WithdrawProtocolFees sweeps the fee vault's balance above its rent floor to
// the configured fee receiver. The operator must be the authority and the
// recipient must match the configured receiver.
func (e *Engine) WithdrawProtocolFees(operator, recipient solana.PublicKey) (uint64, error) {
	snap, err := e.cfg.Snapshot()
	if err != nil {
		return 0, err
	}
	if !operator.Equals(snap.Authority) {
		return 0, global.ErrUnauthorized
	}
	if !recipient.Equals(snap.FeeReceiver) {
		return 0, global.ErrUnauthorized
	}

	balance := e.vault.Balance(e.feeVault)
	floor := e.vault.RentFloor(e.feeVault)
	if balance <= floor {
		return 0, ErrNotEnoughLamports
	}
	amount := balance - floor

	err = e.vault.NewBatch().
		TransferLamports(e.feeVault, recipient, amount).
		Apply()
	if err != nil {
		return 0, fmt.Errorf("failed to withdraw protocol fees: %w", err)
	}

	e.logger.Info("Protocol fees withdrawn",
		zap.String("recipient", recipient.String()),
		zap.Uint64("amount", amount))
	return amount, nil
}
