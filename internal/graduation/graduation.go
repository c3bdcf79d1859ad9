// Package graduation drives the end of a curve's life: detecting the
// completed state set by trading and executing the one-time migration that
// hands the accumulated liquidity to an external AMM and renounces the LP
// position.
package graduation

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/curve"
	"github.com/rovshanmuradov/token-lp/internal/mathx"
	"github.com/rovshanmuradov/token-lp/internal/vault"
	"go.uber.org/zap"
)

// MigrationFee is deducted from curve custody into the protocol fee vault
// before the remaining collateral is deposited, in lamports.
const MigrationFee = 500_000_000

var (
	// ErrCurveNotCompleted is returned when migrating a curve still trading.
	ErrCurveNotCompleted = errors.New("bonding curve not completed")
	// ErrAlreadyMigrated is returned on a second migration attempt.
	ErrAlreadyMigrated = errors.New("bonding curve already migrated")
)

// State is the lifecycle position of one curve.
type State uint8

const (
	StateTrading State = iota
	StateCompleted
	StateMigrated
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateTrading:
		return "trading"
	case StateCompleted:
		return "completed"
	case StateMigrated:
		return "migrated"
	default:
		return "unknown"
	}
}

// StateOf reads a curve's lifecycle state from its flags.
func StateOf(ledger *curve.Ledger) State {
	switch {
	case ledger.Migrated:
		return StateMigrated
	case ledger.Completed:
		return StateCompleted
	default:
		return StateTrading
	}
}

// LPReceipt is the proof of an initial liquidity deposit. Burning it is the
// protocol renouncing any claim to the migrated liquidity.
type LPReceipt struct {
	Pool   solana.PublicKey
	Amount uint64
}

// AmmClient is the narrow view of the external AMM the migration consumes.
type AmmClient interface {
	// DerivePoolAddress returns the deterministic pool address for an
	// asset without creating anything.
	DerivePoolAddress(asset solana.PublicKey) (solana.PublicKey, error)
	// CreatePool opens a pool seeded with the deposited amounts and
	// returns the LP receipt for the minted supply.
	CreatePool(asset solana.PublicKey, quoteAmount, baseAmount uint64) (LPReceipt, error)
	// BurnReceipt permanently destroys the LP position.
	BurnReceipt(receipt LPReceipt) error
}

// Coordinator executes migrations. The caller is responsible for holding the
// per-asset lock of the curve being migrated.
type Coordinator struct {
	vault  *vault.Vault
	amm    AmmClient
	logger *zap.Logger
}

// NewCoordinator wires a coordinator against the custody vault and AMM.
func NewCoordinator(v *vault.Vault, amm AmmClient, logger *zap.Logger) *Coordinator {
	return &Coordinator{vault: v, amm: amm, logger: logger.Named("graduation")}
}

// Migrate moves a completed curve's collateral and remaining base custody
// into a fresh AMM pool, burns the LP receipt and marks the curve migrated.
// The transfers and the flag flip succeed or fail together.
func (c *Coordinator) Migrate(ledger *curve.Ledger, curveAddr, feeVault solana.PublicKey) (solana.PublicKey, error) {
	switch StateOf(ledger) {
	case StateTrading:
		return solana.PublicKey{}, ErrCurveNotCompleted
	case StateMigrated:
		return solana.PublicKey{}, ErrAlreadyMigrated
	}

	quoteDeposit, err := mathx.Sub(ledger.RealQuoteReserves, MigrationFee)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("migration fee exceeds real reserves: %w", err)
	}
	baseDeposit := c.vault.TokenBalance(ledger.AssetID, curveAddr)

	poolAddr, err := c.amm.DerivePoolAddress(ledger.AssetID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive pool address: %w", err)
	}

	err = c.vault.NewBatch().
		TransferLamports(curveAddr, feeVault, MigrationFee).
		TransferLamports(curveAddr, poolAddr, quoteDeposit).
		TransferTokens(ledger.AssetID, curveAddr, poolAddr, baseDeposit).
		Apply()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to move liquidity: %w", err)
	}

	receipt, err := c.amm.CreatePool(ledger.AssetID, quoteDeposit, baseDeposit)
	if err != nil {
		// Hand the funds back so the failed migration has no effect.
		rollback := c.vault.NewBatch().
			TransferLamports(feeVault, curveAddr, MigrationFee).
			TransferLamports(poolAddr, curveAddr, quoteDeposit).
			TransferTokens(ledger.AssetID, poolAddr, curveAddr, baseDeposit).
			Apply()
		if rollback != nil {
			c.logger.Error("Failed to roll back migration transfers",
				zap.String("asset", ledger.AssetID.String()),
				zap.Error(rollback))
		}
		return solana.PublicKey{}, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := c.amm.BurnReceipt(receipt); err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to burn lp receipt: %w", err)
	}

	ledger.Migrated = true

	c.logger.Info("Curve migrated to external AMM",
		zap.String("asset", ledger.AssetID.String()),
		zap.String("pool", receipt.Pool.String()),
		zap.Uint64("quote_deposited", quoteDeposit),
		zap.Uint64("base_deposited", baseDeposit),
		zap.Uint64("lp_burned", receipt.Amount))

	return receipt.Pool, nil
}
