package graduation

import (
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/curve"
	"github.com/rovshanmuradov/token-lp/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubAmm struct {
	pool       solana.PublicKey
	createErr  error
	burnCalled bool
}

func (s *stubAmm) DerivePoolAddress(solana.PublicKey) (solana.PublicKey, error) {
	return s.pool, nil
}

func (s *stubAmm) CreatePool(_ solana.PublicKey, quoteAmount, baseAmount uint64) (LPReceipt, error) {
	if s.createErr != nil {
		return LPReceipt{}, s.createErr
	}
	return LPReceipt{Pool: s.pool, Amount: quoteAmount + baseAmount}, nil
}

func (s *stubAmm) BurnReceipt(LPReceipt) error {
	s.burnCalled = true
	return nil
}

func completedLedger(asset solana.PublicKey) *curve.Ledger {
	ledger := curve.NewLedger(asset, solana.NewWallet().PublicKey(), curve.Seed{
		VirtualQuote: 30_000_000_000,
		VirtualBase:  1_073_000_000_000_000,
		RealBase:     793_100_000_000_000,
		TotalSupply:  1_000_000_000_000_000,
	}, time.Now())
	ledger.RealQuoteReserves = 85_000_000_000
	ledger.RealBase = 200_000_000_000_000
	ledger.Completed = true
	return ledger
}

func TestMigrateRequiresCompletion(t *testing.T) {
	v := vault.New()
	coord := NewCoordinator(v, &stubAmm{}, zaptest.NewLogger(t))

	asset := solana.NewWallet().PublicKey()
	ledger := completedLedger(asset)
	ledger.Completed = false

	_, err := coord.Migrate(ledger, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrCurveNotCompleted)

	ledger.Completed = true
	ledger.Migrated = true
	_, err = coord.Migrate(ledger, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrAlreadyMigrated)
}

func TestMigrateMovesLiquidityAndBurnsReceipt(t *testing.T) {
	v := vault.New()
	amm := &stubAmm{pool: solana.NewWallet().PublicKey()}
	coord := NewCoordinator(v, amm, zaptest.NewLogger(t))

	asset := solana.NewWallet().PublicKey()
	ledger := completedLedger(asset)
	curveAddr := solana.NewWallet().PublicKey()
	feeVault := solana.NewWallet().PublicKey()

	v.Deposit(curveAddr, ledger.RealQuoteReserves)
	require.NoError(t, v.NewBatch().MintTokens(asset, curveAddr, ledger.RealBase).Apply())

	pool, err := coord.Migrate(ledger, curveAddr, feeVault)
	require.NoError(t, err)
	assert.Equal(t, amm.pool, pool)
	assert.True(t, ledger.Migrated)
	assert.True(t, amm.burnCalled)

	assert.Equal(t, uint64(MigrationFee), v.Balance(feeVault))
	assert.Equal(t, ledger.RealQuoteReserves-MigrationFee, v.Balance(pool))
	assert.Equal(t, ledger.RealBase, v.TokenBalance(asset, pool))
	assert.Zero(t, v.Balance(curveAddr))
	assert.Zero(t, v.TokenBalance(asset, curveAddr))
}

func TestMigrateRollsBackOnPoolFailure(t *testing.T) {
	v := vault.New()
	amm := &stubAmm{pool: solana.NewWallet().PublicKey(), createErr: errors.New("pool rejected deposit")}
	coord := NewCoordinator(v, amm, zaptest.NewLogger(t))

	asset := solana.NewWallet().PublicKey()
	ledger := completedLedger(asset)
	curveAddr := solana.NewWallet().PublicKey()
	feeVault := solana.NewWallet().PublicKey()

	v.Deposit(curveAddr, ledger.RealQuoteReserves)
	require.NoError(t, v.NewBatch().MintTokens(asset, curveAddr, ledger.RealBase).Apply())

	_, err := coord.Migrate(ledger, curveAddr, feeVault)
	require.Error(t, err)

	assert.False(t, ledger.Migrated)
	assert.False(t, amm.burnCalled)
	assert.Equal(t, ledger.RealQuoteReserves, v.Balance(curveAddr))
	assert.Equal(t, ledger.RealBase, v.TokenBalance(asset, curveAddr))
	assert.Zero(t, v.Balance(feeVault))
	assert.Zero(t, v.Balance(amm.pool))
}
