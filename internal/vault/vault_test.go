package vault

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimumBalance(t *testing.T) {
	// A zero-data account owes rent on the 128-byte overhead alone.
	assert.Equal(t, uint64(890_880), MinimumBalance(0))
	assert.Greater(t, MinimumBalance(100), MinimumBalance(0))
}

func TestBatchAppliesAllSteps(t *testing.T) {
	v := New()
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	asset := solana.NewWallet().PublicKey()
	v.Deposit(a, 1_000)

	err := v.NewBatch().
		TransferLamports(a, b, 400).
		MintTokens(asset, a, 50).
		TransferTokens(asset, a, b, 20).
		Apply()
	require.NoError(t, err)

	assert.Equal(t, uint64(600), v.Balance(a))
	assert.Equal(t, uint64(400), v.Balance(b))
	assert.Equal(t, uint64(30), v.TokenBalance(asset, a))
	assert.Equal(t, uint64(20), v.TokenBalance(asset, b))
}

// A failing step anywhere in the batch leaves every balance as it was.
func TestBatchIsAllOrNothing(t *testing.T) {
	v := New()
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	asset := solana.NewWallet().PublicKey()
	v.Deposit(a, 1_000)

	err := v.NewBatch().
		TransferLamports(a, b, 400).
		TransferTokens(asset, a, b, 1). // a holds no tokens
		Apply()
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Equal(t, uint64(1_000), v.Balance(a))
	assert.Equal(t, uint64(0), v.Balance(b))
}

func TestBatchSeesEarlierStepsDuringValidation(t *testing.T) {
	v := New()
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	c := solana.NewWallet().PublicKey()
	v.Deposit(a, 100)

	// b starts empty but receives before it pays.
	err := v.NewBatch().
		TransferLamports(a, b, 100).
		TransferLamports(b, c, 60).
		Apply()
	require.NoError(t, err)
	assert.Equal(t, uint64(40), v.Balance(b))
	assert.Equal(t, uint64(60), v.Balance(c))
}

func TestRentFloorBlocksDebit(t *testing.T) {
	v := New()
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	v.EnsureAccount(a, 500)
	v.Deposit(a, 1_000)

	err := v.NewBatch().TransferLamports(a, b, 600).Apply()
	assert.ErrorIs(t, err, ErrBelowRentFloor)
	assert.Equal(t, uint64(1_000), v.Balance(a))

	// Exactly down to the floor is allowed.
	require.NoError(t, v.NewBatch().TransferLamports(a, b, 500).Apply())
	assert.Equal(t, uint64(500), v.Balance(a))
}

func TestEnsureAccountNeverLowersFloor(t *testing.T) {
	v := New()
	a := solana.NewWallet().PublicKey()
	v.EnsureAccount(a, 500)
	v.EnsureAccount(a, 100)
	assert.Equal(t, uint64(500), v.RentFloor(a))
}

func TestBurnTokens(t *testing.T) {
	v := New()
	a := solana.NewWallet().PublicKey()
	asset := solana.NewWallet().PublicKey()

	require.NoError(t, v.NewBatch().MintTokens(asset, a, 100).Apply())
	require.NoError(t, v.NewBatch().BurnTokens(asset, a, 60).Apply())
	assert.Equal(t, uint64(40), v.TokenBalance(asset, a))

	assert.ErrorIs(t, v.NewBatch().BurnTokens(asset, a, 41).Apply(), ErrInsufficientFunds)
}
