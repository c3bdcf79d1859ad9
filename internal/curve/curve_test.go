package curve

import (
	"math"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/mathx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Launch-default reserves: 30 SOL virtual quote against 1.073B tokens with
// six decimals, 1% trade fee already removed from the input.
func TestQuoteBuyLaunchDefaults(t *testing.T) {
	virtualQuote := uint64(30_000_000_000)
	virtualBase := uint64(1_073_000_000_000_000)
	netIn := uint64(990_000_000) // 1 SOL minus the 1% fee

	out, err := QuoteBuy(virtualQuote, virtualBase, netIn)
	require.NoError(t, err)
	assert.Equal(t, uint64(34_277_831_558_567), out)
}

func TestQuoteBuyMatchesFormula(t *testing.T) {
	cases := []struct {
		vq, vb, in uint64
	}{
		{30_000_000_000, 1_073_000_000_000_000, 1},
		{30_000_000_000, 1_073_000_000_000_000, 500_000_000},
		{1, 1, 1},
		{12_345, 67_890, 11},
	}
	for _, tc := range cases {
		out, err := QuoteBuy(tc.vq, tc.vb, tc.in)
		require.NoError(t, err)
		want, err := mathx.MulDiv(tc.vb, tc.in, tc.vq+tc.in)
		require.NoError(t, err)
		assert.Equal(t, want, out)
	}
}

// Buying then immediately selling the same tokens back must never return
// more quote than went in, even before fees.
func TestRoundTripNeverProfits(t *testing.T) {
	ledger := testLedger()
	netIn := uint64(990_000_000)

	baseOut, err := QuoteBuy(ledger.VirtualQuote, ledger.VirtualBase, netIn)
	require.NoError(t, err)

	_, err = ledger.ApplyBuy(netIn, baseOut, math.MaxUint64)
	require.NoError(t, err)

	sellOut, err := QuoteSell(ledger.VirtualQuote, ledger.VirtualBase, baseOut)
	require.NoError(t, err)
	assert.LessOrEqual(t, sellOut, netIn)
}

func TestApplyBuyUpdatesAllReserves(t *testing.T) {
	ledger := testLedger()
	vq, vb := ledger.VirtualQuote, ledger.VirtualBase
	rb := ledger.RealBase

	completed, err := ledger.ApplyBuy(1_000, 2_000, math.MaxUint64)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, vq+1_000, ledger.VirtualQuote)
	assert.Equal(t, vb-2_000, ledger.VirtualBase)
	assert.Equal(t, uint64(1_000), ledger.RealQuoteReserves)
	assert.Equal(t, rb-2_000, ledger.RealBase)
}

func TestApplyBuyOverflowLeavesStateUntouched(t *testing.T) {
	ledger := testLedger()
	before := *ledger

	// baseOut larger than the virtual base reserve underflows.
	_, err := ledger.ApplyBuy(1, ledger.VirtualBase+1, math.MaxUint64)
	assert.ErrorIs(t, err, mathx.ErrOverflow)
	assert.Equal(t, before, *ledger)
}

func TestApplySellOverflowLeavesStateUntouched(t *testing.T) {
	ledger := testLedger()
	before := *ledger

	// No quote has ever flowed in, so any grossOut underflows RealQuoteReserves.
	_, err := ledger.ApplySell(1, 1, math.MaxUint64)
	assert.ErrorIs(t, err, mathx.ErrOverflow)
	assert.Equal(t, before, *ledger)
}

func TestGraduationBoundary(t *testing.T) {
	threshold := uint64(85_000_000_000)

	// One lamport below the threshold does not graduate.
	ledger := testLedger()
	completed, err := ledger.ApplyBuy(threshold-1, 1, threshold)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.False(t, ledger.Completed)

	// Landing exactly on the threshold does.
	completed, err = ledger.ApplyBuy(1, 1, threshold)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.True(t, ledger.Completed)

	// The flag never reports a second crossing.
	completed, err = ledger.ApplyBuy(1, 1, threshold)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.True(t, ledger.Completed)
}

func testLedger() *Ledger {
	return NewLedger(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), Seed{
		VirtualQuote: 30_000_000_000,
		VirtualBase:  1_073_000_000_000_000,
		RealBase:     793_100_000_000_000,
		TotalSupply:  1_000_000_000_000_000,
	}, time.Now())
}
