// Package curve owns the per-asset bonding-curve ledger: the constant-product
// working reserves used for pricing and the real reserves backing custody.
// Quoting is pure; reserve mutation is checked and all-or-nothing.
package curve

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/mathx"
)

// AccountSize is the serialized size of a curve account: discriminator,
// mint, creator, six u64 fields, start time, two flags and a bump byte.
// The custody rent floor is derived from it.
const AccountSize = 8 + 32 + 32 + 8*6 + 8 + 1 + 1 + 1

// Ledger is the mutable state of one asset's bonding curve. It carries no
// lock of its own; the engine serializes all access per asset.
type Ledger struct {
	AssetID   solana.PublicKey
	CreatorID solana.PublicKey

	// Pricing reserves. Never directly withdrawable, seeded above the
	// real collateral to flatten early-price volatility.
	VirtualQuote uint64
	VirtualBase  uint64

	// RealQuoteReserves tracks net quote inflow from trades, RealBase the
	// base units still escrowed and sellable via the curve.
	RealQuoteReserves uint64
	RealBase          uint64

	TotalSupply uint64
	StartTime   time.Time

	Completed bool
	Migrated  bool
}

// Seed describes the initial reserve values snapshotted from the global
// config at asset-creation time.
type Seed struct {
	VirtualQuote uint64
	VirtualBase  uint64
	RealBase     uint64
	TotalSupply  uint64
}

// NewLedger creates a curve for one freshly minted asset.
func NewLedger(assetID, creatorID solana.PublicKey, seed Seed, now time.Time) *Ledger {
	return &Ledger{
		AssetID:      assetID,
		CreatorID:    creatorID,
		VirtualQuote: seed.VirtualQuote,
		VirtualBase:  seed.VirtualBase,
		RealBase:     seed.RealBase,
		TotalSupply:  seed.TotalSupply,
		StartTime:    now,
	}
}

// QuoteBuy returns the base amount received for quoteIn against the given
// virtual reserves: floor(virtualBase * quoteIn / (virtualQuote + quoteIn)).
// The floor always favors the curve, including exact fractional ties.
func QuoteBuy(virtualQuote, virtualBase, quoteIn uint64) (uint64, error) {
	denom, err := mathx.Add(virtualQuote, quoteIn)
	if err != nil {
		return 0, err
	}
	return mathx.MulDiv(virtualBase, quoteIn, denom)
}

// QuoteSell returns the gross quote amount received for baseIn:
// floor(virtualQuote * baseIn / (virtualBase + baseIn)).
func QuoteSell(virtualQuote, virtualBase, baseIn uint64) (uint64, error) {
	denom, err := mathx.Add(virtualBase, baseIn)
	if err != nil {
		return 0, err
	}
	return mathx.MulDiv(virtualQuote, baseIn, denom)
}

// ApplyBuy moves the reserves for a buy of baseOut against netIn quote. All
// four updates are computed before any is written, so a checked-arithmetic
// failure leaves the ledger untouched. Returns true when the trade pushed
// RealQuoteReserves across graduationThreshold and flipped Completed.
func (l *Ledger) ApplyBuy(netIn, baseOut, graduationThreshold uint64) (bool, error) {
	vq, err := mathx.Add(l.VirtualQuote, netIn)
	if err != nil {
		return false, err
	}
	vb, err := mathx.Sub(l.VirtualBase, baseOut)
	if err != nil {
		return false, err
	}
	rq, err := mathx.Add(l.RealQuoteReserves, netIn)
	if err != nil {
		return false, err
	}
	rb, err := mathx.Sub(l.RealBase, baseOut)
	if err != nil {
		return false, err
	}

	l.VirtualQuote = vq
	l.VirtualBase = vb
	l.RealQuoteReserves = rq
	l.RealBase = rb

	if !l.Completed && l.RealQuoteReserves >= graduationThreshold {
		l.Completed = true
		return true, nil
	}
	return false, nil
}

// ApplySell moves the reserves for a sell of baseIn for grossOut quote.
// Same atomicity contract as ApplyBuy.
func (l *Ledger) ApplySell(grossOut, baseIn, graduationThreshold uint64) (bool, error) {
	vq, err := mathx.Sub(l.VirtualQuote, grossOut)
	if err != nil {
		return false, err
	}
	vb, err := mathx.Add(l.VirtualBase, baseIn)
	if err != nil {
		return false, err
	}
	rq, err := mathx.Sub(l.RealQuoteReserves, grossOut)
	if err != nil {
		return false, err
	}
	rb, err := mathx.Add(l.RealBase, baseIn)
	if err != nil {
		return false, err
	}

	l.VirtualQuote = vq
	l.VirtualBase = vb
	l.RealQuoteReserves = rq
	l.RealBase = rb

	if !l.Completed && l.RealQuoteReserves >= graduationThreshold {
		l.Completed = true
		return true, nil
	}
	return false, nil
}
