// Package global holds the process-wide launchpad configuration: fee rates,
// bonding-curve seed values, the graduation threshold and the pause flag.
// The record is created once by the deployer and mutated one field at a time
// by the authority; trades read a single consistent snapshot per operation.
package global

import (
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Launch defaults, applied by Initialize. Quote amounts are lamports, base
// amounts are token units with six decimals.
const (
	LamportsPerSol      = 1_000_000_000
	TokenDecimalsFactor = 1_000_000

	DefaultVirtualQuote        = 30 * LamportsPerSol
	DefaultVirtualBase         = 1_073_000_000 * TokenDecimalsFactor
	DefaultRealBase            = 793_100_000 * TokenDecimalsFactor
	DefaultTotalSupply         = 1_000_000_000 * TokenDecimalsFactor
	DefaultTradeFeeBps         = 100   // 1%
	DefaultCreatorShareBps     = 6_500 // 65% of the fee
	DefaultReferralShareBps    = 1_000 // 10% of the fee remainder
	DefaultGraduationThreshold = 85 * LamportsPerSol

	// MaxTradeFeeBps caps the trade fee at 50%.
	MaxTradeFeeBps = 5_000
	// maxCombinedShareBps bounds creator + referral shares together.
	maxCombinedShareBps = 10_000
)

var (
	// ErrUnauthorized is returned when the operator is not allowed to
	// perform an admin operation.
	ErrUnauthorized = errors.New("unauthorized operator")
	// ErrInvalidConfigParam is returned when an updated field fails
	// validation; the previous value is kept.
	ErrInvalidConfigParam = errors.New("invalid config param")
	// ErrAlreadyInitialized is returned on a second Initialize.
	ErrAlreadyInitialized = errors.New("config already initialized")
	// ErrNotInitialized is returned when the config is read or updated
	// before Initialize.
	ErrNotInitialized = errors.New("config not initialized")
)

// Status gates trading process-wide.
type Status uint8

const (
	StatusRunning Status = iota
	StatusPaused
)

// Snapshot is one consistent value of the config, read once at the start of
// an operation and never re-read mid-operation.
type Snapshot struct {
	Authority   solana.PublicKey
	FeeReceiver solana.PublicKey

	InitialVirtualQuote uint64
	InitialVirtualBase  uint64
	InitialRealBase     uint64
	TotalSupply         uint64

	TradeFeeBps      uint16
	CreatorShareBps  uint16
	ReferralShareBps uint16

	GraduationThreshold uint64
	Status              Status
}

// Update carries the optional fields of a partial config update. Nil fields
// are left unchanged; each supplied field is validated independently and the
// whole update is rejected on the first violation.
type Update struct {
	FeeReceiver         *solana.PublicKey
	InitialVirtualQuote *uint64
	InitialVirtualBase  *uint64
	InitialRealBase     *uint64
	TotalSupply         *uint64
	TradeFeeBps         *uint16
	CreatorShareBps     *uint16
	ReferralShareBps    *uint16
	GraduationThreshold *uint64
	Status              *Status
}

// Config is the singleton record. All access goes through the mutex so a
// concurrent multi-field update can never produce a torn read.
type Config struct {
	mu          sync.RWMutex
	initialized bool
	current     Snapshot

	deployer solana.PublicKey
}

// New returns an uninitialized config that only the given deployer identity
// may initialize.
func New(deployer solana.PublicKey) *Config {
	return &Config{deployer: deployer}
}

// Initialize creates the singleton with launch defaults. The operator must
// match the pre-provisioned deployer identity and becomes the authority and
// initial fee receiver.
func (c *Config) Initialize(operator solana.PublicKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return ErrAlreadyInitialized
	}
	if !operator.Equals(c.deployer) {
		return ErrUnauthorized
	}

	c.current = Snapshot{
		Authority:           operator,
		FeeReceiver:         operator,
		InitialVirtualQuote: DefaultVirtualQuote,
		InitialVirtualBase:  DefaultVirtualBase,
		InitialRealBase:     DefaultRealBase,
		TotalSupply:         DefaultTotalSupply,
		TradeFeeBps:         DefaultTradeFeeBps,
		CreatorShareBps:     DefaultCreatorShareBps,
		ReferralShareBps:    DefaultReferralShareBps,
		GraduationThreshold: DefaultGraduationThreshold,
		Status:              StatusRunning,
	}
	c.initialized = true
	return nil
}

// Snapshot returns the current config value. Callers take exactly one
// snapshot per operation.
func (c *Config) Snapshot() (Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.initialized {
		return Snapshot{}, ErrNotInitialized
	}
	return c.current, nil
}

// Apply validates and applies a partial update under a single lock. A
// validation failure leaves every field at its previous value.
func (c *Config) Apply(operator solana.PublicKey, upd Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return ErrNotInitialized
	}
	if !operator.Equals(c.current.Authority) {
		return ErrUnauthorized
	}

	next := c.current

	if upd.FeeReceiver != nil {
		next.FeeReceiver = *upd.FeeReceiver
	}
	if upd.InitialVirtualQuote != nil {
		if *upd.InitialVirtualQuote == 0 {
			return ErrInvalidConfigParam
		}
		next.InitialVirtualQuote = *upd.InitialVirtualQuote
	}
	if upd.InitialVirtualBase != nil {
		if *upd.InitialVirtualBase == 0 {
			return ErrInvalidConfigParam
		}
		next.InitialVirtualBase = *upd.InitialVirtualBase
	}
	if upd.InitialRealBase != nil {
		if *upd.InitialRealBase == 0 {
			return ErrInvalidConfigParam
		}
		next.InitialRealBase = *upd.InitialRealBase
	}
	if upd.TotalSupply != nil {
		if *upd.TotalSupply == 0 {
			return ErrInvalidConfigParam
		}
		next.TotalSupply = *upd.TotalSupply
	}
	if upd.TradeFeeBps != nil {
		if *upd.TradeFeeBps > MaxTradeFeeBps {
			return ErrInvalidConfigParam
		}
		next.TradeFeeBps = *upd.TradeFeeBps
	}
	if upd.CreatorShareBps != nil {
		next.CreatorShareBps = *upd.CreatorShareBps
		if uint32(next.CreatorShareBps)+uint32(next.ReferralShareBps) > maxCombinedShareBps {
			return ErrInvalidConfigParam
		}
	}
	if upd.ReferralShareBps != nil {
		next.ReferralShareBps = *upd.ReferralShareBps
		if uint32(next.CreatorShareBps)+uint32(next.ReferralShareBps) > maxCombinedShareBps {
			return ErrInvalidConfigParam
		}
	}
	if upd.GraduationThreshold != nil {
		if *upd.GraduationThreshold == 0 {
			return ErrInvalidConfigParam
		}
		next.GraduationThreshold = *upd.GraduationThreshold
	}
	if upd.Status != nil {
		if *upd.Status != StatusRunning && *upd.Status != StatusPaused {
			return ErrInvalidConfigParam
		}
		next.Status = *upd.Status
	}

	c.current = next
	return nil
}

// CurveSeed returns the seed values a newly created curve snapshots.
func (s Snapshot) CurveSeed() (virtualQuote, virtualBase, realBase, totalSupply uint64) {
	return s.InitialVirtualQuote, s.InitialVirtualBase, s.InitialRealBase, s.TotalSupply
}
