// Package referral tracks referral registrations and cumulative earnings.
// Records live at a deterministic address derived from the referrer identity;
// a claimed record is never trusted until its address has been re-derived and
// matched, the same way the on-chain program validates the referral PDA.
package referral

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Seed prefixes the derivation of every referral record address.
var Seed = []byte("referral")

var (
	// ErrInvalidReferral is returned when a claimed record address does
	// not match the address derived from the referrer it names.
	ErrInvalidReferral = errors.New("invalid referral")
	// ErrNotRegistered is returned when no record exists at an address.
	ErrNotRegistered = errors.New("referral not registered")
)

// Record is one referrer's bookkeeping entry. TotalEarned and TradeCount
// only ever grow.
type Record struct {
	Referrer    solana.PublicKey
	TotalEarned uint64
	TradeCount  uint64
}

// Book is the registry of referral records, keyed by derived address.
type Book struct {
	mu        sync.RWMutex
	programID solana.PublicKey
	records   map[solana.PublicKey]*Record
}

// NewBook creates an empty registry deriving addresses under programID.
func NewBook(programID solana.PublicKey) *Book {
	return &Book{
		programID: programID,
		records:   make(map[solana.PublicKey]*Record),
	}
}

// DeriveAddress returns the canonical record address for a referrer.
func (b *Book) DeriveAddress(referrer solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{Seed, referrer.Bytes()}, b.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive referral address: %w", err)
	}
	return addr, nil
}

// Register creates a record for the referrer if none exists yet and returns
// its derived address. Registering twice is a no-op; created reports whether
// this call brought the record into existence.
func (b *Book) Register(referrer solana.PublicKey) (addr solana.PublicKey, created bool, err error) {
	addr, err = b.DeriveAddress(referrer)
	if err != nil {
		return solana.PublicKey{}, false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.records[addr]; !ok {
		b.records[addr] = &Record{Referrer: referrer}
		created = true
	}
	return addr, created, nil
}

// Resolve validates a claimed record address and returns a copy of the
// record behind it. The record's referrer is used to re-derive the expected
// address; a mismatch means the caller handed us a forged or stale account.
func (b *Book) Resolve(claimed solana.PublicKey) (Record, error) {
	b.mu.RLock()
	rec, ok := b.records[claimed]
	b.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotRegistered
	}

	expected, err := b.DeriveAddress(rec.Referrer)
	if err != nil {
		return Record{}, err
	}
	if !claimed.Equals(expected) {
		return Record{}, ErrInvalidReferral
	}
	return *rec, nil
}

// Credit records a paid-out referral fee against the record at addr.
func (b *Book) Credit(addr solana.PublicKey, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records[addr]
	if !ok {
		return ErrNotRegistered
	}
	rec.TotalEarned += amount
	rec.TradeCount++
	return nil
}
