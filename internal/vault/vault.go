// Package vault models the custody layer the engine delegates transfers to:
// lamport balances with rent floors and token balances per (asset, holder).
// Mutations go through a Batch that validates every step against a scratch
// copy before committing, which is what makes a failed trade side-effect
// free.
package vault

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Solana rent parameters: every account owes (overhead + data length) bytes
// at the byte-year rate, held for the two-year exemption window.
const (
	accountStorageOverhead = 128
	lamportsPerByteYear    = 3_480
	rentExemptionYears     = 2
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBelowRentFloor is returned when a debit would leave an account
	// below its rent-exemption minimum.
	ErrBelowRentFloor = errors.New("balance would drop below rent floor")
	// ErrUnknownAccount is returned for operations on accounts that were
	// never created.
	ErrUnknownAccount = errors.New("unknown account")
)

// MinimumBalance returns the rent-exempt floor for an account holding
// dataLen bytes.
func MinimumBalance(dataLen uint64) uint64 {
	return (dataLen + accountStorageOverhead) * lamportsPerByteYear * rentExemptionYears
}

// Vault is the in-process custody ledger.
type Vault struct {
	mu       sync.Mutex
	lamports map[solana.PublicKey]uint64
	floors   map[solana.PublicKey]uint64
	tokens   map[solana.PublicKey]map[solana.PublicKey]uint64 // asset -> holder -> amount
}

// New returns an empty vault.
func New() *Vault {
	return &Vault{
		lamports: make(map[solana.PublicKey]uint64),
		floors:   make(map[solana.PublicKey]uint64),
		tokens:   make(map[solana.PublicKey]map[solana.PublicKey]uint64),
	}
}

// EnsureAccount registers addr with the given rent floor. Existing accounts
// keep their balance; the floor is only ever raised, never lowered.
func (v *Vault) EnsureAccount(addr solana.PublicKey, floor uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.lamports[addr]; !ok {
		v.lamports[addr] = 0
	}
	if floor > v.floors[addr] {
		v.floors[addr] = floor
	}
}

// Deposit credits lamports arriving from outside the engine.
func (v *Vault) Deposit(addr solana.PublicKey, amount uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lamports[addr] += amount
}

// Balance returns the lamport balance of addr.
func (v *Vault) Balance(addr solana.PublicKey) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lamports[addr]
}

// RentFloor returns the rent-exemption minimum registered for addr.
func (v *Vault) RentFloor(addr solana.PublicKey) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.floors[addr]
}

// TokenBalance returns holder's balance of the given asset.
func (v *Vault) TokenBalance(asset, holder solana.PublicKey) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tokens[asset][holder]
}

type stepKind uint8

const (
	stepTransferLamports stepKind = iota
	stepTransferTokens
	stepMintTokens
	stepBurnTokens
)

type step struct {
	kind     stepKind
	asset    solana.PublicKey
	from, to solana.PublicKey
	amount   uint64
}

// Batch stages transfers that are later applied as a unit: either every step
// commits or none does.
type Batch struct {
	vault *Vault
	steps []step
}

// NewBatch starts an empty batch against the vault.
func (v *Vault) NewBatch() *Batch {
	return &Batch{vault: v}
}

// TransferLamports stages a lamport move.
func (b *Batch) TransferLamports(from, to solana.PublicKey, amount uint64) *Batch {
	b.steps = append(b.steps, step{kind: stepTransferLamports, from: from, to: to, amount: amount})
	return b
}

// TransferTokens stages a token move for one asset.
func (b *Batch) TransferTokens(asset, from, to solana.PublicKey, amount uint64) *Batch {
	b.steps = append(b.steps, step{kind: stepTransferTokens, asset: asset, from: from, to: to, amount: amount})
	return b
}

// MintTokens stages creation of new token units in to's custody.
func (b *Batch) MintTokens(asset, to solana.PublicKey, amount uint64) *Batch {
	b.steps = append(b.steps, step{kind: stepMintTokens, asset: asset, to: to, amount: amount})
	return b
}

// BurnTokens stages destruction of token units held by from.
func (b *Batch) BurnTokens(asset, from solana.PublicKey, amount uint64) *Batch {
	b.steps = append(b.steps, step{kind: stepBurnTokens, asset: asset, from: from, amount: amount})
	return b
}

// Apply validates the whole batch against scratch copies of the touched
// balances and only then commits. An error means the vault is unchanged.
func (b *Batch) Apply() error {
	v := b.vault
	v.mu.Lock()
	defer v.mu.Unlock()

	lamports := make(map[solana.PublicKey]uint64)
	tokens := make(map[solana.PublicKey]map[solana.PublicKey]uint64)

	lamportsOf := func(addr solana.PublicKey) uint64 {
		if bal, ok := lamports[addr]; ok {
			return bal
		}
		return v.lamports[addr]
	}
	tokensOf := func(asset, holder solana.PublicKey) uint64 {
		if m, ok := tokens[asset]; ok {
			if bal, ok := m[holder]; ok {
				return bal
			}
		}
		return v.tokens[asset][holder]
	}
	setTokens := func(asset, holder solana.PublicKey, bal uint64) {
		if tokens[asset] == nil {
			tokens[asset] = make(map[solana.PublicKey]uint64)
		}
		tokens[asset][holder] = bal
	}

	for i, s := range b.steps {
		switch s.kind {
		case stepTransferLamports:
			bal := lamportsOf(s.from)
			if bal < s.amount {
				return fmt.Errorf("step %d: debit %d from %s: %w", i, s.amount, s.from, ErrInsufficientFunds)
			}
			if bal-s.amount < v.floors[s.from] {
				return fmt.Errorf("step %d: debit %d from %s: %w", i, s.amount, s.from, ErrBelowRentFloor)
			}
			lamports[s.from] = bal - s.amount
			lamports[s.to] = lamportsOf(s.to) + s.amount
		case stepTransferTokens:
			bal := tokensOf(s.asset, s.from)
			if bal < s.amount {
				return fmt.Errorf("step %d: token debit %d from %s: %w", i, s.amount, s.from, ErrInsufficientFunds)
			}
			setTokens(s.asset, s.from, bal-s.amount)
			setTokens(s.asset, s.to, tokensOf(s.asset, s.to)+s.amount)
		case stepMintTokens:
			setTokens(s.asset, s.to, tokensOf(s.asset, s.to)+s.amount)
		case stepBurnTokens:
			bal := tokensOf(s.asset, s.from)
			if bal < s.amount {
				return fmt.Errorf("step %d: burn %d from %s: %w", i, s.amount, s.from, ErrInsufficientFunds)
			}
			setTokens(s.asset, s.from, bal-s.amount)
		}
	}

	for addr, bal := range lamports {
		v.lamports[addr] = bal
	}
	for asset, holders := range tokens {
		if v.tokens[asset] == nil {
			v.tokens[asset] = make(map[solana.PublicKey]uint64)
		}
		for holder, bal := range holders {
			v.tokens[asset][holder] = bal
		}
	}
	return nil
}
