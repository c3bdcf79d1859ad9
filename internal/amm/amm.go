// Package amm is the in-process stand-in for the external constant-product
// AMM that graduated curves migrate to. It exposes exactly the narrow
// interface the migration needs: deposit initial liquidity, receive an LP
// receipt, burn the receipt.
package amm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/token-lp/internal/graduation"
)

// poolSeed prefixes pool address derivation, one pool per asset.
var poolSeed = []byte("pool")

var (
	// ErrPoolExists is returned when a pool for the asset already exists.
	ErrPoolExists = errors.New("pool already exists")
	// ErrZeroLiquidity is returned when either initial deposit side is zero.
	ErrZeroLiquidity = errors.New("initial liquidity must be non-zero")
	// ErrUnknownReceipt is returned when burning a receipt for no known pool.
	ErrUnknownReceipt = errors.New("unknown lp receipt")
	// ErrReceiptSpent is returned when a receipt is burned twice.
	ErrReceiptSpent = errors.New("lp receipt already burned")
)

// Pool is one constant-product pool seeded by a migration.
type Pool struct {
	Asset        solana.PublicKey
	QuoteReserve uint64
	BaseReserve  uint64
	LPSupply     uint64
	LPBurned     bool
}

// Registry keeps every pool created through migrations.
type Registry struct {
	mu        sync.Mutex
	programID solana.PublicKey
	pools     map[solana.PublicKey]*Pool
}

var _ graduation.AmmClient = (*Registry)(nil)

// NewRegistry creates an empty pool registry under the given AMM program
// identity.
func NewRegistry(programID solana.PublicKey) *Registry {
	return &Registry{
		programID: programID,
		pools:     make(map[solana.PublicKey]*Pool),
	}
}

// DerivePoolAddress returns the deterministic pool address for an asset.
func (r *Registry) DerivePoolAddress(asset solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{poolSeed, asset.Bytes()}, r.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive pool address: %w", err)
	}
	return addr, nil
}

// CreatePool opens a pool for the asset with the deposited reserves and
// returns an LP receipt for the full minted supply, floor(sqrt(quote*base)).
func (r *Registry) CreatePool(asset solana.PublicKey, quoteAmount, baseAmount uint64) (graduation.LPReceipt, error) {
	if quoteAmount == 0 || baseAmount == 0 {
		return graduation.LPReceipt{}, ErrZeroLiquidity
	}

	addr, err := r.DerivePoolAddress(asset)
	if err != nil {
		return graduation.LPReceipt{}, err
	}

	k := new(uint256.Int).Mul(uint256.NewInt(quoteAmount), uint256.NewInt(baseAmount))
	lpSupply := k.Sqrt(k).Uint64()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[addr]; ok {
		return graduation.LPReceipt{}, ErrPoolExists
	}
	r.pools[addr] = &Pool{
		Asset:        asset,
		QuoteReserve: quoteAmount,
		BaseReserve:  baseAmount,
		LPSupply:     lpSupply,
	}
	return graduation.LPReceipt{Pool: addr, Amount: lpSupply}, nil
}

// BurnReceipt destroys the LP position named by the receipt, renouncing any
// claim to the pool's liquidity. A receipt burns exactly once.
func (r *Registry) BurnReceipt(receipt graduation.LPReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pool, ok := r.pools[receipt.Pool]
	if !ok {
		return ErrUnknownReceipt
	}
	if pool.LPBurned {
		return ErrReceiptSpent
	}
	pool.LPBurned = true
	return nil
}

// Lookup returns a copy of the pool at addr, if any.
func (r *Registry) Lookup(addr solana.PublicKey) (Pool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pool, ok := r.pools[addr]
	if !ok {
		return Pool{}, false
	}
	return *pool, true
}
