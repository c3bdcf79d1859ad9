// Package engine is the operation surface of the launchpad: it owns the
// registry of bonding curves, serializes access per asset, snapshots the
// global config once per operation and delegates custody moves to the vault
// as all-or-nothing batches.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/curve"
	"github.com/rovshanmuradov/token-lp/internal/events"
	"github.com/rovshanmuradov/token-lp/internal/global"
	"github.com/rovshanmuradov/token-lp/internal/graduation"
	"github.com/rovshanmuradov/token-lp/internal/referral"
	"github.com/rovshanmuradov/token-lp/internal/vault"
	"go.uber.org/zap"
)

// Program and deployer identities, fixed at deployment time.
var (
	ProgramID  = solana.MustPublicKeyFromBase58("HY3g1uQL2Zki1aFVJvJYZnMjZNveuMJhU22f9BucN3X")
	DeployerID = solana.MustPublicKeyFromBase58("69TwH2GJiBSA8Eo3DunPGsXGWjNFY267zRrpHptYWCuC")
)

// Address derivation seeds.
var (
	bondingCurveSeed = []byte("bonding-curve")
	feeVaultSeed     = []byte("fee-vault")
)

// Serialized account sizes, used to derive rent floors.
const referralAccountSize = 8 + 32 + 8 + 8 + 1

// Params configures a new engine. ProgramID and Deployer fall back to the
// fixed deployment identities when unset.
type Params struct {
	ProgramID solana.PublicKey
	Deployer  solana.PublicKey
	Vault     *vault.Vault
	Amm       graduation.AmmClient
	Bus       *events.Bus
	Logger    *zap.Logger

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

type curveEntry struct {
	mu     sync.Mutex
	ledger *curve.Ledger
	addr   solana.PublicKey // derived custody address of the curve
}

// Engine is the launchpad core. One instance hosts every curve; operations
// on different assets run concurrently, operations on the same asset are
// serialized by the per-curve mutex.
type Engine struct {
	programID solana.PublicKey
	cfg       *global.Config
	vault     *vault.Vault
	book      *referral.Book
	grad      *graduation.Coordinator
	bus       *events.Bus
	logger    *zap.Logger
	now       func() time.Time

	feeVault solana.PublicKey

	mu     sync.RWMutex
	curves map[solana.PublicKey]*curveEntry
}

// New builds an engine around the given collaborators.
func New(p Params) (*Engine, error) {
	if p.Vault == nil || p.Amm == nil || p.Bus == nil || p.Logger == nil {
		return nil, fmt.Errorf("engine requires vault, amm, bus and logger")
	}
	if p.ProgramID.IsZero() {
		p.ProgramID = ProgramID
	}
	if p.Deployer.IsZero() {
		p.Deployer = DeployerID
	}
	if p.Now == nil {
		p.Now = time.Now
	}

	feeVault, _, err := solana.FindProgramAddress([][]byte{feeVaultSeed}, p.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive fee vault address: %w", err)
	}

	e := &Engine{
		programID: p.ProgramID,
		cfg:       global.New(p.Deployer),
		vault:     p.Vault,
		book:      referral.NewBook(p.ProgramID),
		grad:      graduation.NewCoordinator(p.Vault, p.Amm, p.Logger),
		bus:       p.Bus,
		logger:    p.Logger.Named("engine"),
		now:       p.Now,
		feeVault:  feeVault,
		curves:    make(map[solana.PublicKey]*curveEntry),
	}
	e.vault.EnsureAccount(feeVault, vault.MinimumBalance(0))
	return e, nil
}

// FeeVault returns the derived protocol fee vault address.
func (e *Engine) FeeVault() solana.PublicKey {
	return e.feeVault
}

// Assets lists every asset with a registered curve.
func (e *Engine) Assets() []solana.PublicKey {
	e.mu.RLock()
	defer e.mu.RUnlock()
	assets := make([]solana.PublicKey, 0, len(e.curves))
	for asset := range e.curves {
		assets = append(assets, asset)
	}
	return assets
}

// CurveState returns a copy of the asset's ledger for inspection.
func (e *Engine) CurveState(asset solana.PublicKey) (curve.Ledger, error) {
	entry, err := e.entryFor(asset)
	if err != nil {
		return curve.Ledger{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return *entry.ledger, nil
}

// ReferralRecord resolves the validated record behind a claimed address.
func (e *Engine) ReferralRecord(addr solana.PublicKey) (referral.Record, error) {
	return e.book.Resolve(addr)
}

func (e *Engine) entryFor(asset solana.PublicKey) (*curveEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.curves[asset]
	if !ok {
		return nil, ErrCurveNotFound
	}
	return entry, nil
}

func (e *Engine) deriveCurveAddress(asset solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{bondingCurveSeed, asset.Bytes()}, e.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive curve address: %w", err)
	}
	return addr, nil
}

func (e *Engine) publish(ev events.Event) {
	if err := e.bus.Publish(ev); err != nil {
		e.logger.Warn("Failed to publish event",
			zap.String("event_type", string(ev.Type())),
			zap.Error(err))
	}
}
