package engine

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/events"
	"github.com/rovshanmuradov/token-lp/internal/global"
)

// MigrateToExternalAmm hands a completed curve's liquidity off to the
// external AMM. Authority only; a curve migrates at most once.
func (e *Engine) MigrateToExternalAmm(operator, asset solana.PublicKey) (solana.PublicKey, error) {
	snap, err := e.cfg.Snapshot()
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !operator.Equals(snap.Authority) {
		return solana.PublicKey{}, global.ErrUnauthorized
	}

	entry, err := e.entryFor(asset)
	if err != nil {
		return solana.PublicKey{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	pool, err := e.grad.Migrate(entry.ledger, entry.addr, e.feeVault)
	if err != nil {
		return solana.PublicKey{}, err
	}

	e.publish(&events.CurveMigratedEvent{
		BaseEvent: events.At(events.CurveMigrated, e.now()),
		Asset:     asset,
		Pool:      pool,
	})
	return pool, nil
}
