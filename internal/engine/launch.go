package engine

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/curve"
	"github.com/rovshanmuradov/token-lp/internal/events"
	"github.com/rovshanmuradov/token-lp/internal/fees"
	"github.com/rovshanmuradov/token-lp/internal/global"
	"github.com/rovshanmuradov/token-lp/internal/mathx"
	"github.com/rovshanmuradov/token-lp/internal/vault"
	"go.uber.org/zap"
)

// TokenMetadata describes a freshly launched asset.
type TokenMetadata struct {
	Name   string
	Symbol string
	URI    string
}

// CreateToken mints a new asset and opens its bonding curve seeded from the
// current config. The creator funds the curve account's rent floor; the full
// supply is minted into curve custody.
func (e *Engine) CreateToken(creator solana.PublicKey, meta TokenMetadata) (solana.PublicKey, error) {
	snap, err := e.cfg.Snapshot()
	if err != nil {
		return solana.PublicKey{}, err
	}
	if snap.Status == global.StatusPaused {
		return solana.PublicKey{}, ErrProgramPaused
	}

	asset := solana.NewWallet().PublicKey()
	entry, ledger, err := e.prepareCurve(asset, creator, snap)
	if err != nil {
		return solana.PublicKey{}, err
	}

	rentFloor := vault.MinimumBalance(curve.AccountSize)
	err = e.vault.NewBatch().
		TransferLamports(creator, entry.addr, rentFloor).
		MintTokens(asset, entry.addr, ledger.TotalSupply).
		Apply()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to fund curve account: %w", err)
	}

	e.commitCurve(asset, entry)
	e.logger.Info("Token created",
		zap.String("asset", asset.String()),
		zap.String("creator", creator.String()),
		zap.String("symbol", meta.Symbol))

	e.publish(&events.TokenCreatedEvent{
		BaseEvent: events.At(events.TokenCreated, e.now()),
		Asset:     asset,
		Creator:   creator,
		Name:      meta.Name,
		Symbol:    meta.Symbol,
		URI:       meta.URI,
	})
	return asset, nil
}

// CreateTokenAndBuy composes a launch with the creator's first buy as a
// single unit: if the buy cannot settle, the token is not created either.
// The creator's own launch buy carries no referral.
func (e *Engine) CreateTokenAndBuy(creator solana.PublicKey, meta TokenMetadata, quoteIn, minBaseOut uint64) (solana.PublicKey, *TradeResult, error) {
	if quoteIn == 0 {
		return solana.PublicKey{}, nil, ErrZeroAmount
	}
	snap, err := e.cfg.Snapshot()
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	if snap.Status == global.StatusPaused {
		return solana.PublicKey{}, nil, ErrProgramPaused
	}

	asset := solana.NewWallet().PublicKey()
	entry, ledger, err := e.prepareCurve(asset, creator, snap)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	fee, err := mathx.MulDiv(quoteIn, uint64(snap.TradeFeeBps), fees.BpsDenominator)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	netIn, err := mathx.Sub(quoteIn, fee)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	baseOut, err := curve.QuoteBuy(ledger.VirtualQuote, ledger.VirtualBase, netIn)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	if baseOut < minBaseOut {
		return solana.PublicKey{}, nil, ErrSlippageExceeded
	}
	if baseOut > ledger.RealBase {
		return solana.PublicKey{}, nil, ErrNotEnoughTokens
	}

	split, err := fees.Compute(fee, snap.CreatorShareBps, snap.ReferralShareBps, false)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	next := *ledger
	completed, err := next.ApplyBuy(netIn, baseOut, snap.GraduationThreshold)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	rentFloor := vault.MinimumBalance(curve.AccountSize)
	batch := e.vault.NewBatch().
		TransferLamports(creator, entry.addr, rentFloor).
		MintTokens(asset, entry.addr, ledger.TotalSupply).
		TransferLamports(creator, entry.addr, netIn).
		TransferTokens(asset, entry.addr, creator, baseOut).
		TransferLamports(creator, creator, split.Creator).
		TransferLamports(creator, e.feeVault, split.Protocol)
	if err := batch.Apply(); err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to settle launch buy: %w", err)
	}

	*entry.ledger = next
	e.commitCurve(asset, entry)

	e.logger.Info("Token created with launch buy",
		zap.String("asset", asset.String()),
		zap.String("creator", creator.String()),
		zap.Uint64("quote_in", quoteIn),
		zap.Uint64("base_out", baseOut))

	now := e.now()
	e.publish(&events.TokenCreatedEvent{
		BaseEvent: events.At(events.TokenCreated, now),
		Asset:     asset,
		Creator:   creator,
		Name:      meta.Name,
		Symbol:    meta.Symbol,
		URI:       meta.URI,
	})
	e.publish(&events.TradeExecutedEvent{
		BaseEvent:   events.At(events.TradeExecuted, now),
		Asset:       asset,
		Trader:      creator,
		IsBuy:       true,
		QuoteAmount: netIn,
		BaseAmount:  baseOut,
		Fee:         fee,
	})
	if completed {
		e.publish(&events.CurveCompletedEvent{
			BaseEvent:         events.At(events.CurveCompleted, now),
			Asset:             asset,
			RealQuoteReserves: next.RealQuoteReserves,
		})
	}

	return asset, &TradeResult{
		Asset:       asset,
		Trader:      creator,
		IsBuy:       true,
		QuoteAmount: netIn,
		BaseAmount:  baseOut,
		Fee:         fee,
		Completed:   completed,
	}, nil
}

// prepareCurve derives the custody address and builds the ledger for a new
// asset without registering it. commitCurve makes it visible.
func (e *Engine) prepareCurve(asset, creator solana.PublicKey, snap global.Snapshot) (*curveEntry, *curve.Ledger, error) {
	addr, err := e.deriveCurveAddress(asset)
	if err != nil {
		return nil, nil, err
	}

	e.mu.RLock()
	_, exists := e.curves[asset]
	e.mu.RUnlock()
	if exists {
		return nil, nil, ErrCurveExists
	}

	vq, vb, rb, supply := snap.CurveSeed()
	ledger := curve.NewLedger(asset, creator, curve.Seed{
		VirtualQuote: vq,
		VirtualBase:  vb,
		RealBase:     rb,
		TotalSupply:  supply,
	}, e.now())

	e.vault.EnsureAccount(addr, vault.MinimumBalance(curve.AccountSize))
	return &curveEntry{ledger: ledger, addr: addr}, ledger, nil
}

func (e *Engine) commitCurve(asset solana.PublicKey, entry *curveEntry) {
	e.mu.Lock()
	e.curves[asset] = entry
	e.mu.Unlock()
}
