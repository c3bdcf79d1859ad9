package engine

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/curve"
	"github.com/rovshanmuradov/token-lp/internal/events"
	"github.com/rovshanmuradov/token-lp/internal/fees"
	"github.com/rovshanmuradov/token-lp/internal/global"
	"github.com/rovshanmuradov/token-lp/internal/mathx"
	"go.uber.org/zap"
)

// TradeResult reports one settled trade. QuoteAmount is the net amount that
// moved through the curve, after the trade fee.
type TradeResult struct {
	Asset       solana.PublicKey
	Trader      solana.PublicKey
	IsBuy       bool
	QuoteAmount uint64
	BaseAmount  uint64
	Fee         uint64
	Completed   bool
}

// Buy spends quoteIn lamports against the asset's curve. The fee comes off
// the gross input before quoting; referral may be zero for no referral.
func (e *Engine) Buy(trader, asset solana.PublicKey, quoteIn, minBaseOut uint64, referralAddr solana.PublicKey) (*TradeResult, error) {
	if quoteIn == 0 {
		return nil, ErrZeroAmount
	}
	snap, err := e.cfg.Snapshot()
	if err != nil {
		return nil, err
	}
	if snap.Status == global.StatusPaused {
		return nil, ErrProgramPaused
	}

	entry, err := e.entryFor(asset)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	ledger := entry.ledger
	if ledger.Completed {
		return nil, ErrCurveCompleted
	}

	fee, err := mathx.MulDiv(quoteIn, uint64(snap.TradeFeeBps), fees.BpsDenominator)
	if err != nil {
		return nil, err
	}
	netIn, err := mathx.Sub(quoteIn, fee)
	if err != nil {
		return nil, err
	}
	baseOut, err := curve.QuoteBuy(ledger.VirtualQuote, ledger.VirtualBase, netIn)
	if err != nil {
		return nil, err
	}
	if baseOut < minBaseOut {
		return nil, ErrSlippageExceeded
	}
	if baseOut > ledger.RealBase {
		return nil, ErrNotEnoughTokens
	}

	refAddr, hasReferral, err := e.resolveReferral(referralAddr)
	if err != nil {
		return nil, err
	}
	split, err := fees.Compute(fee, snap.CreatorShareBps, snap.ReferralShareBps, hasReferral)
	if err != nil {
		return nil, err
	}

	next := *ledger
	completed, err := next.ApplyBuy(netIn, baseOut, snap.GraduationThreshold)
	if err != nil {
		return nil, err
	}

	batch := e.vault.NewBatch().
		TransferLamports(trader, entry.addr, netIn).
		TransferTokens(asset, entry.addr, trader, baseOut).
		TransferLamports(trader, ledger.CreatorID, split.Creator).
		TransferLamports(trader, e.feeVault, split.Protocol)
	if hasReferral {
		batch.TransferLamports(trader, refAddr, split.Referral)
	}
	if err := batch.Apply(); err != nil {
		return nil, fmt.Errorf("failed to settle buy: %w", err)
	}

	*ledger = next
	if hasReferral {
		e.creditReferral(refAddr, split.Referral)
	}

	e.logger.Debug("Buy executed",
		zap.String("asset", asset.String()),
		zap.String("trader", trader.String()),
		zap.Uint64("quote_in", quoteIn),
		zap.Uint64("base_out", baseOut),
		zap.Uint64("fee", fee))

	e.emitTrade(asset, trader, true, netIn, baseOut, fee, completed, next.RealQuoteReserves)

	return &TradeResult{
		Asset:       asset,
		Trader:      trader,
		IsBuy:       true,
		QuoteAmount: netIn,
		BaseAmount:  baseOut,
		Fee:         fee,
		Completed:   completed,
	}, nil
}

// Sell returns baseIn token units to the curve for quote. The fee comes off
// the gross output after quoting, and the whole disbursement is paid from
// curve custody.
func (e *Engine) Sell(trader, asset solana.PublicKey, baseIn, minQuoteOut uint64, referralAddr solana.PublicKey) (*TradeResult, error) {
	if baseIn == 0 {
		return nil, ErrZeroAmount
	}
	snap, err := e.cfg.Snapshot()
	if err != nil {
		return nil, err
	}
	if snap.Status == global.StatusPaused {
		return nil, ErrProgramPaused
	}

	entry, err := e.entryFor(asset)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	ledger := entry.ledger
	if ledger.Completed {
		return nil, ErrCurveCompleted
	}

	grossOut, err := curve.QuoteSell(ledger.VirtualQuote, ledger.VirtualBase, baseIn)
	if err != nil {
		return nil, err
	}
	fee, err := mathx.MulDiv(grossOut, uint64(snap.TradeFeeBps), fees.BpsDenominator)
	if err != nil {
		return nil, err
	}
	netOut, err := mathx.Sub(grossOut, fee)
	if err != nil {
		return nil, err
	}
	if netOut < minQuoteOut {
		return nil, ErrSlippageExceeded
	}
	if grossOut > ledger.RealQuoteReserves {
		return nil, ErrNotEnoughSol
	}
	balance := e.vault.Balance(entry.addr)
	if balance < grossOut || balance-grossOut < e.vault.RentFloor(entry.addr) {
		return nil, ErrInsufficientRentExemption
	}

	refAddr, hasReferral, err := e.resolveReferral(referralAddr)
	if err != nil {
		return nil, err
	}
	split, err := fees.Compute(fee, snap.CreatorShareBps, snap.ReferralShareBps, hasReferral)
	if err != nil {
		return nil, err
	}

	next := *ledger
	completed, err := next.ApplySell(grossOut, baseIn, snap.GraduationThreshold)
	if err != nil {
		return nil, err
	}

	batch := e.vault.NewBatch().
		TransferTokens(asset, trader, entry.addr, baseIn).
		TransferLamports(entry.addr, trader, netOut).
		TransferLamports(entry.addr, ledger.CreatorID, split.Creator).
		TransferLamports(entry.addr, e.feeVault, split.Protocol)
	if hasReferral {
		batch.TransferLamports(entry.addr, refAddr, split.Referral)
	}
	if err := batch.Apply(); err != nil {
		return nil, fmt.Errorf("failed to settle sell: %w", err)
	}

	*ledger = next
	if hasReferral {
		e.creditReferral(refAddr, split.Referral)
	}

	e.logger.Debug("Sell executed",
		zap.String("asset", asset.String()),
		zap.String("trader", trader.String()),
		zap.Uint64("base_in", baseIn),
		zap.Uint64("quote_out", netOut),
		zap.Uint64("fee", fee))

	e.emitTrade(asset, trader, false, netOut, baseIn, fee, completed, next.RealQuoteReserves)

	return &TradeResult{
		Asset:       asset,
		Trader:      trader,
		IsBuy:       false,
		QuoteAmount: netOut,
		BaseAmount:  baseIn,
		Fee:         fee,
		Completed:   completed,
	}, nil
}

func (e *Engine) emitTrade(asset, trader solana.PublicKey, isBuy bool, quoteAmount, baseAmount, fee uint64, completed bool, realQuote uint64) {
	now := e.now()
	e.publish(&events.TradeExecutedEvent{
		BaseEvent:   events.At(events.TradeExecuted, now),
		Asset:       asset,
		Trader:      trader,
		IsBuy:       isBuy,
		QuoteAmount: quoteAmount,
		BaseAmount:  baseAmount,
		Fee:         fee,
	})
	if completed {
		e.publish(&events.CurveCompletedEvent{
			BaseEvent:         events.At(events.CurveCompleted, now),
			Asset:             asset,
			RealQuoteReserves: realQuote,
		})
	}
}
