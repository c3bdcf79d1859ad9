package engine

import "errors"

var (
	// ErrZeroAmount is returned for trades with a zero input amount.
	ErrZeroAmount = errors.New("amount must be greater than zero")
	// ErrProgramPaused is returned while trading is globally paused.
	ErrProgramPaused = errors.New("program is paused")
	// ErrCurveCompleted is returned for trades against a graduated curve.
	ErrCurveCompleted = errors.New("bonding curve completed")
	// ErrSlippageExceeded is returned when the quoted output falls short of
	// the trader's minimum.
	ErrSlippageExceeded = errors.New("slippage tolerance exceeded")
	// ErrNotEnoughTokens is returned when a buy would take more base than
	// the curve escrows.
	ErrNotEnoughTokens = errors.New("not enough tokens in bonding curve")
	// ErrNotEnoughSol is returned when a sell would take more quote than
	// the curve has collected.
	ErrNotEnoughSol = errors.New("not enough sol in bonding curve")
	// ErrInsufficientRentExemption is returned when a sell would leave the
	// curve account below its rent floor.
	ErrInsufficientRentExemption = errors.New("insufficient rent exemption")
	// ErrNotEnoughLamports is returned when a withdrawal or claim has
	// nothing to pay out.
	ErrNotEnoughLamports = errors.New("not enough lamports")
	// ErrCurveNotFound is returned for operations on an unknown asset.
	ErrCurveNotFound = errors.New("bonding curve not found")
	// ErrCurveExists is returned when creating a curve for an asset that
	// already has one.
	ErrCurveExists = errors.New("bonding curve already exists")
)
