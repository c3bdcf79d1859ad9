// Package events carries the launchpad's observable side effects through an
// in-memory bus: token creations, executed trades, curve completions and
// migrations.
package events

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// EventType identifies a kind of event.
type EventType string

const (
	TokenCreated   EventType = "token.created"
	TradeExecuted  EventType = "trade.executed"
	CurveCompleted EventType = "curve.completed"
	CurveMigrated  EventType = "curve.migrated"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides the common fields.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType { return e.EventType }

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time { return e.EventTime }

// TokenCreatedEvent is emitted when a new asset and its curve are created.
type TokenCreatedEvent struct {
	BaseEvent
	Asset   solana.PublicKey
	Creator solana.PublicKey
	Name    string
	Symbol  string
	URI     string
}

// TradeExecutedEvent is emitted for every settled buy or sell. QuoteAmount
// is the net amount that moved through the curve, after the trade fee.
type TradeExecutedEvent struct {
	BaseEvent
	Asset       solana.PublicKey
	Trader      solana.PublicKey
	IsBuy       bool
	QuoteAmount uint64
	BaseAmount  uint64
	Fee         uint64
}

// CurveCompletedEvent is emitted once, when a curve crosses its graduation
// threshold and trading shuts off.
type CurveCompletedEvent struct {
	BaseEvent
	Asset             solana.PublicKey
	RealQuoteReserves uint64
}

// CurveMigratedEvent is emitted once, when a completed curve's liquidity is
// handed off to the external AMM.
type CurveMigratedEvent struct {
	BaseEvent
	Asset solana.PublicKey
	Pool  solana.PublicKey
}

// At stamps a BaseEvent for the given type.
func At(t EventType, now time.Time) BaseEvent {
	return BaseEvent{EventType: t, EventTime: now}
}
