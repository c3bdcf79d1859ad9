package storage

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/token-lp/internal/events"
	"github.com/rovshanmuradov/token-lp/internal/storage/models"
	"go.uber.org/zap"
)

// Recorder hangs off the event bus and persists everything the engine
// reports. It is the only writer of launch history; the engine never touches
// storage directly.
type Recorder struct {
	store  Storage
	logger *zap.Logger
	subs   []events.Subscription
}

// NewRecorder builds a recorder over the given storage.
func NewRecorder(store Storage, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger.Named("recorder")}
}

// Attach subscribes the recorder to the bus. Call Detach to stop.
func (r *Recorder) Attach(bus *events.Bus) {
	r.subs = append(r.subs,
		bus.SubscribeFunc(events.TokenCreated, r.onTokenCreated),
		bus.SubscribeFunc(events.TradeExecuted, r.onTradeExecuted),
		bus.SubscribeFunc(events.CurveCompleted, r.onCurveCompleted),
		bus.SubscribeFunc(events.CurveMigrated, r.onCurveMigrated),
	)
}

// Detach removes all bus subscriptions.
func (r *Recorder) Detach() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
	r.subs = nil
}

func (r *Recorder) onTokenCreated(ctx context.Context, event events.Event) error {
	ev, ok := event.(*events.TokenCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.Type())
	}
	return r.store.SaveToken(ctx, &models.TokenRecord{
		Asset:   ev.Asset.String(),
		Creator: ev.Creator.String(),
		Name:    ev.Name,
		Symbol:  ev.Symbol,
		URI:     ev.URI,
	})
}

func (r *Recorder) onTradeExecuted(ctx context.Context, event events.Event) error {
	ev, ok := event.(*events.TradeExecutedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.Type())
	}
	return r.store.SaveTrade(ctx, &models.TradeRecord{
		Asset:       ev.Asset.String(),
		Trader:      ev.Trader.String(),
		IsBuy:       ev.IsBuy,
		QuoteAmount: ev.QuoteAmount,
		BaseAmount:  ev.BaseAmount,
		Fee:         ev.Fee,
		ExecutedAt:  ev.Timestamp(),
	})
}

func (r *Recorder) onCurveCompleted(ctx context.Context, event events.Event) error {
	ev, ok := event.(*events.CurveCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.Type())
	}
	return r.store.MarkTokenCompleted(ctx, ev.Asset.String())
}

func (r *Recorder) onCurveMigrated(ctx context.Context, event events.Event) error {
	ev, ok := event.(*events.CurveMigratedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.Type())
	}
	return r.store.MarkTokenMigrated(ctx, ev.Asset.String(), ev.Pool.String())
}
