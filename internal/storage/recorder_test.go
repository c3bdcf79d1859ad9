package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-lp/internal/events"
	"github.com/rovshanmuradov/token-lp/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memoryStorage struct {
	mu     sync.Mutex
	tokens map[string]*models.TokenRecord
	trades []*models.TradeRecord
	snaps  []*models.CurveSnapshot
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{tokens: make(map[string]*models.TokenRecord)}
}

func (m *memoryStorage) SaveToken(_ context.Context, token *models.TokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Asset] = token
	return nil
}

func (m *memoryStorage) GetToken(_ context.Context, asset string) (*models.TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[asset], nil
}

func (m *memoryStorage) MarkTokenCompleted(_ context.Context, asset string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token, ok := m.tokens[asset]; ok {
		token.Completed = true
	}
	return nil
}

func (m *memoryStorage) MarkTokenMigrated(_ context.Context, asset, pool string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token, ok := m.tokens[asset]; ok {
		token.Migrated = true
		token.Pool = pool
	}
	return nil
}

func (m *memoryStorage) SaveTrade(_ context.Context, trade *models.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, trade)
	return nil
}

func (m *memoryStorage) ListTrades(_ context.Context, asset string, _, _ int) ([]*models.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TradeRecord
	for _, trade := range m.trades {
		if trade.Asset == asset {
			out = append(out, trade)
		}
	}
	return out, nil
}

func (m *memoryStorage) SaveCurveSnapshot(_ context.Context, snap *models.CurveSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

func (m *memoryStorage) RunMigrations() error { return nil }

func TestRecorderPersistsLifecycle(t *testing.T) {
	logger := zaptest.NewLogger(t)
	bus := events.NewBus(logger, 16)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Shutdown(ctx)
	}()

	store := newMemoryStorage()
	recorder := NewRecorder(store, logger)
	recorder.Attach(bus)
	defer recorder.Detach()

	asset := solana.NewWallet().PublicKey()
	creator := solana.NewWallet().PublicKey()
	trader := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()
	now := time.Now().UTC()
	ctx := context.Background()

	require.NoError(t, bus.PublishSync(ctx, &events.TokenCreatedEvent{
		BaseEvent: events.At(events.TokenCreated, now),
		Asset:     asset,
		Creator:   creator,
		Symbol:    "TST",
	}))
	require.NoError(t, bus.PublishSync(ctx, &events.TradeExecutedEvent{
		BaseEvent:   events.At(events.TradeExecuted, now),
		Asset:       asset,
		Trader:      trader,
		IsBuy:       true,
		QuoteAmount: 990_000_000,
		BaseAmount:  34_277_831_558_567,
		Fee:         10_000_000,
	}))
	require.NoError(t, bus.PublishSync(ctx, &events.CurveCompletedEvent{
		BaseEvent: events.At(events.CurveCompleted, now),
		Asset:     asset,
	}))
	require.NoError(t, bus.PublishSync(ctx, &events.CurveMigratedEvent{
		BaseEvent: events.At(events.CurveMigrated, now),
		Asset:     asset,
		Pool:      pool,
	}))

	token, err := store.GetToken(ctx, asset.String())
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, creator.String(), token.Creator)
	assert.True(t, token.Completed)
	assert.True(t, token.Migrated)
	assert.Equal(t, pool.String(), token.Pool)

	trades, err := store.ListTrades(ctx, asset.String(), 10, 0)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].IsBuy)
	assert.Equal(t, uint64(990_000_000), trades[0].QuoteAmount)
}
