// Package storage persists the launchpad's history: launched tokens, settled
// trades and periodic curve snapshots.
package storage

import (
	"context"

	"github.com/rovshanmuradov/token-lp/internal/storage/models"
)

// Storage is the persistence interface the service wires against.
type Storage interface {
	// Tokens
	SaveToken(ctx context.Context, token *models.TokenRecord) error
	GetToken(ctx context.Context, asset string) (*models.TokenRecord, error)
	MarkTokenCompleted(ctx context.Context, asset string) error
	MarkTokenMigrated(ctx context.Context, asset, pool string) error

	// Trades
	SaveTrade(ctx context.Context, trade *models.TradeRecord) error
	ListTrades(ctx context.Context, asset string, limit, offset int) ([]*models.TradeRecord, error)

	// Snapshots
	SaveCurveSnapshot(ctx context.Context, snap *models.CurveSnapshot) error

	RunMigrations() error
}
