package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/token-lp/internal/amm"
	"github.com/rovshanmuradov/token-lp/internal/config"
	"github.com/rovshanmuradov/token-lp/internal/engine"
	"github.com/rovshanmuradov/token-lp/internal/events"
	"github.com/rovshanmuradov/token-lp/internal/global"
	"github.com/rovshanmuradov/token-lp/internal/logger"
	"github.com/rovshanmuradov/token-lp/internal/storage"
	"github.com/rovshanmuradov/token-lp/internal/storage/models"
	"github.com/rovshanmuradov/token-lp/internal/storage/postgres"
	"github.com/rovshanmuradov/token-lp/internal/vault"
)

const snapshotInterval = time.Minute

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Failed to load config", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		zap.NewExample().Fatal("Failed to build logger", zap.Error(err))
	}
	defer log.Sync()

	log.Info("Starting launchpad engine")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus(log.Logger, cfg.EventBufferSize)

	var store storage.Storage
	if cfg.PostgresURL != "" {
		store, err = postgres.NewStorage(rootCtx, cfg.PostgresURL, log.WithComponent("storage"))
		if err != nil {
			log.Fatal("Failed to connect to storage", zap.Error(err))
		}
		if err := store.RunMigrations(); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		recorder := storage.NewRecorder(store, log.Logger)
		recorder.Attach(bus)
		defer recorder.Detach()
	} else {
		log.Warn("No postgres_url configured, running without persistence")
	}

	eng, err := engine.New(engine.Params{
		Vault:  vault.New(),
		Amm:    amm.NewRegistry(engine.ProgramID),
		Bus:    bus,
		Logger: log.Logger,
	})
	if err != nil {
		log.Fatal("Failed to build engine", zap.Error(err))
	}
	if err := eng.InitGlobalConfig(engine.DeployerID); err != nil {
		log.Fatal("Failed to initialize global config", zap.Error(err))
	}
	if err := applyConfigOverrides(eng, cfg); err != nil {
		log.Fatal("Failed to apply config overrides", zap.Error(err))
	}

	g, gCtx := errgroup.WithContext(rootCtx)

	if store != nil {
		g.Go(func() error {
			return snapshotLoop(gCtx, eng, store, log.WithComponent("snapshots"))
		})
	}
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return bus.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Service terminated with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Launchpad engine stopped")
}

// applyConfigOverrides pushes non-zero launch parameters from the service
// config into the global config.
func applyConfigOverrides(eng *engine.Engine, cfg *config.Config) error {
	upd := global.Update{}
	changed := false
	if cfg.TradeFeeBps != 0 {
		upd.TradeFeeBps = &cfg.TradeFeeBps
		changed = true
	}
	if cfg.CreatorShareBps != 0 {
		upd.CreatorShareBps = &cfg.CreatorShareBps
		changed = true
	}
	if cfg.ReferralShareBps != 0 {
		upd.ReferralShareBps = &cfg.ReferralShareBps
		changed = true
	}
	if cfg.GraduationThreshold != 0 {
		upd.GraduationThreshold = &cfg.GraduationThreshold
		changed = true
	}
	if !changed {
		return nil
	}
	return eng.UpdateGlobalConfig(engine.DeployerID, upd)
}

// snapshotLoop periodically persists every curve's reserves.
func snapshotLoop(ctx context.Context, eng *engine.Engine, store storage.Storage, log *zap.Logger) error {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			for _, asset := range eng.Assets() {
				state, err := eng.CurveState(asset)
				if err != nil {
					continue
				}
				snap := &models.CurveSnapshot{
					Asset:             asset.String(),
					VirtualQuote:      state.VirtualQuote,
					VirtualBase:       state.VirtualBase,
					RealQuoteReserves: state.RealQuoteReserves,
					RealBase:          state.RealBase,
					TakenAt:           now.UTC(),
				}
				if err := store.SaveCurveSnapshot(ctx, snap); err != nil {
					log.Warn("Failed to save curve snapshot",
						zap.String("asset", asset.String()),
						zap.Error(err))
				}
			}
		}
	}
}
