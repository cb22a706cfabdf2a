package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/service/ratelimit"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/usecase"
	pkgch "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/clickhouse"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/config"
	xhttp "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/http"
	pkgkafka "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/kafka"
	applogger "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/logger"
)

const limiterPruneInterval = time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	store      repository.StateStore
	events     repository.EventPublisher
	archive    repository.Archive
	chClient   *pkgch.Client
	limiter    *ratelimit.Limiter
	replayer   *pkgkafka.Replayer
	restorer   *usecase.StateRestorer
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	store repository.StateStore,
	events repository.EventPublisher,
	archive repository.Archive,
	chClient *pkgch.Client,
	limiter *ratelimit.Limiter,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		store:      store,
		events:     events,
		archive:    archive,
		chClient:   chClient,
		limiter:    limiter,
	}
}

// SetReplay makes Run rebuild state from the event topic before serving.
func (a *App) SetReplay(r *pkgkafka.Replayer, restorer *usecase.StateRestorer) {
	a.replayer = r
	a.restorer = restorer
}

// Run starts the application and blocks until interrupted or the HTTP
// listener fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.replayer != nil {
		start := time.Now()
		n, err := a.replayer.Replay(ctx, a.cfg.Kafka.Topic, a.restorer.ApplyMessage)
		if err != nil {
			a.logger.Error("state replay failed", applogger.Int("applied", n), applogger.Error(err))
			return errors.Join(err, a.shutdown(context.Background()))
		}
		a.logger.Info("state replayed",
			applogger.String("topic", a.cfg.Kafka.Topic),
			applogger.Int("events", n),
			applogger.Int("skipped", a.restorer.Skipped()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.limiter != nil {
		go a.pruneLimiter(ctx)
	}

	a.logger.Info("application started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("storage", a.cfg.Storage.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
		applogger.Bool("clickhouse", a.cfg.ClickHouse.Enabled),
		applogger.Uint64("genesis_height", a.cfg.Chain.GenesisHeight),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-a.httpServer.Err():
	}

	return errors.Join(runErr, a.shutdown(context.Background()))
}

func (a *App) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Prune(); n > 0 {
				a.logger.Debug("rate limiter pruned", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown stops intake first, then releases resources in reverse
// dependency order. The log collector goes before the producer it publishes through.
func (a *App) shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	var errs []error

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	a.logger.RemoveCollector()

	if err := a.events.Close(); err != nil {
		a.logger.Warn("event publisher close error", applogger.Error(err))
		errs = append(errs, err)
	}
	if err := a.archive.Close(); err != nil {
		a.logger.Warn("archive close error", applogger.Error(err))
		errs = append(errs, err)
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("state store close error", applogger.Error(err))
		errs = append(errs, err)
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
