package di

import (
	"context"
	"fmt"
	"time"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
	domsvc "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/service"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/handler/api"
	mid "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/middleware"
	internalrepo "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/repository"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/service/ratelimit"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/services/forecast"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/services/patterns"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/usecase"
	pkgcache "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/cache"
	pkgch "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/clickhouse"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/config"
	xhttp "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/http"
	pkgkafka "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/kafka"
	applogger "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/logger"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/metrics"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/server"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopic(cfg.Kafka.Producer.AutoCreateTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideLogger builds the application logger. With the collector enabled,
// aggregated error logs are shipped through the Kafka producer.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: "demandcast",
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:    cfg.Logging.Collector.Interval,
			CountThreshold:  cfg.Logging.Collector.Threshold,
			Topic:           cfg.Logging.Collector.Topic,
			Publisher:       producer,
			IncludeWarnings: cfg.Logging.Collector.IncludeWarnings,
		})
	}

	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client and its archive schema,
// or returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if cfg.ClickHouse.InitSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := client.InitSchema(ctx, internalrepo.ArchiveSchema(cfg.ClickHouse.Database)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}

	return client, nil
}

// ProvideStateStore opens the forecast and pattern tables on the configured backend.
func ProvideStateStore(cfg *config.Config) (repository.StateStore, error) {
	sc := cfg.Storage

	switch sc.Backend {
	case "memory":
		return internalrepo.NewKVStateStore(pkgcache.NewMemoryCache(
			pkgcache.WithMemoryCleanup(sc.Memory.CleanupInterval),
		)), nil
	case "redis", "layered":
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisAddr(sc.Redis.Addr),
			pkgcache.WithRedisPassword(sc.Redis.Password),
			pkgcache.WithRedisDB(sc.Redis.DB),
			pkgcache.WithRedisPrefix(sc.Redis.Prefix),
			pkgcache.WithRedisPool(sc.Redis.PoolSize, sc.Redis.MinIdleConns, sc.Redis.PoolTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("state store: %w", err)
		}
		if sc.Backend == "redis" {
			return internalrepo.NewKVStateStore(rc), nil
		}
		return internalrepo.NewKVStateStore(pkgcache.NewLayeredCache(rc,
			pkgcache.WithLayeredMemorySize(sc.Layered.MemoryMaxSize),
			pkgcache.WithLayeredMemoryTTL(sc.Layered.MemoryTTL),
		)), nil
	default:
		return nil, fmt.Errorf("state store: unknown backend %q", sc.Backend)
	}
}

// ProvideEventPublisher publishes contract events to Kafka through a retry
// buffer, or drops them when no producer is configured.
func ProvideEventPublisher(
	producer *pkgkafka.Producer,
	cfg *config.Config,
	m repository.Metrics,
	l *applogger.Logger,
) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NopEventPublisher{}
	}
	pipe := mid.NewEventPipeline(
		internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic),
		m,
		l,
		mid.WithBufferSize(cfg.Kafka.Producer.RetryBuffer),
		mid.WithMaxBackoff(cfg.Kafka.Producer.MaxRetryBackoff),
	)
	pipe.Start()
	return pipe
}

// ProvideArchive appends history rows to ClickHouse when a client is configured.
func ProvideArchive(ch *pkgch.Client, cfg *config.Config) repository.Archive {
	if ch == nil {
		return internalrepo.NopArchive{}
	}
	return internalrepo.NewClickHouseArchive(ch.DB(), cfg.ClickHouse.Database)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

func ProvideForecastEngine() domsvc.ForecastEngine {
	return forecast.New()
}

func ProvidePatternAccessor(store repository.StateStore) domsvc.PatternAccessor {
	return patterns.NewAccessor(store)
}

func ProvideClock(cfg *config.Config) *usecase.BlockClock {
	return usecase.NewBlockClock(cfg.Chain.GenesisHeight)
}

func ProvideStateRestorer(store repository.StateStore, clock *usecase.BlockClock, metrics repository.Metrics, logger *applogger.Logger) *usecase.StateRestorer {
	return usecase.NewStateRestorer(store, clock, metrics, logger)
}

// ProvideReplayer returns nil unless startup replay is enabled.
func ProvideReplayer(cfg *config.Config) (*pkgkafka.Replayer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.ReplayOnStart {
		return nil, nil
	}
	r, err := pkgkafka.NewReplayer(pkgkafka.WithReplayBrokers(cfg.Kafka.Brokers))
	if err != nil {
		return nil, fmt.Errorf("kafka replayer: %w", err)
	}
	return r, nil
}

func ProvideDemandPrediction(
	engine domsvc.ForecastEngine,
	accessor domsvc.PatternAccessor,
	store repository.StateStore,
	events repository.EventPublisher,
	archive repository.Archive,
	m repository.Metrics,
	clock usecase.Clock,
	l *applogger.Logger,
) *usecase.DemandPrediction {
	return usecase.NewDemandPrediction(engine, accessor, store, events, archive, m, clock, l)
}

// ProvideRateLimiter returns nil when throttling is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

func ProvideHTTPHandler(
	l *applogger.Logger,
	contract *usecase.DemandPrediction,
	store repository.StateStore,
	limiter *ratelimit.Limiter,
) xhttp.Handler {
	return api.NewDemandEchoHandler(l, contract, store, limiter)
}

func ProvideHTTPServer(cfg *config.Config, handler xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithMetrics(metricsPath, nil, nil),
		xhttp.WithLogger(l),
	}
	if len(cfg.Server.AllowOrigins) > 0 {
		opts = append(opts, xhttp.WithCORS(true, cfg.Server.AllowOrigins...))
	}

	return xhttp.NewServer(handler, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	store repository.StateStore,
	events repository.EventPublisher,
	archive repository.Archive,
	ch *pkgch.Client,
	limiter *ratelimit.Limiter,
	replayer *pkgkafka.Replayer,
	restorer *usecase.StateRestorer,
) *server.App {
	app := server.New(cfg, l, httpServer, store, events, archive, ch, limiter)
	if replayer != nil {
		app.SetReplay(replayer, restorer)
	}
	return app
}
