//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/usecase"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/config"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideClickHouseClient,
		ProvideLogger,
		ProvideMetrics,

		// Repositories
		ProvideStateStore,
		ProvideEventPublisher,
		ProvideArchive,

		// Domain services and the contract
		ProvideForecastEngine,
		ProvidePatternAccessor,
		ProvideClock,
		wire.Bind(new(usecase.Clock), new(*usecase.BlockClock)),
		ProvideDemandPrediction,
		ProvideStateRestorer,
		ProvideReplayer,

		// HTTP
		ProvideRateLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
