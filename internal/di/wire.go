//go:build wireinject
// +build wireinject

package di

import (
	"WhaleWhisperer/pkg/config"
	"WhaleWhisperer/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideSpeechClient,

		// Repositories
		ProvidePortfolioStore,
		ProvideTradeLog,
		ProvideTradePublisher,

		// Use cases
		ProvideMarketWSHandler,
		ProvideMarketSimulator,
		ProvideTradeExecutor,
		ProvideSessionManager,
		ProvideTradeEventsHandler,
		ProvideReactionQueue,
		ProvideReactionEngine,
		ProvideTranscriptLog,

		// HTTP handlers
		ProvideVoiceHandler,
		ProvideMarketHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
