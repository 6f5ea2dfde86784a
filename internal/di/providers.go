package di

import (
	"context"
	"fmt"
	"time"

	"WhaleWhisperer/internal/domain/repository"
	"WhaleWhisperer/internal/handler/api"
	mid "WhaleWhisperer/internal/middleware"
	internalrepo "WhaleWhisperer/internal/repository"
	"WhaleWhisperer/internal/service/speech"
	"WhaleWhisperer/internal/usecase"
	"WhaleWhisperer/pkg/cache"
	pkgch "WhaleWhisperer/pkg/clickhouse"
	"WhaleWhisperer/pkg/config"
	pkgkafka "WhaleWhisperer/pkg/kafka"
	"WhaleWhisperer/pkg/logger"
	"WhaleWhisperer/pkg/metrics"
	"WhaleWhisperer/pkg/queue"
	"WhaleWhisperer/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisCache creates the shared Redis connection.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// trade log schema exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".trades (" +
			"user String, ts DateTime64(3), action String, symbol String, " +
			"quantity Float64, price Float64, usd Float64, pl Float64" +
			") ENGINE=MergeTree ORDER BY (user, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates the trade-events consumer.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvidePortfolioStore creates the Redis-backed portfolio store.
func ProvidePortfolioStore(rc *cache.RedisCache, cfg *config.Config) repository.PortfolioStore {
	return internalrepo.NewRedisPortfolioStore(rc.Client(), cfg.Redis.Prefix, cfg.Game.InitialBalance)
}

// ProvideTradeLog creates the ClickHouse trade audit log.
func ProvideTradeLog(chClient *pkgch.Client, cfg *config.Config) repository.TradeLog {
	return internalrepo.NewClickHouseTradeLog(chClient.DB(), cfg.ClickHouse.Database+".trades")
}

// ProvideTradePublisher creates the Kafka trade-event publisher.
func ProvideTradePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.TradePublisher {
	return internalrepo.NewKafkaTradePublisher(producer, cfg.Kafka.Topic)
}

// ProvideSpeechClient creates the STT/TTS client, or nil when speech
// is disabled.
func ProvideSpeechClient(cfg *config.Config) *speech.Client {
	if cfg.Speech.Disabled {
		return nil
	}
	return speech.New(cfg)
}

// ProvideMarketWSHandler creates the tick fan-out hub. It doubles as
// the pipeline sink.
func ProvideMarketWSHandler(lgr *logger.Logger) *api.MarketWSHandler {
	return api.NewMarketWSHandler(lgr)
}

// ProvideMarketSimulator creates the price simulator with the
// websocket hub on the end of its pipeline.
func ProvideMarketSimulator(cfg *config.Config, m repository.Metrics, ws *api.MarketWSHandler) *usecase.MarketSimulator {
	pipe := mid.NewTickPipeline(ws, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewMarketSimulator(cfg.Market.Tokens, cfg.Market.TickInterval, cfg.Market.MaxDriftPct, m, pipe)
}

// ProvideTradeExecutor creates the trade executor. The trade log is
// written by the event consumer, not here.
func ProvideTradeExecutor(lgr *logger.Logger, store repository.PortfolioStore, pub repository.TradePublisher, sim *usecase.MarketSimulator, m repository.Metrics) *usecase.TradeExecutor {
	return usecase.NewTradeExecutor(lgr, store, pub, sim, m)
}

// ProvideSessionManager creates the confirmation dialogue driver.
func ProvideSessionManager(lgr *logger.Logger, exec *usecase.TradeExecutor, sim *usecase.MarketSimulator, m repository.Metrics, cfg *config.Config) *usecase.SessionManager {
	return usecase.NewSessionManager(lgr, exec, sim, m, cfg.Voice.ConfirmationTimeout, cfg.Voice.ReminderAfter)
}

// ProvideTradeEventsHandler creates the consumer handler that writes
// trade events to the audit log.
func ProvideTradeEventsHandler(lgr *logger.Logger, tradeLog repository.TradeLog, m repository.Metrics, cfg *config.Config) *usecase.TradeEventsHandler {
	return usecase.NewTradeEventsHandler(lgr, cfg.Kafka.Topic, tradeLog, m)
}

// ProvideReactionQueue creates the Redis queue that carries reaction
// TTS jobs, with the synthesis job registered when speech is on.
func ProvideReactionQueue(lgr *logger.Logger, rc *cache.RedisCache, speechClient *speech.Client, cfg *config.Config) *queue.RedisQueue {
	q := queue.NewRedisQueue(lgr, &queue.QueueConfig{
		Workers:    2,
		RetryLimit: 3,
		RetryDelay: 5 * time.Second,
	}, rc.Client(), queue.ModeProducerConsumer,
		queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"),
	)
	if speechClient != nil {
		// fixed taunt pool repeats often, so audio gets a memory L1
		speechCache := cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(256))
		q.RegisterJob(usecase.NewReactionSpeechJob(lgr, speechClient, speechCache, 10*time.Minute))
	}
	return q
}

// ProvideReactionEngine creates the commentary engine.
func ProvideReactionEngine(lgr *logger.Logger, q *queue.RedisQueue, m repository.Metrics, cfg *config.Config) *usecase.ReactionEngine {
	return usecase.NewReactionEngine(lgr, q, m, cfg.Reactions.ThresholdPct, cfg.Reactions.Cooldown)
}

// ProvideTranscriptLog creates the batched transcript log, flushing
// through the Redis queue.
func ProvideTranscriptLog(lgr *logger.Logger, q *queue.RedisQueue) *usecase.TranscriptLog {
	return usecase.NewTranscriptLog(lgr, q, 30*time.Second, 100)
}

// ProvideVoiceHandler creates the voice endpoints.
func ProvideVoiceHandler(lgr *logger.Logger, sessions *usecase.SessionManager, speechClient *speech.Client, transcripts *usecase.TranscriptLog, m repository.Metrics) *api.VoiceHandler {
	var transcriber repository.Transcriber
	if speechClient != nil {
		transcriber = speechClient
	}
	return api.NewVoiceHandler(lgr, sessions, transcriber, transcripts, m)
}

// ProvideMarketHandler creates the market and portfolio endpoints.
func ProvideMarketHandler(lgr *logger.Logger, sim *usecase.MarketSimulator, exec *usecase.TradeExecutor, store repository.PortfolioStore, tradeLog repository.TradeLog) *api.MarketHandler {
	return api.NewMarketHandler(lgr, sim, exec, store, tradeLog)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	lgr *logger.Logger,
	sim *usecase.MarketSimulator,
	sessions *usecase.SessionManager,
	consumer *pkgkafka.Consumer,
	events *usecase.TradeEventsHandler,
	reactionQueue *queue.RedisQueue,
	reactions *usecase.ReactionEngine,
	store repository.PortfolioStore,
	tradeLog repository.TradeLog,
	publisher repository.TradePublisher,
	chClient *pkgch.Client,
	transcripts *usecase.TranscriptLog,
	voiceHandler *api.VoiceHandler,
	marketHandler *api.MarketHandler,
	wsHandler *api.MarketWSHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, lgr, server.Deps{
		Simulator:     sim,
		Sessions:      sessions,
		Consumer:      consumer,
		EventsHandler: events,
		ReactionQueue: reactionQueue,
		Reactions:     reactions,
		Store:         store,
		TradeLog:      tradeLog,
		Publisher:     publisher,
		CHClient:      chClient,
		Transcripts:   transcripts,
		VoiceHandler:  voiceHandler,
		MarketHandler: marketHandler,
		WSHandler:     wsHandler,
	})
}
