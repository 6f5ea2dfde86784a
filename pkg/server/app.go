package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"WhaleWhisperer/internal/handler/api"
	"WhaleWhisperer/internal/domain/repository"
	"WhaleWhisperer/internal/usecase"
	pkgch "WhaleWhisperer/pkg/clickhouse"
	"WhaleWhisperer/pkg/config"
	xhttp "WhaleWhisperer/pkg/http"
	pkgkafka "WhaleWhisperer/pkg/kafka"
	applogger "WhaleWhisperer/pkg/logger"
	"WhaleWhisperer/pkg/queue"

	"github.com/labstack/echo/v4"
)

// Deps bundles everything the app lifecycle owns.
type Deps struct {
	Simulator     *usecase.MarketSimulator
	Sessions      *usecase.SessionManager
	Consumer      *pkgkafka.Consumer
	EventsHandler *usecase.TradeEventsHandler
	ReactionQueue *queue.RedisQueue
	Reactions     *usecase.ReactionEngine
	Store         repository.PortfolioStore
	TradeLog      repository.TradeLog
	Publisher     repository.TradePublisher
	CHClient      *pkgch.Client
	Transcripts   *usecase.TranscriptLog
	VoiceHandler  *api.VoiceHandler
	MarketHandler *api.MarketHandler
	WSHandler     *api.MarketWSHandler
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	deps       Deps
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, lgr *applogger.Logger, deps Deps) *App {
	return &App{cfg: cfg, logger: lgr, deps: deps}
}

// routes registers every handler on one Echo instance.
type routes struct {
	handlers []xhttp.Handler
}

func (r routes) RegisterRoutes(e *echo.Echo) {
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	a.httpServer = xhttp.NewServer(routes{handlers: []xhttp.Handler{
		a.deps.VoiceHandler,
		a.deps.MarketHandler,
		a.deps.WSHandler,
	}},
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.deps.Simulator.Start(ctx); err != nil {
		return err
	}
	l.Info("market simulator started",
		applogger.Duration("tick", a.cfg.Market.TickInterval),
		applogger.Int("tokens", len(a.cfg.Market.Tokens)))

	if a.deps.Consumer != nil && a.deps.EventsHandler != nil {
		a.deps.Consumer.RegisterHandler(a.deps.EventsHandler)
		go func() {
			if err := a.deps.Consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.deps.EventsHandler.Topic()))
	}

	if a.deps.ReactionQueue != nil {
		if err := a.deps.ReactionQueue.Start(); err != nil {
			l.Warn("reaction queue start error", applogger.Error(err))
		}
		// aggregate repeated warnings/errors into periodic batches
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "logs.aggregated",
			Publisher:      a.deps.ReactionQueue,
		})
	}
	if a.deps.Reactions != nil && a.cfg.Reactions.Enabled {
		go a.watchReactions(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// watchReactions samples leaderboard net worth every tick and feeds
// the commentary engine.
func (a *App) watchReactions(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Market.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			entries, err := a.deps.Store.Leaderboard(ctx, 100)
			if err != nil {
				a.logger.Warn("reaction sampling error", applogger.Error(err))
				continue
			}
			for _, entry := range entries {
				a.deps.Reactions.Observe(ctx, entry.User, entry.NetWorth)
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger

	a.deps.Simulator.Stop()

	if a.deps.Sessions != nil {
		a.deps.Sessions.Shutdown()
	}

	if a.deps.Transcripts != nil {
		a.deps.Transcripts.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}
	a.deps.WSHandler.Close()

	if a.deps.Consumer != nil {
		if err := a.deps.Consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.deps.ReactionQueue != nil {
		l.RemoveCollector()
		if err := a.deps.ReactionQueue.Stop(shutdownCtx); err != nil {
			l.Warn("reaction queue stop error", applogger.Error(err))
		}
	}

	if a.deps.Publisher != nil {
		if err := a.deps.Publisher.Close(); err != nil {
			l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.deps.TradeLog != nil {
		if err := a.deps.TradeLog.Close(); err != nil {
			l.Warn("trade log close error", applogger.Error(err))
		}
	}
	if a.deps.CHClient != nil {
		if err := a.deps.CHClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.deps.Store != nil {
		if err := a.deps.Store.Close(); err != nil {
			l.Warn("portfolio store close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
