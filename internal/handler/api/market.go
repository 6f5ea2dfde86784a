package api

import (
	"time"

	models "WhaleWhisperer/internal/domain/models"
	domrepo "WhaleWhisperer/internal/domain/repository"
	"WhaleWhisperer/internal/usecase"
	xhttp "WhaleWhisperer/pkg/http"
	xlogger "WhaleWhisperer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketHandler serves catalog, portfolio, leaderboard, and trade
// history reads plus the portfolio reset.
type MarketHandler struct {
	logger    *xlogger.Logger
	simulator *usecase.MarketSimulator
	executor  *usecase.TradeExecutor
	store     domrepo.PortfolioStore
	tradeLog  domrepo.TradeLog
}

func NewMarketHandler(logger *xlogger.Logger, simulator *usecase.MarketSimulator, executor *usecase.TradeExecutor, store domrepo.PortfolioStore, tradeLog domrepo.TradeLog) *MarketHandler {
	return &MarketHandler{
		logger:    logger,
		simulator: simulator,
		executor:  executor,
		store:     store,
		tradeLog:  tradeLog,
	}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/market", h.Market)
	g.GET("/portfolio/:user", h.Portfolio)
	g.POST("/portfolio/:user/reset", h.Reset)
	g.GET("/leaderboard", h.Leaderboard)
	g.GET("/history/:user", h.History)
	e.GET("/healthz", h.Health)
}

func (h *MarketHandler) Market(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.simulator.Catalog())
}

func (h *MarketHandler) Portfolio(c echo.Context) error {
	user := c.Param("user")
	if user == "" {
		return xhttp.BadRequestResponse(c, "user is required")
	}
	p, err := h.executor.Portfolio(c.Request().Context(), user)
	if err != nil {
		h.logger.Error("portfolio read error", xlogger.Error(err), xlogger.String("user", user))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *MarketHandler) Reset(c echo.Context) error {
	req := &models.ResetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := h.store.Reset(c.Request().Context(), req.User)
	if err != nil {
		h.logger.Error("portfolio reset error", xlogger.Error(err), xlogger.String("user", req.User))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *MarketHandler) Leaderboard(c echo.Context) error {
	req := &models.LeaderboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	entries, err := h.store.Leaderboard(c.Request().Context(), req.N)
	if err != nil {
		h.logger.Error("leaderboard read error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *MarketHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	since := xhttp.ParseTimeDefault(c.QueryParam("since"), time.Time{})
	trades, err := h.tradeLog.History(c.Request().Context(), req.User, since, req.Limit)
	if err != nil {
		h.logger.Error("history read error", xlogger.Error(err), xlogger.String("user", req.User))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, trades, int64(len(trades)))
}

func (h *MarketHandler) Health(c echo.Context) error {
	if h.tradeLog != nil {
		if err := h.tradeLog.Health(c.Request().Context()); err != nil {
			h.logger.Warn("trade log unhealthy", xlogger.Error(err))
			return xhttp.InternalServerErrorResponse(c)
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
