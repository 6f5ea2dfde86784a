package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"WhaleWhisperer/internal/domain/models"
	domrepo "WhaleWhisperer/internal/domain/repository"
	"WhaleWhisperer/pkg/logger"
)

// TradeEventsHandler consumes executed-trade events and writes them
// to the audit log. Bad payloads are dropped, not retried.
type TradeEventsHandler struct {
	logger   *logger.Logger
	topic    string
	tradeLog domrepo.TradeLog
	metrics  domrepo.Metrics
}

func NewTradeEventsHandler(lgr *logger.Logger, topic string, tradeLog domrepo.TradeLog, metrics domrepo.Metrics) *TradeEventsHandler {
	return &TradeEventsHandler{
		logger:   lgr,
		topic:    topic,
		tradeLog: tradeLog,
		metrics:  metrics,
	}
}

func (h *TradeEventsHandler) Topic() string { return h.topic }

func (h *TradeEventsHandler) Handle(ctx context.Context, data []byte) error {
	var trade models.ExecutedTrade
	if err := json.Unmarshal(data, &trade); err != nil {
		h.metrics.RecordError("trade_event_decode")
		h.logger.Warn("dropping malformed trade event", logger.Error(err))
		return nil
	}
	if trade.User == "" || trade.Symbol == "" {
		h.metrics.RecordError("trade_event_invalid")
		return nil
	}

	if err := h.tradeLog.Record(ctx, &trade); err != nil {
		return fmt.Errorf("record trade event: %w", err)
	}
	h.logger.Debug("trade event persisted",
		logger.String("user", trade.User),
		logger.String("symbol", trade.Symbol),
		logger.String("action", trade.Action))
	return nil
}
