package repository

import (
	"context"
	"time"

	"WhaleWhisperer/internal/domain/models"
)

// PortfolioStore persists per-user balances, holdings, and the
// net-worth leaderboard.
type PortfolioStore interface {
	Get(ctx context.Context, user string) (*models.Portfolio, error)
	Save(ctx context.Context, p *models.Portfolio) error
	Reset(ctx context.Context, user string) (*models.Portfolio, error)
	Leaderboard(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
	Close() error
}

// TradeLog stores the audit history of executed trades. A zero since
// means no lower time bound.
type TradeLog interface {
	Record(ctx context.Context, t *models.ExecutedTrade) error
	History(ctx context.Context, user string, since time.Time, limit int) ([]*models.ExecutedTrade, error)
	Health(ctx context.Context) error
	Close() error
}

// TradePublisher emits executed trades as events.
type TradePublisher interface {
	Publish(ctx context.Context, t *models.ExecutedTrade) error
	Close() error
}

// Transcriber converts captured audio into text. An empty transcript
// is not an error; callers treat it as "nothing was said".
type Transcriber interface {
	Transcribe(ctx context.Context, audioB64 string) (string, error)
}

// Synthesizer converts response text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Metrics records operational counters for Prometheus.
type Metrics interface {
	RecordCommand(intent string, confidence float64)
	RecordConfirmation(outcome string)
	RecordTradeExecuted(action, symbol string)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
