package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"WhaleWhisperer/internal/domain/models"
	domrepo "WhaleWhisperer/internal/domain/repository"
	mid "WhaleWhisperer/internal/middleware"
)

// MarketSimulator owns the token catalog and random-walks prices on a
// fixed interval. Every tick is pushed through the pipeline to the
// websocket subscribers and recorded to metrics. The catalog snapshot
// is the read-only token view the interpreter and executor use.
type MarketSimulator struct {
	mu       sync.RWMutex
	tokens   []models.Token
	interval time.Duration
	maxDrift float64 // percent per tick
	metrics  domrepo.Metrics
	pipe     *mid.TickPipeline
	rng      *rand.Rand
	stopCh   chan struct{}
	started  bool
}

// NewMarketSimulator creates a simulator over a catalog seed.
func NewMarketSimulator(tokens []models.Token, interval time.Duration, maxDriftPct float64, metrics domrepo.Metrics, pipe *mid.TickPipeline) *MarketSimulator {
	cp := make([]models.Token, len(tokens))
	copy(cp, tokens)
	return &MarketSimulator{
		tokens:   cp,
		interval: interval,
		maxDrift: maxDriftPct,
		metrics:  metrics,
		pipe:     pipe,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the tick loop.
func (m *MarketSimulator) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("simulator already started")
	}
	m.started = true
	m.mu.Unlock()

	if m.pipe != nil {
		m.pipe.Start(ctx)
	}
	go m.loop(ctx)
	return nil
}

func (m *MarketSimulator) loop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.step(ctx)
		}
	}
}

// step drifts every token once and publishes the resulting ticks.
func (m *MarketSimulator) step(ctx context.Context) {
	now := time.Now().Unix()

	m.mu.Lock()
	ticks := make([]*models.Tick, 0, len(m.tokens))
	for i := range m.tokens {
		t := &m.tokens[i]
		// volatility scales the drift range; 0 volatility keeps the
		// token within the global max
		scale := t.Volatility
		if scale <= 0 {
			scale = 1
		}
		changePct := (m.rng.Float64() - 0.5) * 2 * m.maxDrift * scale
		t.Price *= 1 + changePct/100
		t.Change24h += changePct * 0.5
		ticks = append(ticks, &models.Tick{
			Symbol:    t.Symbol,
			Price:     t.Price,
			Change24h: t.Change24h,
			Timestamp: now,
		})
	}
	m.mu.Unlock()

	for _, tick := range ticks {
		m.metrics.RecordLastPrice(tick.Symbol, tick.Price)
		if m.pipe != nil {
			_ = m.pipe.Process(ctx, tick)
		}
	}
}

// Catalog returns a read-only snapshot of the current token state.
func (m *MarketSimulator) Catalog() []models.Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make([]models.Token, len(m.tokens))
	copy(cp, m.tokens)
	return cp
}

// Price returns the current price of symbol.
func (m *MarketSimulator) Price(symbol string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tokens {
		if t.Symbol == symbol {
			return t.Price, true
		}
	}
	return 0, false
}

// Stop halts the tick loop.
func (m *MarketSimulator) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return
	}
	m.started = false
	close(m.stopCh)
	if m.pipe != nil {
		m.pipe.Stop()
	}
}
