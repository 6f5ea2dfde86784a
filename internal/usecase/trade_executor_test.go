package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"

	"WhaleWhisperer/internal/domain/models"
	"WhaleWhisperer/pkg/logger"
)

// memStore is an in-memory PortfolioStore.
type memStore struct {
	mu         sync.Mutex
	portfolios map[string]*models.Portfolio
	initial    float64
}

func newMemStore(initial float64) *memStore {
	return &memStore{portfolios: make(map[string]*models.Portfolio), initial: initial}
}

func (s *memStore) Get(_ context.Context, user string) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.portfolios[user]; ok {
		cp := *p
		cp.Holdings = append([]models.Holding(nil), p.Holdings...)
		return &cp, nil
	}
	return &models.Portfolio{User: user, Balance: s.initial}, nil
}

func (s *memStore) Save(_ context.Context, p *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.Holdings = append([]models.Holding(nil), p.Holdings...)
	s.portfolios[p.User] = &cp
	return nil
}

func (s *memStore) Reset(_ context.Context, user string) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Portfolio{User: user, Balance: s.initial}
	s.portfolios[user] = p
	return p, nil
}

func (s *memStore) Leaderboard(context.Context, int) ([]models.LeaderboardEntry, error) {
	return nil, nil
}

func (s *memStore) Close() error { return nil }

// fixedMarket serves static prices.
type fixedMarket struct {
	tokens []models.Token
}

func (m *fixedMarket) Catalog() []models.Token { return m.tokens }

func (m *fixedMarket) Price(symbol string) (float64, bool) {
	for _, t := range m.tokens {
		if t.Symbol == symbol {
			return t.Price, true
		}
	}
	return 0, false
}

// nopMetrics satisfies the metrics interface for tests.
type nopMetrics struct{}

func (nopMetrics) RecordCommand(string, float64)     {}
func (nopMetrics) RecordConfirmation(string)         {}
func (nopMetrics) RecordTradeExecuted(string, string) {}
func (nopMetrics) RecordLastPrice(string, float64)   {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordLatency(string, float64)     {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	lgr, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return lgr
}

func testMarket() *fixedMarket {
	return &fixedMarket{tokens: []models.Token{
		{ID: "pepe", Name: "Pepe Coin", Symbol: "PEPE", DisplayName: "Pepe", Price: 0.5},
		{ID: "bonk", Name: "Bonk Inu", Symbol: "BONK", DisplayName: "Bonk", Price: 2.0},
	}}
}

func newTestExecutor(t *testing.T) (*TradeExecutor, *memStore) {
	t.Helper()
	store := newMemStore(10000)
	exec := NewTradeExecutor(testLogger(t), store, nil, testMarket(), nopMetrics{})
	return exec, store
}

func TestExecuteBuyDollars(t *testing.T) {
	exec, store := newTestExecutor(t)
	ctx := context.Background()

	resp, err := exec.Execute(ctx, "alice", models.TradeAction{
		Action: models.ActionBuy, Symbol: "PEPE", Amount: 100,
	})
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if !strings.Contains(resp, "Bought") {
		t.Fatalf("unexpected response: %q", resp)
	}

	p, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get portfolio: %v", err)
	}
	if p.Balance != 9900 {
		t.Fatalf("balance = %v, want 9900", p.Balance)
	}
	h := p.Holding("PEPE")
	if h == nil {
		t.Fatalf("expected a PEPE holding")
	}
	if h.Quantity != 200 {
		t.Fatalf("quantity = %v, want 200", h.Quantity)
	}
}

func TestExecuteBuyInsufficientFunds(t *testing.T) {
	exec, store := newTestExecutor(t)
	ctx := context.Background()

	resp, err := exec.Execute(ctx, "alice", models.TradeAction{
		Action: models.ActionBuy, Symbol: "BONK", Amount: 20000,
	})
	if err != nil {
		t.Fatalf("buy returned error: %v", err)
	}
	if !strings.Contains(resp, "Insufficient funds") {
		t.Fatalf("unexpected response: %q", resp)
	}

	p, _ := store.Get(ctx, "alice")
	if p.Balance != 10000 {
		t.Fatalf("balance changed on rejected trade: %v", p.Balance)
	}
}

func TestExecuteBuyAveragesEntryPrice(t *testing.T) {
	exec, store := newTestExecutor(t)
	ctx := context.Background()

	if _, err := exec.Execute(ctx, "alice", models.TradeAction{Action: models.ActionBuy, Symbol: "BONK", Quantity: 10}); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	// second buy at a new price must move the average
	exec.market.(*fixedMarket).tokens[1].Price = 4.0
	if _, err := exec.Execute(ctx, "alice", models.TradeAction{Action: models.ActionBuy, Symbol: "BONK", Quantity: 10}); err != nil {
		t.Fatalf("second buy: %v", err)
	}

	p, _ := store.Get(ctx, "alice")
	h := p.Holding("BONK")
	if h == nil {
		t.Fatalf("expected a BONK holding")
	}
	if h.Quantity != 20 {
		t.Fatalf("quantity = %v, want 20", h.Quantity)
	}
	if h.BuyPrice != 3.0 {
		t.Fatalf("average entry = %v, want 3.0", h.BuyPrice)
	}
}

func TestExecuteSellAll(t *testing.T) {
	exec, store := newTestExecutor(t)
	ctx := context.Background()

	if _, err := exec.Execute(ctx, "alice", models.TradeAction{Action: models.ActionBuy, Symbol: "PEPE", Amount: 100}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	resp, err := exec.Execute(ctx, "alice", models.TradeAction{
		Action: models.ActionSell, Symbol: "PEPE", Quantity: models.SellAllQuantity,
	})
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if !strings.Contains(resp, "Sold") {
		t.Fatalf("unexpected response: %q", resp)
	}

	p, _ := store.Get(ctx, "alice")
	if p.Balance != 10000 {
		t.Fatalf("balance = %v, want 10000", p.Balance)
	}
	if p.Holding("PEPE") != nil {
		t.Fatalf("holding should be removed after selling everything")
	}
}

func TestExecuteSellWithoutHolding(t *testing.T) {
	exec, _ := newTestExecutor(t)

	resp, err := exec.Execute(context.Background(), "bob", models.TradeAction{
		Action: models.ActionSell, Symbol: "BONK", Quantity: 5,
	})
	if err != nil {
		t.Fatalf("sell returned error: %v", err)
	}
	if !strings.Contains(resp, "don't own") {
		t.Fatalf("unexpected response: %q", resp)
	}
}

func TestExecuteSellComputesProfit(t *testing.T) {
	exec, store := newTestExecutor(t)
	ctx := context.Background()

	if _, err := exec.Execute(ctx, "alice", models.TradeAction{Action: models.ActionBuy, Symbol: "BONK", Quantity: 10}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	exec.market.(*fixedMarket).tokens[1].Price = 3.0

	resp, err := exec.Execute(ctx, "alice", models.TradeAction{
		Action: models.ActionSell, Symbol: "BONK", Quantity: 10,
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !strings.Contains(resp, "+$10.00") {
		t.Fatalf("expected +$10.00 profit in response, got %q", resp)
	}

	p, _ := store.Get(ctx, "alice")
	if p.Balance != 10010 {
		t.Fatalf("balance = %v, want 10010", p.Balance)
	}
}

func TestExecuteRejectsZeroAmounts(t *testing.T) {
	exec, _ := newTestExecutor(t)

	if _, err := exec.Execute(context.Background(), "alice", models.TradeAction{
		Action: models.ActionBuy, Symbol: "PEPE",
	}); err == nil {
		t.Fatalf("expected error for a buy without an amount")
	}
}

func TestExecuteReset(t *testing.T) {
	exec, store := newTestExecutor(t)
	ctx := context.Background()

	if _, err := exec.Execute(ctx, "alice", models.TradeAction{Action: models.ActionBuy, Symbol: "PEPE", Amount: 500}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	resp, err := exec.Execute(ctx, "alice", models.TradeAction{Action: models.ActionReset})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(resp, "$10000.00") {
		t.Fatalf("unexpected response: %q", resp)
	}

	p, _ := store.Get(ctx, "alice")
	if p.Balance != 10000 || len(p.Holdings) != 0 {
		t.Fatalf("portfolio not reset: balance=%v holdings=%d", p.Balance, len(p.Holdings))
	}
}

func TestExecuteCheckEmptyPortfolio(t *testing.T) {
	exec, _ := newTestExecutor(t)

	resp, err := exec.Execute(context.Background(), "carol", models.TradeAction{Action: models.ActionCheck})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(resp, "all cash") {
		t.Fatalf("unexpected response: %q", resp)
	}
}

// capturingPublisher records published trade events.
type capturingPublisher struct {
	events []*models.ExecutedTrade
}

func (p *capturingPublisher) Publish(_ context.Context, t *models.ExecutedTrade) error {
	p.events = append(p.events, t)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func TestBuyEmitsOneAuditEvent(t *testing.T) {
	store := newMemStore(10000)
	pub := &capturingPublisher{}
	exec := NewTradeExecutor(testLogger(t), store, pub, testMarket(), nopMetrics{})

	if _, err := exec.Execute(context.Background(), "alice", models.TradeAction{
		Action: models.ActionBuy, Symbol: "PEPE", Amount: 100,
	}); err != nil {
		t.Fatalf("buy: %v", err)
	}

	// one event on the stream; the consumer owns the trade log write
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.User != "alice" || ev.Symbol != "PEPE" || ev.USD != 100 {
		t.Fatalf("event %+v", ev)
	}
}

func TestSellEmitsOneAuditEvent(t *testing.T) {
	store := newMemStore(10000)
	pub := &capturingPublisher{}
	exec := NewTradeExecutor(testLogger(t), store, pub, testMarket(), nopMetrics{})
	ctx := context.Background()

	if _, err := exec.Execute(ctx, "alice", models.TradeAction{
		Action: models.ActionBuy, Symbol: "PEPE", Amount: 100,
	}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := exec.Execute(ctx, "alice", models.TradeAction{
		Action: models.ActionSell, Symbol: "PEPE", Quantity: models.SellAllQuantity,
	}); err != nil {
		t.Fatalf("sell: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.events[1].Action != models.ActionSell {
		t.Fatalf("second event action %q", pub.events[1].Action)
	}
}
