package usecase

import (
	"context"
	"fmt"
	"time"

	"WhaleWhisperer/internal/domain/models"
	domrepo "WhaleWhisperer/internal/domain/repository"
	"WhaleWhisperer/pkg/logger"
)

// priceSource is the minimal market view the executor needs.
type priceSource interface {
	Price(symbol string) (float64, bool)
	Catalog() []models.Token
}

// TradeExecutor applies confirmed trade actions to portfolios and
// publishes trade events. Persistence to the trade log happens on the
// consumer side of the event stream, so each trade is written once.
type TradeExecutor struct {
	logger    *logger.Logger
	store     domrepo.PortfolioStore
	publisher domrepo.TradePublisher
	market    priceSource
	metrics   domrepo.Metrics
}

// NewTradeExecutor wires the executor. publisher may be nil in tests;
// execution still succeeds, only the audit event is skipped.
func NewTradeExecutor(lgr *logger.Logger, store domrepo.PortfolioStore, publisher domrepo.TradePublisher, market priceSource, metrics domrepo.Metrics) *TradeExecutor {
	return &TradeExecutor{
		logger:    lgr,
		store:     store,
		publisher: publisher,
		market:    market,
		metrics:   metrics,
	}
}

// Execute runs one trade action for user and returns the spoken
// response text.
func (e *TradeExecutor) Execute(ctx context.Context, user string, action models.TradeAction) (string, error) {
	start := time.Now()
	defer func() {
		e.metrics.RecordLatency("trade_execute", time.Since(start).Seconds())
	}()

	switch action.Action {
	case models.ActionBuy:
		return e.buy(ctx, user, action)
	case models.ActionSell:
		return e.sell(ctx, user, action)
	case models.ActionCheck:
		return e.check(ctx, user)
	case models.ActionReset:
		return e.reset(ctx, user)
	default:
		e.metrics.RecordError("unknown_action")
		return "", fmt.Errorf("unknown trade action %q", action.Action)
	}
}

func (e *TradeExecutor) buy(ctx context.Context, user string, action models.TradeAction) (string, error) {
	token, price, err := e.lookupToken(action.Symbol)
	if err != nil {
		return "", err
	}

	var quantity, usd float64
	switch {
	case action.Amount > 0:
		usd = action.Amount
		quantity = usd / price
	case action.Quantity > 0:
		quantity = action.Quantity
		usd = quantity * price
	default:
		e.metrics.RecordError("invalid_amount")
		return "", fmt.Errorf("buy requires a positive amount")
	}

	p, err := e.store.Get(ctx, user)
	if err != nil {
		return "", fmt.Errorf("load portfolio: %w", err)
	}
	if usd > p.Balance {
		return fmt.Sprintf("Insufficient funds! You only have $%.2f but need $%.2f for this trade.", p.Balance, usd), nil
	}

	p.Balance -= usd
	if h := p.Holding(token.Symbol); h != nil {
		// average the entry price across re-buys
		totalCost := h.BuyPrice*h.Quantity + usd
		h.Quantity += quantity
		h.BuyPrice = totalCost / h.Quantity
		h.CurrentPrice = price
	} else {
		p.Holdings = append(p.Holdings, models.Holding{
			TokenID:      token.ID,
			TokenName:    token.Name,
			Symbol:       token.Symbol,
			DisplayName:  token.DisplayName,
			Quantity:     quantity,
			BuyPrice:     price,
			CurrentPrice: price,
		})
	}
	e.refreshPrices(p)
	if err := e.store.Save(ctx, p); err != nil {
		return "", fmt.Errorf("save portfolio: %w", err)
	}

	e.audit(ctx, &models.ExecutedTrade{
		User:      user,
		Timestamp: time.Now(),
		Action:    models.ActionBuy,
		Symbol:    token.Symbol,
		Quantity:  quantity,
		Price:     price,
		USD:       usd,
	})
	e.metrics.RecordTradeExecuted(models.ActionBuy, token.Symbol)

	return fmt.Sprintf("Bought %s %s for $%.2f! To the moon! Your balance is now $%.2f.",
		fmtQuantity(quantity), token.DisplayName, usd, p.Balance), nil
}

func (e *TradeExecutor) sell(ctx context.Context, user string, action models.TradeAction) (string, error) {
	token, price, err := e.lookupToken(action.Symbol)
	if err != nil {
		return "", err
	}

	p, err := e.store.Get(ctx, user)
	if err != nil {
		return "", fmt.Errorf("load portfolio: %w", err)
	}
	h := p.Holding(token.Symbol)
	if h == nil || h.Quantity <= 0 {
		return fmt.Sprintf("You don't own any %s! Can't sell what you don't have.", token.DisplayName), nil
	}

	quantity := action.Quantity
	switch {
	case quantity == models.SellAllQuantity:
		quantity = h.Quantity
	case action.Amount > 0:
		// dollar-denominated sell, convert at the current price
		quantity = action.Amount / price
	}
	if quantity <= 0 {
		e.metrics.RecordError("invalid_amount")
		return "", fmt.Errorf("sell requires a positive quantity")
	}
	if quantity > h.Quantity {
		return fmt.Sprintf("You only have %s %s, can't sell %s.",
			fmtQuantity(h.Quantity), token.DisplayName, fmtQuantity(quantity)), nil
	}

	usd := quantity * price
	pl := (price - h.BuyPrice) * quantity
	p.Balance += usd
	h.Quantity -= quantity
	if h.Quantity <= 1e-9 {
		e.removeHolding(p, token.Symbol)
	}
	e.refreshPrices(p)
	if err := e.store.Save(ctx, p); err != nil {
		return "", fmt.Errorf("save portfolio: %w", err)
	}

	e.audit(ctx, &models.ExecutedTrade{
		User:      user,
		Timestamp: time.Now(),
		Action:    models.ActionSell,
		Symbol:    token.Symbol,
		Quantity:  quantity,
		Price:     price,
		USD:       usd,
		PL:        pl,
	})
	e.metrics.RecordTradeExecuted(models.ActionSell, token.Symbol)

	verdict := "Nice profit!"
	if pl < 0 {
		verdict = "Ouch, that one hurt."
	}
	return fmt.Sprintf("Sold %s %s for $%.2f. P&L: %s$%.2f. %s Your balance is now $%.2f.",
		fmtQuantity(quantity), token.DisplayName, usd, plSign(pl), abs(pl), verdict, p.Balance), nil
}

func (e *TradeExecutor) check(ctx context.Context, user string) (string, error) {
	p, err := e.store.Get(ctx, user)
	if err != nil {
		return "", fmt.Errorf("load portfolio: %w", err)
	}
	e.refreshPrices(p)

	if len(p.Holdings) == 0 {
		return fmt.Sprintf("Your portfolio is all cash: $%.2f. Time to ape into something?", p.Balance), nil
	}

	net := p.NetWorth()
	summary := fmt.Sprintf("You have $%.2f in cash and %d positions. Net worth: $%.2f.", p.Balance, len(p.Holdings), net)
	for _, h := range p.Holdings {
		pl := (h.CurrentPrice - h.BuyPrice) * h.Quantity
		summary += fmt.Sprintf(" %s %s, %s$%.2f.", fmtQuantity(h.Quantity), h.DisplayName, plSign(pl), abs(pl))
	}
	return summary, nil
}

func (e *TradeExecutor) reset(ctx context.Context, user string) (string, error) {
	p, err := e.store.Reset(ctx, user)
	if err != nil {
		return "", fmt.Errorf("reset portfolio: %w", err)
	}
	e.metrics.RecordTradeExecuted(models.ActionReset, "")
	return fmt.Sprintf("Portfolio wiped clean! Fresh start with $%.2f. Try not to lose it all this time.", p.Balance), nil
}

// Portfolio returns the user's portfolio with prices refreshed to the
// current market.
func (e *TradeExecutor) Portfolio(ctx context.Context, user string) (*models.Portfolio, error) {
	p, err := e.store.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	e.refreshPrices(p)
	return p, nil
}

func (e *TradeExecutor) lookupToken(symbol string) (*models.Token, float64, error) {
	for _, t := range e.market.Catalog() {
		if t.Symbol == symbol {
			price, ok := e.market.Price(symbol)
			if !ok || price <= 0 {
				e.metrics.RecordError("no_price")
				return nil, 0, fmt.Errorf("no price for %s", symbol)
			}
			tok := t
			return &tok, price, nil
		}
	}
	e.metrics.RecordError("unknown_token")
	return nil, 0, fmt.Errorf("unknown token %q", symbol)
}

func (e *TradeExecutor) refreshPrices(p *models.Portfolio) {
	for i := range p.Holdings {
		if price, ok := e.market.Price(p.Holdings[i].Symbol); ok {
			p.Holdings[i].CurrentPrice = price
		}
	}
}

func (e *TradeExecutor) removeHolding(p *models.Portfolio, symbol string) {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
			return
		}
	}
}

// audit publishes a trade event; failures are logged but never fail
// the trade itself. The event consumer owns the trade log write.
func (e *TradeExecutor) audit(ctx context.Context, t *models.ExecutedTrade) {
	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, t); err != nil {
			e.metrics.RecordError("trade_publish")
			e.logger.Error("failed to publish trade event", logger.Error(err), logger.String("user", t.User))
		}
	}
}

func fmtQuantity(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.4f", q)
}

func plSign(pl float64) string {
	if pl < 0 {
		return "-"
	}
	return "+"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
