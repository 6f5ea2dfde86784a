package models

import "time"

// Trade actions. Closed set so the executor can switch exhaustively.
const (
	ActionBuy   = "buy"
	ActionSell  = "sell"
	ActionCheck = "check"
	ActionReset = "reset"
)

// SellAllQuantity is the sentinel for "sell everything I hold".
const SellAllQuantity = -1

// TradeAction is the simplified record handed to the executor once a
// voice command has been confirmed. Exactly one of Amount (dollars)
// or Quantity (token units) is set for a buy; sells use Quantity with
// the SellAllQuantity sentinel for "all".
type TradeAction struct {
	Action   string  `json:"action"`
	Symbol   string  `json:"symbol,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
}

// ExecutedTrade is the audit record of a completed buy or sell.
type ExecutedTrade struct {
	User      string    `json:"user"`
	Timestamp time.Time `json:"ts"`
	Action    string    `json:"action"`
	Symbol    string    `json:"symbol"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	USD       float64   `json:"usd"`
	PL        float64   `json:"pl"`
}
