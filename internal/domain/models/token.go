package models

import "time"

// Token is one entry in the tradable catalog. DisplayName is the
// phonetically distinct name used for voice matching and prompts;
// Aliases holds known phonetic misspellings for hard-to-pronounce
// symbols so matching can short-circuit fuzzy scoring.
type Token struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Symbol      string   `json:"symbol" yaml:"symbol"`
	DisplayName string   `json:"displayName" yaml:"display_name"`
	Price       float64  `json:"price" yaml:"price"`
	Change24h   float64  `json:"change24h" yaml:"change_24h"`
	Volume      float64  `json:"volume" yaml:"volume"`
	Volatility  float64  `json:"volatility" yaml:"volatility"`
	Aliases     []string `json:"-" yaml:"aliases"`
}

// Tick is one simulated price update for a token.
type Tick struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
	Timestamp int64   `json:"t"` // unix seconds
}

// Holding is one position in a user's portfolio.
type Holding struct {
	TokenID      string  `json:"tokenId"`
	TokenName    string  `json:"tokenName"`
	Symbol       string  `json:"symbol"`
	DisplayName  string  `json:"displayName"`
	Quantity     float64 `json:"quantity"`
	BuyPrice     float64 `json:"buyPrice"` // average entry price
	CurrentPrice float64 `json:"currentPrice"`
}

// Portfolio is the full persisted state for one user.
type Portfolio struct {
	User      string    `json:"user"`
	Balance   float64   `json:"balance"`
	Holdings  []Holding `json:"holdings"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NetWorth is cash plus holdings at current prices.
func (p *Portfolio) NetWorth() float64 {
	total := p.Balance
	for _, h := range p.Holdings {
		total += h.Quantity * h.CurrentPrice
	}
	return total
}

// Holding returns the position for symbol, or nil.
func (p *Portfolio) Holding(symbol string) *Holding {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return &p.Holdings[i]
		}
	}
	return nil
}

// LeaderboardEntry is one row of the net-worth ranking.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	User     string  `json:"user"`
	NetWorth float64 `json:"netWorth"`
}
