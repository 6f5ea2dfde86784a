package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"WhaleWhisperer/internal/domain/models"
	domrepo "WhaleWhisperer/internal/domain/repository"
)

// ClickHouseTradeLog stores executed trades for audit and history.
type ClickHouseTradeLog struct {
	db    *sql.DB
	table string
}

// NewClickHouseTradeLog creates ClickHouse-backed trade history.
func NewClickHouseTradeLog(db *sql.DB, table string) domrepo.TradeLog {
	return &ClickHouseTradeLog{db: db, table: table}
}

func (s *ClickHouseTradeLog) Record(ctx context.Context, t *models.ExecutedTrade) error {
	if t == nil {
		return fmt.Errorf("trade is nil")
	}
	q := fmt.Sprintf("INSERT INTO %s (user, ts, action, symbol, quantity, price, usd, pl) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		t.User,
		t.Timestamp,
		t.Action,
		t.Symbol,
		t.Quantity,
		t.Price,
		t.USD,
		t.PL,
	)
	if err != nil {
		return fmt.Errorf("trade insert: %w", err)
	}
	return nil
}

func (s *ClickHouseTradeLog) History(ctx context.Context, user string, since time.Time, limit int) ([]*models.ExecutedTrade, error) {
	q := fmt.Sprintf("SELECT user, ts, action, symbol, quantity, price, usd, pl FROM %s WHERE user = ?", s.table)
	args := []any{user}
	if !since.IsZero() {
		q += " AND ts >= ?"
		args = append(args, since)
	}
	q += " ORDER BY ts DESC LIMIT ?"
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history query: %w", err)
	}
	defer rows.Close()

	var trades []*models.ExecutedTrade
	for rows.Next() {
		var t models.ExecutedTrade
		if err := rows.Scan(&t.User, &t.Timestamp, &t.Action, &t.Symbol, &t.Quantity, &t.Price, &t.USD, &t.PL); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}

func (s *ClickHouseTradeLog) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseTradeLog) Close() error {
	return nil // pool managed by pkg client
}
