package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"WhaleWhisperer/internal/domain/models"
	domrepo "WhaleWhisperer/internal/domain/repository"
)

// RedisPortfolioStore keeps each user's portfolio as a JSON blob and
// the leaderboard as a net-worth sorted set.
type RedisPortfolioStore struct {
	client         *redis.Client
	prefix         string
	initialBalance float64
}

// NewRedisPortfolioStore creates the portfolio store.
func NewRedisPortfolioStore(client *redis.Client, prefix string, initialBalance float64) domrepo.PortfolioStore {
	return &RedisPortfolioStore{
		client:         client,
		prefix:         prefix,
		initialBalance: initialBalance,
	}
}

func (s *RedisPortfolioStore) portfolioKey(user string) string {
	return fmt.Sprintf("%s:portfolio:%s", s.prefix, user)
}

func (s *RedisPortfolioStore) leaderboardKey() string {
	return s.prefix + ":leaderboard"
}

// Get returns the user's portfolio, creating a fresh one with the
// initial balance on first access.
func (s *RedisPortfolioStore) Get(ctx context.Context, user string) (*models.Portfolio, error) {
	b, err := s.client.Get(ctx, s.portfolioKey(user)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return s.fresh(user), nil
		}
		return nil, fmt.Errorf("portfolio get: %w", err)
	}

	var p models.Portfolio
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("portfolio unmarshal: %w", err)
	}
	return &p, nil
}

// Save persists the portfolio and refreshes the leaderboard score.
func (s *RedisPortfolioStore) Save(ctx context.Context, p *models.Portfolio) error {
	p.UpdatedAt = time.Now()
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("portfolio marshal: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.portfolioKey(p.User), b, 0)
	pipe.ZAdd(ctx, s.leaderboardKey(), redis.Z{Score: p.NetWorth(), Member: p.User})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("portfolio save: %w", err)
	}
	return nil
}

// Reset restores the user to the initial balance with no holdings.
func (s *RedisPortfolioStore) Reset(ctx context.Context, user string) (*models.Portfolio, error) {
	p := s.fresh(user)
	if err := s.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Leaderboard returns the top n users by net worth.
func (s *RedisPortfolioStore) Leaderboard(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, s.leaderboardKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		user, _ := z.Member.(string)
		entries = append(entries, models.LeaderboardEntry{
			Rank:     i + 1,
			User:     user,
			NetWorth: z.Score,
		})
	}
	return entries, nil
}

func (s *RedisPortfolioStore) Close() error {
	return nil // client lifecycle managed by DI
}

func (s *RedisPortfolioStore) fresh(user string) *models.Portfolio {
	return &models.Portfolio{
		User:      user,
		Balance:   s.initialBalance,
		Holdings:  []models.Holding{},
		UpdatedAt: time.Now(),
	}
}
