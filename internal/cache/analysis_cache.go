// Package cache keeps recent engine results per user in Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spivot-hq/spivot/backend-go/internal/config"
	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

const (
	analysisKeyPrefix = "spivot:analysis"
	scanBatchSize     = 100

	kindCashflow  = "cashflow"
	kindScore     = "score"
	kindDashboard = "dashboard"
)

// AnalysisCache stores derived results that only change when a user's
// records change.
type AnalysisCache interface {
	GetCashflow(ctx context.Context, userID int64) (*domain.CashflowAnalysis, bool, error)
	SetCashflow(ctx context.Context, userID int64, analysis domain.CashflowAnalysis) error
	GetScore(ctx context.Context, userID int64) (*domain.SpivotScore, bool, error)
	SetScore(ctx context.Context, userID int64, score domain.SpivotScore) error
	GetDashboard(ctx context.Context, userID int64) (*domain.DashboardMetrics, bool, error)
	SetDashboard(ctx context.Context, userID int64, metrics domain.DashboardMetrics) error
	InvalidateUser(ctx context.Context, userID int64) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalysisCache struct{}

func NewAnalysisCache(cfg config.CacheConfig) (AnalysisCache, error) {
	if !cfg.Enabled {
		return &noopAnalysisCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalysisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnalysisCache() AnalysisCache {
	return &noopAnalysisCache{}
}

func (c *redisAnalysisCache) GetCashflow(ctx context.Context, userID int64) (*domain.CashflowAnalysis, bool, error) {
	return getJSON[domain.CashflowAnalysis](ctx, c.client, analysisKey(userID, kindCashflow))
}

func (c *redisAnalysisCache) SetCashflow(ctx context.Context, userID int64, analysis domain.CashflowAnalysis) error {
	return setJSON(ctx, c.client, analysisKey(userID, kindCashflow), analysis, c.ttl)
}

func (c *redisAnalysisCache) GetScore(ctx context.Context, userID int64) (*domain.SpivotScore, bool, error) {
	return getJSON[domain.SpivotScore](ctx, c.client, analysisKey(userID, kindScore))
}

func (c *redisAnalysisCache) SetScore(ctx context.Context, userID int64, score domain.SpivotScore) error {
	return setJSON(ctx, c.client, analysisKey(userID, kindScore), score, c.ttl)
}

func (c *redisAnalysisCache) GetDashboard(ctx context.Context, userID int64) (*domain.DashboardMetrics, bool, error) {
	return getJSON[domain.DashboardMetrics](ctx, c.client, analysisKey(userID, kindDashboard))
}

func (c *redisAnalysisCache) SetDashboard(ctx context.Context, userID int64, metrics domain.DashboardMetrics) error {
	return setJSON(ctx, c.client, analysisKey(userID, kindDashboard), metrics, c.ttl)
}

func (c *redisAnalysisCache) InvalidateUser(ctx context.Context, userID int64) error {
	return deleteKeysWithPrefix(ctx, c.client, userPrefix(userID), scanBatchSize)
}

func (c *redisAnalysisCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analysisKeyPrefix, scanBatchSize)
}

func (n *noopAnalysisCache) GetCashflow(ctx context.Context, userID int64) (*domain.CashflowAnalysis, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) SetCashflow(ctx context.Context, userID int64, analysis domain.CashflowAnalysis) error {
	return nil
}

func (n *noopAnalysisCache) GetScore(ctx context.Context, userID int64) (*domain.SpivotScore, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) SetScore(ctx context.Context, userID int64, score domain.SpivotScore) error {
	return nil
}

func (n *noopAnalysisCache) GetDashboard(ctx context.Context, userID int64) (*domain.DashboardMetrics, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) SetDashboard(ctx context.Context, userID int64, metrics domain.DashboardMetrics) error {
	return nil
}

func (n *noopAnalysisCache) InvalidateUser(ctx context.Context, userID int64) error {
	return nil
}

func (n *noopAnalysisCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// userPrefix ends with ':' so user 1 never matches user 10.
func userPrefix(userID int64) string {
	return fmt.Sprintf("%s:%d:", analysisKeyPrefix, userID)
}

func analysisKey(userID int64, kind string) string {
	return userPrefix(userID) + kind
}

func (c *redisAnalysisCache) Close() error {
	return c.client.Close()
}
