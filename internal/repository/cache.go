package repository

import (
	"context"
	"encoding/json"
	"time"

	"skillforge-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const analyticsCacheTTL = 60 * time.Second

// analyticsCache keeps computed instructor analytics views in Redis for a
// short TTL. Only the post-authorization view is cached; the Access Gate
// check itself always runs fresh. Cache failures degrade to a miss.
type analyticsCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewAnalyticsCache(client *redis.Client, logger *zap.Logger) domain.AnalyticsCache {
	return &analyticsCache{client: client, logger: logger}
}

func cacheKey(courseID string) string {
	return "analytics:" + courseID
}

func (c *analyticsCache) Get(ctx context.Context, courseID string) (*domain.AnalyticsView, bool) {
	payload, err := c.client.Get(ctx, cacheKey(courseID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("analytics cache read failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, false
	}

	var view domain.AnalyticsView
	if err := json.Unmarshal(payload, &view); err != nil {
		c.logger.Warn("analytics cache payload corrupt", zap.String("course_id", courseID), zap.Error(err))
		return nil, false
	}
	return &view, true
}

func (c *analyticsCache) Set(ctx context.Context, courseID string, view *domain.AnalyticsView) {
	payload, err := json.Marshal(view)
	if err != nil {
		c.logger.Warn("analytics cache encode failed", zap.String("course_id", courseID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(courseID), payload, analyticsCacheTTL).Err(); err != nil {
		c.logger.Warn("analytics cache write failed", zap.String("course_id", courseID), zap.Error(err))
	}
}
