// Package redisstore holds the Redis-backed adapters: a read-through rate
// card cache and the live feature-configuration source.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	rcDomain "lending-engine/internal/domain/ratecard"
	"lending-engine/internal/logger"
	"lending-engine/internal/metrics"
)

var _ rcDomain.Repository = (*CachedRateCards)(nil)

// CachedRateCards serves rate card lookups from Redis, falling back to the
// wrapped repository on a miss. Published brackets are immutable so entries
// only expire; they are never invalidated.
type CachedRateCards struct {
	client *redis.Client
	next   rcDomain.Repository
	ttl    time.Duration
}

func NewCachedRateCards(client *redis.Client, next rcDomain.Repository, ttl time.Duration) *CachedRateCards {
	return &CachedRateCards{client: client, next: next, ttl: ttl}
}

func rateCardKey(f rcDomain.Filter) string {
	return fmt.Sprintf("ratecard:v1:%s:%s:%s:%t:%t",
		f.ProductID, f.TransactionType, f.MatrixType, f.IsPremium, f.IsSalaried)
}

func repeatKey(f rcDomain.RepeatFilter) string {
	return "ratecard:repeat:v1:" + strings.Join([]string{f.CustomerSegment, f.ProductLine, f.TransactionMethod}, ":")
}

func (c *CachedRateCards) FindRateCards(ctx context.Context, f rcDomain.Filter) ([]rcDomain.RateCard, error) {
	return readThrough(ctx, c, rateCardKey(f), func() ([]rcDomain.RateCard, error) {
		return c.next.FindRateCards(ctx, f)
	})
}

func (c *CachedRateCards) FindRepeatRateCards(ctx context.Context, f rcDomain.RepeatFilter) ([]rcDomain.RepeatRateCard, error) {
	return readThrough(ctx, c, repeatKey(f), func() ([]rcDomain.RepeatRateCard, error) {
		return c.next.FindRepeatRateCards(ctx, f)
	})
}

// readThrough never fails because of Redis: cache errors degrade to a miss.
func readThrough[T any](ctx context.Context, c *CachedRateCards, key string, load func() ([]T, error)) ([]T, error) {
	log := logger.Ctx(ctx)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if jerr := json.Unmarshal(raw, &out); jerr == nil {
			metrics.RateCardCacheLookups.WithLabelValues("hit").Inc()
			return out, nil
		}
		log.Warn("rate card cache entry corrupt", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		log.Warn("rate card cache read failed", zap.String("key", key), zap.Error(err))
	}
	metrics.RateCardCacheLookups.WithLabelValues("miss").Inc()

	out, err := load()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(out)
	if err != nil {
		return out, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn("rate card cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}
