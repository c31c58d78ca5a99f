// Package idempotency keeps one submission per (account, request id) in
// flight and replays the recorded outcome of finished ones.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	loanDomain "lending-engine/internal/domain/loan"
)

// How long an in-progress marker lives if the owner never completes or releases it.
const provisionalLockTTL = 60 * time.Second

type entry struct {
	InProgress  bool            `json:"in_progress"`
	Fingerprint string          `json:"fingerprint"`
	RequestID   string          `json:"request_id"`
	Outcome     json.RawMessage `json:"outcome,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RedisGuard implements the loan submission guard on a single Redis key per
// request. ttl bounds how long finished outcomes are replayable.
type RedisGuard struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewRedisGuard(rdb redis.Cmdable, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func buildKey(accountID, requestID string) string {
	return "idemp:loan:" + accountID + ":" + requestID
}

// Acquire returns (nil, nil) when the caller now owns the request, or the
// stored outcome when it already finished with the same fingerprint.
func (g *RedisGuard) Acquire(ctx context.Context, accountID, requestID, fingerprint string) ([]byte, error) {
	key := buildKey(accountID, requestID)
	ok, err := g.provisionalSet(ctx, key, entry{
		InProgress:  true,
		Fingerprint: fingerprint,
		RequestID:   requestID,
		CreatedAt:   g.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", loanDomain.ErrGuardUnavailable, err)
	}
	if ok {
		return nil, nil
	}

	cur, err := g.loadEntry(ctx, key)
	if errors.Is(err, redis.Nil) {
		// owner released between our SETNX and GET
		return nil, loanDomain.ErrSubmissionInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", loanDomain.ErrGuardUnavailable, err)
	}
	if cur.Fingerprint != "" && cur.Fingerprint != fingerprint {
		return nil, loanDomain.ErrRequestReused
	}
	if !cur.InProgress && len(cur.Outcome) > 0 {
		return cur.Outcome, nil
	}
	return nil, loanDomain.ErrSubmissionInProgress
}

func (g *RedisGuard) Complete(ctx context.Context, accountID, requestID, fingerprint string, outcome []byte) error {
	return g.saveFinal(ctx, buildKey(accountID, requestID), entry{
		Fingerprint: fingerprint,
		RequestID:   requestID,
		Outcome:     outcome,
		CreatedAt:   g.now(),
	})
}

// Release drops the in-progress marker so the request can be retried.
func (g *RedisGuard) Release(ctx context.Context, accountID, requestID string) error {
	return g.rdb.Del(ctx, buildKey(accountID, requestID)).Err()
}

// ---- Redis helpers ----
func (g *RedisGuard) provisionalSet(ctx context.Context, key string, e entry) (bool, error) {
	payload, _ := json.Marshal(e)
	return g.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (g *RedisGuard) loadEntry(ctx context.Context, key string) (entry, error) {
	var e entry
	v, err := g.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return e, fmt.Errorf("decode guard entry: %w", err)
	}
	return e, nil
}

func (g *RedisGuard) saveFinal(ctx context.Context, key string, e entry) error {
	payload, _ := json.Marshal(e)
	return g.rdb.Set(ctx, key, payload, g.ttl).Err()
}
