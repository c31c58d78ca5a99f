package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"lending-engine/internal/config"
	"lending-engine/internal/domain/errs"
)

var _ config.Provider = (*FeatureProvider)(nil)

// FeatureProvider reads the feature YAML document from a single Redis key so
// operators can change limits and campaigns without a deploy.
type FeatureProvider struct {
	client *redis.Client
	key    string
}

func NewFeatureProvider(client *redis.Client, key string) *FeatureProvider {
	return &FeatureProvider{client: client, key: key}
}

func (p *FeatureProvider) Snapshot(ctx context.Context) (*config.Feature, error) {
	raw, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: feature key %q not set", errs.ErrConfigurationMissing, p.key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: feature config: %v", errs.ErrUpstreamUnavailable, err)
	}
	return config.ParseFeature(raw)
}

// Publish validates f and stores it under the provider's key.
func (p *FeatureProvider) Publish(ctx context.Context, f *config.Feature) error {
	data, err := config.MarshalFeature(f)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, p.key, data, 0).Err()
}
