package config

import (
	"context"
	"fmt"
	"os"

	"lending-engine/internal/domain/errs"
)

// Provider hands out a validated Feature snapshot. Callers take one snapshot
// per request and pass it down so every component sees the same values.
type Provider interface {
	Snapshot(ctx context.Context) (*Feature, error)
}

// FileProvider re-reads a YAML file on every snapshot.
type FileProvider struct{ path string }

func NewFileProvider(path string) *FileProvider { return &FileProvider{path: path} }

func (p *FileProvider) Snapshot(ctx context.Context) (*Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", errs.ErrConfigurationMissing, p.path, err)
	}
	return ParseFeature(data)
}

type staticProvider struct{ f *Feature }

// Static always returns f. Used by tests and tools.
func Static(f *Feature) Provider { return staticProvider{f: f} }

func (s staticProvider) Snapshot(context.Context) (*Feature, error) {
	if s.f == nil {
		return nil, fmt.Errorf("%w: no feature config", errs.ErrConfigurationMissing)
	}
	return s.f, nil
}
