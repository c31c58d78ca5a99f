package ratecardmock

import (
	"context"

	domain "lending-engine/internal/domain/ratecard"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Cards/Repeats serve as static fixtures when no func is set.
type Repo struct {
	FindRateCardsFn       func(ctx context.Context, f domain.Filter) ([]domain.RateCard, error)
	FindRepeatRateCardsFn func(ctx context.Context, f domain.RepeatFilter) ([]domain.RepeatRateCard, error)

	Cards   []domain.RateCard
	Repeats []domain.RepeatRateCard
}

func (m *Repo) FindRateCards(ctx context.Context, f domain.Filter) ([]domain.RateCard, error) {
	if m.FindRateCardsFn != nil {
		return m.FindRateCardsFn(ctx, f)
	}
	return m.Cards, nil
}

func (m *Repo) FindRepeatRateCards(ctx context.Context, f domain.RepeatFilter) ([]domain.RepeatRateCard, error) {
	if m.FindRepeatRateCardsFn != nil {
		return m.FindRepeatRateCardsFn(ctx, f)
	}
	return m.Repeats, nil
}
