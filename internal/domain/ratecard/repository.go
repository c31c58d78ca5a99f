package ratecard

import "context"

type Repository interface {
	// All published brackets matching f, in no particular order.
	FindRateCards(ctx context.Context, f Filter) ([]RateCard, error)
	// All repeat overrides matching f, in no particular order.
	FindRepeatRateCards(ctx context.Context, f RepeatFilter) ([]RepeatRateCard, error)
}
