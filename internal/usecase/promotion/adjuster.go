// Package promotion layers zero-interest campaigns and promo-code provision
// discounts on a computed pricing result.
package promotion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lending-engine/internal/config"
	"lending-engine/internal/domain/applicant"
	"lending-engine/internal/domain/errs"
	"lending-engine/internal/logger"
	"lending-engine/internal/usecase/pricing"
)

type Request struct {
	Feature           *config.Feature
	ApplicantID       string
	Segment           applicant.Segment
	TransactionType   string
	TransactionMethod string
	PromoCode         string
	Now               time.Time
}

type Adjuster struct{}

func NewAdjuster() *Adjuster { return &Adjuster{} }

// Apply returns an adjusted copy of base; base itself is left untouched.
// A requested promo code that cannot be honoured fails the whole call.
func (a *Adjuster) Apply(ctx context.Context, base *pricing.Result, req Request) (*pricing.Result, error) {
	if req.Feature == nil {
		return nil, fmt.Errorf("%w: promotion needs a feature snapshot", errs.ErrConfigurationMissing)
	}
	calc := pricing.New(pricing.ParamsFrom(req.Feature.Pricing))
	out := base.Clone()

	if ZeroInterestEligible(req.Feature.ZeroInterest, out, req) {
		if err := applyZeroInterest(calc, out); err != nil {
			return nil, err
		}
		logger.Ctx(ctx).Info("zero interest applied",
			zap.String("applicant_id", req.ApplicantID),
			zap.String("interest_fold", out.InterestFold.String()),
		)
	}

	if req.PromoCode != "" {
		if err := applyPromoCode(calc, out, req); err != nil {
			logger.Ctx(ctx).Warn("promo code rejected",
				zap.String("promo_code", req.PromoCode),
				zap.Error(err),
			)
			return nil, err
		}
	}

	if out.TotalFeeRate.GreaterThan(out.MaxFeeRate) {
		return nil, fmt.Errorf("%w: total fee rate %s above cap %s",
			errs.ErrPromoNotApplicable, out.TotalFeeRate, out.MaxFeeRate)
	}
	return out, nil
}
