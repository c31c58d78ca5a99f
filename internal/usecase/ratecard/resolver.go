// Package ratecard resolves the rate card that governs base interest and
// provision for an applicant.
package ratecard

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lending-engine/internal/config"
	"lending-engine/internal/domain/applicant"
	"lending-engine/internal/domain/errs"
	domain "lending-engine/internal/domain/ratecard"
	"lending-engine/internal/logger"
)

var ErrRateCardNotFound = fmt.Errorf("%w: no rate card matches", errs.ErrConfigurationMissing)

type Query struct {
	ProductID         string
	ProductLine       string
	TransactionType   string
	TransactionMethod string
	Risk              applicant.RiskSnapshot
	// IsFDC is the applicant's current cross-lender check status.
	IsFDC  bool
	Repeat config.RepeatPricingConfig
}

// Resolution carries the governing rates and the cards they came from.
// Card is set whenever a bracket matched, even if a repeat card overrides it.
type Resolution struct {
	Card          *domain.RateCard       `json:"card,omitempty"`
	Repeat        *domain.RepeatRateCard `json:"repeat,omitempty"`
	Rule          Rule                   `json:"rule"`
	MatrixType    domain.MatrixType      `json:"matrix_type"`
	InterestRate  decimal.Decimal        `json:"interest_rate"`
	ProvisionRate decimal.Decimal        `json:"provision_rate"`
	MinTenure     int                    `json:"min_tenure"`
	MaxTenure     int                    `json:"max_tenure"`
}

type Resolver struct{ repo domain.Repository }

func NewResolver(r domain.Repository) *Resolver { return &Resolver{repo: r} }

func MatrixTypeFor(r applicant.RiskSnapshot) domain.MatrixType {
	if r.AlternateScoring {
		return domain.MatrixAlternate
	}
	return domain.MatrixStandard
}

func (r *Resolver) Resolve(ctx context.Context, q Query) (*Resolution, error) {
	matrix := MatrixTypeFor(q.Risk)
	cards, err := r.repo.FindRateCards(ctx, domain.Filter{
		ProductID:       q.ProductID,
		TransactionType: q.TransactionType,
		MatrixType:      matrix,
		IsPremium:       q.Risk.IsPremium,
		IsSalaried:      q.Risk.IsSalaried,
	})
	if err != nil {
		return nil, fmt.Errorf("find rate cards: %w", err)
	}

	res := &Resolution{MatrixType: matrix}
	candidates := make([]domain.RateCard, 0, len(cards))
	for _, c := range cards {
		if inBracket(q, c) {
			candidates = append(candidates, c)
		}
	}
	for _, rule := range bracketRules {
		var matched []domain.RateCard
		for _, c := range candidates {
			if rule.accepts(q, c) {
				matched = append(matched, c)
			}
		}
		if best := newestCard(matched); best != nil {
			res.Card, res.Rule = best, rule.name
			res.InterestRate, res.ProvisionRate = best.BaseInterestRate, best.BaseProvisionRate
			res.MinTenure, res.MaxTenure = best.MinTenure, best.MaxTenure
			break
		}
	}

	if q.Repeat.Applies(string(q.Risk.Segment), q.TransactionMethod) {
		repeats, err := r.repo.FindRepeatRateCards(ctx, domain.RepeatFilter{
			CustomerSegment:   string(q.Risk.Segment),
			ProductLine:       q.ProductLine,
			TransactionMethod: q.TransactionMethod,
		})
		if err != nil {
			return nil, fmt.Errorf("find repeat rate cards: %w", err)
		}
		if rc := newestRepeat(repeats); rc != nil {
			res.Repeat, res.Rule = rc, RuleRepeat
			res.InterestRate, res.ProvisionRate = rc.InterestRate, rc.ProvisionRate
			res.MinTenure, res.MaxTenure = rc.MinTenure, rc.MaxTenure
		}
	}

	if res.Rule == "" {
		return nil, fmt.Errorf("%w: product=%s type=%s matrix=%s score=%s fdc=%t",
			ErrRateCardNotFound, q.ProductID, q.TransactionType, matrix, q.Risk.Score, q.IsFDC)
	}

	logger.Ctx(ctx).Debug("rate card resolved",
		zap.String("rule", string(res.Rule)),
		zap.String("matrix_type", string(matrix)),
		zap.String("interest_rate", res.InterestRate.String()),
		zap.String("provision_rate", res.ProvisionRate.String()),
	)
	return res, nil
}
