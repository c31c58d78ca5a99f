package promotion

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"lending-engine/internal/config"
	"lending-engine/internal/domain/errs"
	"lending-engine/internal/usecase/pricing"
)

var hundred = decimal.NewFromInt(100)

// Discount is the provision reduction a code grants on r. Whichever bound
// is smallest wins, and provision never goes below zero.
func Discount(p config.PromoCode, r *pricing.Result) decimal.Decimal {
	var d decimal.Decimal
	switch p.Type {
	case config.PromoFixed:
		d = decimal.NewFromFloat(p.Amount)
	case config.PromoPercentage:
		d = r.Principal.Mul(decimal.NewFromFloat(p.Amount)).Div(hundred).Floor()
		if p.MaxDiscount > 0 {
			if ceiling := decimal.NewFromFloat(p.MaxDiscount); ceiling.LessThan(d) {
				d = ceiling
			}
		}
	}
	if r.BaseProvision.LessThan(d) {
		d = r.BaseProvision
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func applyPromoCode(calc *pricing.Calculator, r *pricing.Result, req Request) error {
	p, ok := req.Feature.Promo(req.PromoCode)
	switch {
	case !ok:
		return fmt.Errorf("%w: unknown code %q", errs.ErrPromoNotApplicable, req.PromoCode)
	case !p.ActiveAt(req.Now):
		return fmt.Errorf("%w: code %q not active", errs.ErrPromoNotApplicable, p.Code)
	case r.RequestedAmount.LessThan(decimal.NewFromFloat(p.MinLoanAmount)):
		return fmt.Errorf("%w: code %q needs amount >= %v", errs.ErrPromoNotApplicable, p.Code, p.MinLoanAmount)
	case len(p.TransactionTypes) > 0 && !slices.Contains(p.TransactionTypes, req.TransactionType):
		return fmt.Errorf("%w: code %q not valid for %s", errs.ErrPromoNotApplicable, p.Code, req.TransactionType)
	}

	before := r.TotalFeeAmount()
	discount := Discount(p, r)
	if !discount.IsPositive() {
		return fmt.Errorf("%w: code %q grants no discount", errs.ErrPromoNotApplicable, p.Code)
	}

	r.PromoCode = p.Code
	r.PromoDiscount = discount
	r.TotalFeeRate = r.TotalFeeRate.Sub(discount.DivRound(r.Principal, 8))
	if err := calc.Settle(r); err != nil {
		return err
	}
	if r.TotalFeeAmount().GreaterThan(before) {
		return fmt.Errorf("%w: code %q raises total fees", errs.ErrPromoNotApplicable, p.Code)
	}
	return nil
}
