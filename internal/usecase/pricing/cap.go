package pricing

import "github.com/shopspring/decimal"

const (
	capInterest  = "interest"
	capProvision = "provision"
)

type rateSet struct {
	first     decimal.Decimal
	monthly   decimal.Decimal
	provision decimal.Decimal
	// insurance + dd
	fixed decimal.Decimal
}

func (r rateSet) interestSum(duration int) decimal.Decimal {
	return r.first.Add(r.monthly.Mul(decimal.NewFromInt(int64(duration - 1))))
}

func (r rateSet) total(duration int) decimal.Decimal {
	return r.provision.Add(r.interestSum(duration)).Add(r.fixed)
}

// applyCap reduces rates until the total fee rate fits under max. Interest
// goes first, re-spread by day count; provision absorbs what interest cannot.
// The returned component is empty when no reduction was needed.
func applyCap(r rateSet, max decimal.Decimal, duration, totalDays int) (rateSet, string, error) {
	total := r.total(duration)
	if total.LessThanOrEqual(max) {
		return r, "", nil
	}
	if r.fixed.GreaterThan(max) {
		return r, "", ErrFeeCapUnattainable
	}
	excess := total.Sub(max)
	sum := r.interestSum(duration)

	if sum.GreaterThanOrEqual(excess) {
		reduced := sum.Sub(excess)
		r.monthly = reduced.Mul(thirty).Div(decimal.NewFromInt(int64(totalDays)))
		r.first = reduced.Sub(r.monthly.Mul(decimal.NewFromInt(int64(duration - 1))))
		return r, capInterest, nil
	}

	r.first, r.monthly = decimal.Zero, decimal.Zero
	r.provision = maxDec(decimal.Zero, r.provision.Sub(excess.Sub(sum)))
	return r, capProvision, nil
}
