package promotion

import (
	"slices"

	"github.com/shopspring/decimal"

	"lending-engine/internal/config"
	"lending-engine/internal/usecase/pricing"
	"lending-engine/pkg/id"
)

// ZeroInterestEligible applies the campaign rules. Empty duration or method
// lists do not restrict.
func ZeroInterestEligible(c config.ZeroInterestConfig, r *pricing.Result, req Request) bool {
	if !c.Active {
		return false
	}
	amount := r.RequestedAmount
	if amount.LessThan(decimal.NewFromFloat(c.MinAmount)) {
		return false
	}
	if c.MaxAmount > 0 && amount.GreaterThan(decimal.NewFromFloat(c.MaxAmount)) {
		return false
	}
	if len(c.Durations) > 0 && !slices.Contains(c.Durations, r.Duration) {
		return false
	}
	if len(c.TransactionMethods) > 0 && !slices.Contains(c.TransactionMethods, req.TransactionMethod) {
		return false
	}
	if slices.Contains(c.Whitelist, req.ApplicantID) {
		return true
	}
	return slices.Contains(c.Segments, string(req.Segment)) && id.InBucket(req.ApplicantID, c.BucketDigits)
}

// applyZeroInterest removes all scheduled interest. The forgone amount is
// folded into provision; for non-self loans principal grows by the same
// amount so the cash-out stays put.
func applyZeroInterest(calc *pricing.Calculator, r *pricing.Result) error {
	forgone := r.TotalInterest()
	r.ZeroInterest = true
	r.InterestFold = r.InterestFold.Add(forgone)
	if !r.SelfDisbursement {
		r.Principal = r.Principal.Add(forgone)
	}
	return calc.Settle(r)
}
