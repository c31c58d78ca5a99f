package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-engine/internal/config"
	"lending-engine/internal/domain/applicant"
	"lending-engine/internal/domain/errs"
	"lending-engine/internal/testutil/featurefix"
	"lending-engine/internal/usecase/pricing"
)

var now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func priced(t *testing.T, f *config.Feature, amount string, self bool) *pricing.Result {
	t.Helper()
	r, err := pricing.New(pricing.ParamsFrom(f.Pricing)).Compute(pricing.Input{
		Amount:              dec(amount),
		Duration:            3,
		MaxTenure:           12,
		MonthlyInterestRate: dec("0.02"),
		ProvisionRate:       dec("0.05"),
		OriginationDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		FirstDueDate:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		SelfDisbursement:    self,
	})
	require.NoError(t, err)
	return r
}

func request(f *config.Feature) Request {
	return Request{
		Feature:           f,
		ApplicantID:       "a1b2c3d4e5f60718293a4b5c6d7e8f93",
		Segment:           applicant.SegmentFirstTime,
		TransactionType:   "cash_loan",
		TransactionMethod: "bank_transfer",
		Now:               now,
	}
}

func TestApply_NoPromotionIsIdentity(t *testing.T) {
	f := featurefix.New()
	base := priced(t, f, "1000000", true)
	out, err := NewAdjuster().Apply(context.Background(), base, request(f))
	require.NoError(t, err)
	assert.True(t, out.DisbursedAmount.Equal(base.DisbursedAmount))
	assert.NotSame(t, base, out)
}

func TestApply_FixedPromo(t *testing.T) {
	f := featurefix.New()
	base := priced(t, f, "1000000", true)
	require.True(t, base.BaseProvision.Equal(dec("50000")))
	require.True(t, base.TaxAmount.Equal(dec("5500")))

	req := request(f)
	req.PromoCode = "HEMAT50"
	out, err := NewAdjuster().Apply(context.Background(), base, req)
	require.NoError(t, err)

	assert.True(t, out.PromoDiscount.Equal(dec("50000")))
	assert.True(t, out.ProvisionAmount.IsZero())
	assert.True(t, out.TaxAmount.IsZero())
	assert.True(t, out.DisbursedAmount.Equal(dec("1000000")), out.DisbursedAmount.String())
	assert.True(t, out.TotalFeeRate.Equal(base.TotalFeeRate.Sub(dec("0.05"))))
	assert.Equal(t, "HEMAT50", out.PromoCode)

	// caller's result untouched
	assert.True(t, base.PromoDiscount.IsZero())
	assert.True(t, base.TaxAmount.Equal(dec("5500")))
}

func TestApply_PercentagePromo(t *testing.T) {
	f := featurefix.New()
	base := priced(t, f, "1000000", true)

	req := request(f)
	req.PromoCode = "DISKON2"
	out, err := NewAdjuster().Apply(context.Background(), base, req)
	require.NoError(t, err)

	assert.True(t, out.PromoDiscount.Equal(dec("20000")))
	assert.True(t, out.ProvisionAmount.Equal(dec("30000")))
	assert.True(t, out.TaxAmount.Equal(dec("3300")))
	assert.True(t, out.DisbursedAmount.Equal(dec("966700")), out.DisbursedAmount.String())
	assert.True(t, out.TotalFeeAmount().LessThan(base.TotalFeeAmount()))
}

func TestApply_PercentagePromoCappedByMaxDiscount(t *testing.T) {
	f := featurefix.New()
	base := priced(t, f, "5000000", true)
	req := request(f)
	req.PromoCode = "DISKON2"
	out, err := NewAdjuster().Apply(context.Background(), base, req)
	require.NoError(t, err)
	assert.True(t, out.PromoDiscount.Equal(dec("75000")), out.PromoDiscount.String())
}

func TestDiscount_NeverExceedsBaseProvision(t *testing.T) {
	r := &pricing.Result{Principal: dec("1000000"), BaseProvision: dec("30000")}
	assert.True(t, Discount(config.PromoCode{Type: config.PromoFixed, Amount: 50000}, r).Equal(dec("30000")))
	assert.True(t, Discount(config.PromoCode{Type: config.PromoPercentage, Amount: 5}, r).Equal(dec("30000")))
	assert.True(t, Discount(config.PromoCode{Type: config.PromoPercentage, Amount: 1}, r).Equal(dec("10000")))
}

func TestApply_PromoNotApplicable(t *testing.T) {
	f := featurefix.New()
	f.Promotions = append(f.Promotions, config.PromoCode{Code: "BIG", Type: config.PromoFixed, Amount: 1000, MinLoanAmount: 2000000})
	base := priced(t, f, "1000000", true)

	cases := map[string]func(r *Request){
		"unknown":          func(r *Request) { r.PromoCode = "NOPE" },
		"expired":          func(r *Request) { r.PromoCode = "DISKON2"; r.Now = now.AddDate(1, 0, 0) },
		"wrong type":       func(r *Request) { r.PromoCode = "DISKON2"; r.TransactionType = "bill_payment" },
		"below min amount": func(r *Request) { r.PromoCode = "BIG" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := request(f)
			mutate(&req)
			_, err := NewAdjuster().Apply(context.Background(), base, req)
			require.ErrorIs(t, err, errs.ErrPromoNotApplicable)
			assert.Equal(t, errs.KindPromo, errs.Category(err))
		})
	}
}

func TestApply_ZeroInterestSelfFoldsIntoProvision(t *testing.T) {
	f := featurefix.New()
	f.ZeroInterest.Active = true
	req := request(f)
	f.ZeroInterest.Whitelist = []string{req.ApplicantID}

	base := priced(t, f, "1000000", true)
	forgone := base.TotalInterest()
	require.True(t, forgone.IsPositive())

	out, err := NewAdjuster().Apply(context.Background(), base, req)
	require.NoError(t, err)

	assert.True(t, out.ZeroInterest)
	for _, in := range out.Instalments {
		assert.True(t, in.Interest.IsZero(), "period %d", in.Period)
		assert.True(t, in.DueAmount.Equal(in.Principal))
	}
	assert.True(t, out.Principal.Equal(base.Principal))
	assert.True(t, base.DisbursedAmount.Sub(out.DisbursedAmount).Equal(forgone))
	assert.True(t, out.TaxAmount.Equal(base.TaxAmount), "fold is not taxed")
	assert.True(t, out.InterestFold.Equal(forgone))
}

func TestApply_ZeroInterestNonSelfGrowsPrincipal(t *testing.T) {
	f := featurefix.New()
	f.ZeroInterest.Active = true
	req := request(f)
	f.ZeroInterest.Whitelist = []string{req.ApplicantID}

	base := priced(t, f, "1000000", false)
	forgone := base.TotalInterest()

	out, err := NewAdjuster().Apply(context.Background(), base, req)
	require.NoError(t, err)
	assert.True(t, out.Principal.Sub(base.Principal).Equal(forgone))
	assert.True(t, out.DisbursedAmount.Equal(base.DisbursedAmount))
	assert.True(t, out.TotalInterest().IsZero())
}

func TestApply_ZeroInterestNonSelfLedgerReconstructs(t *testing.T) {
	f := featurefix.New()
	f.ZeroInterest.Active = true
	req := request(f)
	f.ZeroInterest.Whitelist = []string{req.ApplicantID}

	base, err := pricing.New(pricing.ParamsFrom(f.Pricing)).Compute(pricing.Input{
		Amount:              dec("1000000"),
		Duration:            3,
		MaxTenure:           12,
		MonthlyInterestRate: dec("0.02"),
		ProvisionRate:       dec("0.05"),
		OriginationDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		FirstDueDate:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Fees:                []pricing.FeeSpec{{Kind: pricing.FeeInsurance, Rate: dec("0.01"), Taxable: true}},
	})
	require.NoError(t, err)

	out, err := NewAdjuster().Apply(context.Background(), base, req)
	require.NoError(t, err)
	require.True(t, out.Principal.GreaterThan(base.Principal))
	assert.True(t, out.PricedOn.Equal(base.Principal))

	for _, line := range out.Fees {
		assert.True(t, line.Rate.Mul(line.Base).Round(0).Equal(line.Amount),
			"%s: rate %s x base %s != %s", line.Kind, line.Rate, line.Base, line.Amount)
	}
}

func TestZeroInterestEligible(t *testing.T) {
	f := featurefix.New()
	c := f.ZeroInterest
	c.Active = true
	c.Segments = []string{"first_time"}
	c.BucketDigits = []int{3}
	c.Durations = []int{3}
	c.TransactionMethods = []string{"bank_transfer"}

	r := priced(t, f, "1000000", true)
	req := request(f) // applicant id ends in 3

	assert.True(t, ZeroInterestEligible(c, r, req))

	off := c
	off.Active = false
	assert.False(t, ZeroInterestEligible(off, r, req))

	other := c
	other.BucketDigits = []int{4}
	assert.False(t, ZeroInterestEligible(other, r, req))

	other.Whitelist = []string{req.ApplicantID}
	assert.True(t, ZeroInterestEligible(other, r, req), "whitelist bypasses bucket")

	wrongDur := c
	wrongDur.Durations = []int{6}
	assert.False(t, ZeroInterestEligible(wrongDur, r, req))

	repeat := req
	repeat.Segment = applicant.SegmentRepeat
	assert.False(t, ZeroInterestEligible(c, r, repeat))

	big := priced(t, f, "6000000", true)
	assert.False(t, ZeroInterestEligible(c, big, req))

	unbounded := c
	unbounded.MaxAmount = 0
	assert.True(t, ZeroInterestEligible(unbounded, big, req), "zero max means no upper bound")
}
