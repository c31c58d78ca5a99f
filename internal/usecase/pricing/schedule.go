package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

const laterPeriodDays = 30

// daysBetween counts calendar days between the dates of from and to.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// addMonths keeps the day of month, clamped to the target month's last day.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// schedule splits principal evenly with the remainder on the last period.
// Interest is floored per period; dues are rounded to unit for multi-period
// loans carrying interest and the rounding delta is booked as interest.
// A due rounds down instead when rounding up would leave too little of the
// capped interest allowance for the unrounded interest of later periods.
func schedule(r *Result, unit decimal.Decimal) []Instalment {
	d := r.Duration
	each := floorUnit(r.Principal.Div(decimal.NewFromInt(int64(d))))
	last := r.Principal.Sub(each.Mul(decimal.NewFromInt(int64(d - 1))))

	out := make([]Instalment, 0, d)
	pending := decimal.Zero
	for i := 1; i <= d; i++ {
		in := Instalment{
			Period:       i,
			DueDate:      addMonths(r.FirstDueDate, i-1),
			Days:         laterPeriodDays,
			InterestRate: r.MonthlyInterestRate,
			Principal:    each,
		}
		if i == 1 {
			in.Days = r.FirstDays
			in.InterestRate = r.FirstPeriodInterestRate
		}
		if i == d {
			in.Principal = last
		}
		if r.ZeroInterest {
			in.InterestRate = decimal.Zero
		}
		in.Interest = floorUnit(r.Principal.Mul(in.InterestRate))
		in.DueAmount = in.Principal.Add(in.Interest)
		pending = pending.Add(in.Interest)
		out = append(out, in)
	}
	if d == 1 {
		return out
	}

	capped := r.MaxFeeRate.IsPositive()
	allowed := r.Principal.Mul(r.MaxFeeRate.Sub(r.ProvisionRate).Sub(fixedChargeRate(r)))
	charged := decimal.Zero
	for i := range out {
		in := &out[i]
		pending = pending.Sub(in.Interest)
		if in.Interest.IsPositive() {
			due := maxDec(roundHalfUp(in.DueAmount, unit), in.Principal)
			if capped && charged.Add(due.Sub(in.Principal)).Add(pending).GreaterThan(allowed) {
				due = maxDec(floorToUnit(in.DueAmount, unit), in.Principal)
			}
			in.Interest = due.Sub(in.Principal)
			in.DueAmount = due
		}
		charged = charged.Add(in.Interest)
	}
	return out
}

func fixedChargeRate(r *Result) decimal.Decimal {
	sum := decimal.Zero
	for _, ch := range r.Charges {
		if ch.Kind == FeeInsurance || ch.Kind == FeeDD {
			sum = sum.Add(ch.Rate)
		}
	}
	return sum
}
