package eligibility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domain "lending-engine/internal/domain/eligibility"
	"lending-engine/internal/domain/loan"
)

var hundred = decimal.NewFromInt(100)

// checkInside blocks a large request right after a clean payoff. Once set
// the block stays until ResetInside.
func checkInside(ctx context.Context, ev *evaluation) (CheckResult, *Rejection, error) {
	c := ev.cfg.Inside
	if !c.Active {
		return CheckResult{Check: CheckInside, Outcome: OutcomeSkipped}, nil, nil
	}
	if ev.state.InsideBlocked {
		return CheckResult{Check: CheckInside, Outcome: OutcomeBlock}, ev.block(CheckInside, ReasonInside, nil), nil
	}

	set := ev.in.Limit.SetLimit
	if !set.IsPositive() {
		return CheckResult{Check: CheckInside, Outcome: OutcomePass}, nil, nil
	}
	if ev.in.RequestedAmount.Div(set).Mul(hundred).LessThan(c.Threshold()) {
		return CheckResult{Check: CheckInside, Outcome: OutcomePass}, nil, nil
	}

	prior, err := ev.repos.Loans.GetLatestPaidOff(ctx, ev.in.AccountID)
	if errors.Is(err, loan.ErrNotFound) {
		return CheckResult{Check: CheckInside, Outcome: OutcomePass}, nil, nil
	}
	if err != nil {
		return CheckResult{}, nil, fmt.Errorf("latest paid-off loan: %w", err)
	}
	if !paidOffCleanlyWithin(prior, ev.in.Now, c.RecencyHours, c.GraceDays) {
		return CheckResult{Check: CheckInside, Outcome: OutcomePass}, nil, nil
	}

	if err := ev.set(CheckInside, domain.FieldInsideBlocked, "true", ReasonInside); err != nil {
		return CheckResult{}, nil, err
	}
	return CheckResult{Check: CheckInside, Outcome: OutcomeBlock}, ev.block(CheckInside, ReasonInside, nil), nil
}

// paidOffCleanlyWithin: paid off within recencyHours of now, and every
// instalment settled by its due date plus graceDays.
func paidOffCleanlyWithin(l *loan.Loan, now time.Time, recencyHours, graceDays int) bool {
	if l == nil || l.PaidOffAt == nil || len(l.Instalments) == 0 {
		return false
	}
	since := now.Sub(*l.PaidOffAt)
	if since < 0 || since > time.Duration(recencyHours)*time.Hour {
		return false
	}
	grace := time.Duration(graceDays) * 24 * time.Hour
	for _, in := range l.Instalments {
		if !in.PaidWithin(grace) {
			return false
		}
	}
	return true
}
