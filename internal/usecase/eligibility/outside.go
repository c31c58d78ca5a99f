package eligibility

import (
	"context"
	"time"

	domain "lending-engine/internal/domain/eligibility"
	"lending-engine/pkg/id"
)

// checkOutside blocks repeat borrowers with low behaviour scores who ask for
// most of their available limit while delinquent elsewhere. The block is
// time-bounded.
func checkOutside(ctx context.Context, ev *evaluation) (CheckResult, *Rejection, error) {
	c := ev.cfg.Outside
	if !c.Active {
		return CheckResult{Check: CheckOutside, Outcome: OutcomeSkipped}, nil, nil
	}
	if len(c.BypassBuckets) > 0 && id.InBucket(ev.in.ApplicantID, c.BypassBuckets) {
		return CheckResult{Check: CheckOutside, Outcome: OutcomeSkipped}, nil, nil
	}
	if ev.state.OutsideBlockedAt(ev.in.Now) {
		return ev.outsideBlock(ev.state.OutsideBlockedUntil)
	}

	pass := CheckResult{Check: CheckOutside, Outcome: OutcomePass}
	// Zero available limit counts as over the ratio.
	if avail := ev.in.Limit.Available(); avail.IsPositive() &&
		ev.in.RequestedAmount.Div(avail).LessThan(c.Ratio()) {
		return pass, nil, nil
	}
	if ev.in.Risk.BehaviourScore.GreaterThan(c.MaxScore()) || !ev.in.Risk.IsRepeatBorrower {
		return pass, nil, nil
	}

	inq, err := ev.latestInquiry(ctx)
	if err != nil {
		res, err := ev.unavailable(ctx, CheckOutside, c.FailOpen, err)
		return res, nil, err
	}
	if inq == nil || !inq.HasDelinquency(c.DPDThreshold) {
		return pass, nil, nil
	}

	until := ev.in.Now.Add(time.Duration(c.BlockHours) * time.Hour).UTC().Truncate(time.Second)
	if err := ev.set(CheckOutside, domain.FieldOutsideBlockedUntil, until.Format(time.RFC3339), ReasonOutside); err != nil {
		return CheckResult{}, nil, err
	}
	return ev.outsideBlock(until)
}

func (ev *evaluation) outsideBlock(until time.Time) (CheckResult, *Rejection, error) {
	rej := ev.block(CheckOutside, ReasonOutside, nil)
	rej.Popup = &Popup{
		Title: Message(ev.cfg.Messages, popupTitleKey, ev.in.Locale),
		Body:  rej.Message,
		Until: &until,
	}
	return CheckResult{Check: CheckOutside, Outcome: OutcomeBlock}, rej, nil
}
