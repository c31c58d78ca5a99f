package eligibility

import (
	"context"
	"slices"
	"strconv"

	domain "lending-engine/internal/domain/eligibility"
)

// checkFDC limits the number of other lenders the applicant borrows from.
// A stale or missing inquiry triggers a refresh and passes meanwhile.
func checkFDC(ctx context.Context, ev *evaluation) (CheckResult, *Rejection, error) {
	c := ev.cfg.FDC
	if !c.Active || ev.in.BypassFDC || slices.Contains(c.Whitelist, ev.in.ApplicantID) {
		err := ev.set(CheckFDC, domain.FieldFDCStatus, string(domain.FDCEligible), "bypass")
		return CheckResult{Check: CheckFDC, Outcome: OutcomeSkipped}, nil, err
	}

	inq, err := ev.latestInquiry(ctx)
	if err != nil {
		return ev.fdcUnavailable(ctx, err)
	}

	if inq == nil || inq.Stale(ev.in.Now, c.StaleDays) {
		if err := ev.requestInquiry(ctx); err != nil {
			return ev.fdcUnavailable(ctx, err)
		}
		if err := ev.set(CheckFDC, domain.FieldFDCStatus, string(domain.FDCEligible), "inquiry_stale"); err != nil {
			return CheckResult{}, nil, err
		}
		err := ev.set(CheckFDC, domain.FieldLastAccessDate, domain.FormatDate(ev.in.Now), "reinquiry_requested")
		return CheckResult{Check: CheckFDC, Outcome: OutcomePass, Warning: "bureau refresh requested"}, nil, err
	}

	count := inq.ActivePlatforms(c.OwnIssuerID)
	if err := ev.set(CheckFDC, domain.FieldFDCPlatformCount, strconv.Itoa(count), inq.InquiryID); err != nil {
		return CheckResult{}, nil, err
	}

	if count > c.MaxPlatforms {
		if err := ev.set(CheckFDC, domain.FieldFDCStatus, string(domain.FDCIneligible), ReasonFDCPlatformLimit); err != nil {
			return CheckResult{}, nil, err
		}
		ev.rejection = &domain.Rejection{
			AccountID:       ev.in.AccountID,
			InquiryID:       inq.InquiryID,
			Check:           string(CheckFDC),
			ReasonCode:      ReasonFDCPlatformLimit,
			PlatformCount:   count,
			RequestedAmount: ev.in.RequestedAmount,
			CreatedAt:       ev.in.Now,
		}
		return CheckResult{Check: CheckFDC, Outcome: OutcomeBlock}, ev.block(CheckFDC, ReasonFDCPlatformLimit, nil), nil
	}

	err = ev.set(CheckFDC, domain.FieldFDCStatus, string(domain.FDCEligible), "within_platform_limit")
	return CheckResult{Check: CheckFDC, Outcome: OutcomePass}, nil, err
}

func (ev *evaluation) fdcUnavailable(ctx context.Context, cause error) (CheckResult, *Rejection, error) {
	res, err := ev.unavailable(ctx, CheckFDC, ev.cfg.FDC.FailOpen, cause)
	if err != nil {
		return res, nil, err
	}
	return res, nil, ev.set(CheckFDC, domain.FieldFDCStatus, string(domain.FDCNotChecked), "bureau_unavailable")
}
