package eligibility

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lending-engine/internal/config"
	"lending-engine/internal/domain/bureau"
	domain "lending-engine/internal/domain/eligibility"
	"lending-engine/internal/domain/errs"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/logger"
)

// evaluation is the scratch state of one Evaluate call.
type evaluation struct {
	gate  *Gate
	in    Input
	cfg   *config.Feature
	repos uow.Repos
	state domain.State

	pending   []domain.Event
	rejection *domain.Rejection

	inquiryLoaded bool
	inquiry       *bureau.Inquiry
	inquiryErr    error
}

// set records a transition when v differs from the current value.
func (ev *evaluation) set(check Check, f domain.Field, v, reason string) error {
	from := ev.state.Value(f)
	if from == v {
		return nil
	}
	if err := ev.state.Apply(f, v); err != nil {
		return err
	}
	ev.pending = append(ev.pending, domain.Event{
		EventID:   uuid.NewString(),
		AccountID: ev.in.AccountID,
		Check:     string(check),
		Field:     f,
		FromValue: from,
		ToValue:   v,
		Reason:    reason,
		Actor:     "system",
		CreatedAt: ev.in.Now,
	})
	return nil
}

// latestInquiry calls the bureau at most once per evaluation, bounded by
// the configured timeout. A missing inquiry is not an error.
func (ev *evaluation) latestInquiry(ctx context.Context) (*bureau.Inquiry, error) {
	if ev.inquiryLoaded {
		return ev.inquiry, ev.inquiryErr
	}
	cctx, cancel := context.WithTimeout(ctx, ev.cfg.Bureau.Timeout())
	defer cancel()

	inq, err := ev.gate.bureau.LatestInquiry(cctx, ev.in.AccountID)
	if errors.Is(err, bureau.ErrNoInquiry) {
		inq, err = nil, nil
	}
	ev.inquiry, ev.inquiryErr, ev.inquiryLoaded = inq, err, true
	return inq, err
}

func (ev *evaluation) requestInquiry(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, ev.cfg.Bureau.Timeout())
	defer cancel()
	return ev.gate.bureau.RequestInquiry(cctx, ev.in.AccountID)
}

// unavailable applies the check's fail-open policy to a bureau error.
func (ev *evaluation) unavailable(ctx context.Context, check Check, failOpen bool, err error) (CheckResult, error) {
	if !failOpen {
		return CheckResult{}, fmt.Errorf("%w: bureau: %v", errs.ErrUpstreamUnavailable, err)
	}
	logger.Ctx(ctx).Warn("bureau unavailable, failing open",
		zap.String("check", string(check)),
		zap.String("account_id", ev.in.AccountID),
		zap.Error(err),
	)
	return CheckResult{Check: check, Outcome: OutcomeNotChecked, Warning: "bureau unavailable"}, nil
}

func (ev *evaluation) block(check Check, reason string, popup *Popup) *Rejection {
	return &Rejection{
		Check:      check,
		ReasonCode: reason,
		Message:    Message(ev.cfg.Messages, reason, ev.in.Locale),
		Popup:      popup,
	}
}
