// Package eligibility runs the ordered block/allow checks that gate a loan
// and keeps their state as an append-only per-account event log.
package eligibility

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lending-engine/internal/config"
	"lending-engine/internal/domain/applicant"
	"lending-engine/internal/domain/bureau"
	domain "lending-engine/internal/domain/eligibility"
	"lending-engine/internal/domain/errs"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/logger"
	"lending-engine/internal/metrics"
)

type Check string

const (
	CheckFDC     Check = "fdc"
	CheckInside  Check = "inside"
	CheckOutside Check = "outside"
)

const (
	ReasonFDCPlatformLimit = "FDC_PLATFORM_LIMIT"
	ReasonInside           = "LIMIT_CONCENTRATION_INSIDE"
	ReasonOutside          = "LIMIT_CONCENTRATION_OUTSIDE"
)

type Outcome string

const (
	OutcomePass       Outcome = "pass"
	OutcomeBlock      Outcome = "block"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeNotChecked Outcome = "not_checked"
)

type Input struct {
	AccountID       string
	ApplicantID     string
	RequestedAmount decimal.Decimal
	Limit           applicant.Limit
	Risk            applicant.RiskSnapshot
	BypassFDC       bool
	Locale          string
	Now             time.Time
}

type Popup struct {
	Title string     `json:"title"`
	Body  string     `json:"body"`
	Until *time.Time `json:"until,omitempty"`
}

type Rejection struct {
	Check      Check  `json:"check"`
	ReasonCode string `json:"reason_code"`
	Message    string `json:"message"`
	Popup      *Popup `json:"popup,omitempty"`
}

type CheckResult struct {
	Check   Check   `json:"check"`
	Outcome Outcome `json:"outcome"`
	Warning string  `json:"warning,omitempty"`
}

type Decision struct {
	Eligible  bool          `json:"eligible"`
	Rejection *Rejection    `json:"rejection,omitempty"`
	Results   []CheckResult `json:"results"`
	State     domain.State  `json:"-"`

	// Appended is the number of transitions this evaluation wrote.
	Appended int `json:"-"`
}

type checkFunc func(ctx context.Context, ev *evaluation) (CheckResult, *Rejection, error)

type namedCheck struct {
	name Check
	run  checkFunc
}

type Gate struct {
	uow    uow.UnitOfWork
	bureau bureau.Client
	checks []namedCheck
}

func NewGate(u uow.UnitOfWork, b bureau.Client) *Gate {
	return &Gate{
		uow:    u,
		bureau: b,
		checks: []namedCheck{
			{CheckFDC, checkFDC},
			{CheckInside, checkInside},
			{CheckOutside, checkOutside},
		},
	}
}

// Evaluate runs fdc, inside and outside in order under the account lock.
// The first block stops the chain. Transitions are written only when they
// change the replayed state, so repeating an evaluation adds nothing.
func (g *Gate) Evaluate(ctx context.Context, in Input, cfg *config.Feature) (*Decision, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: eligibility needs a feature snapshot", errs.ErrConfigurationMissing)
	}
	if in.AccountID == "" {
		return nil, fmt.Errorf("%w: account id required", errs.ErrInvalidRequest)
	}
	if in.Now.IsZero() {
		in.Now = time.Now().UTC()
	}

	var dec *Decision
	err := g.uow.WithinAccountTx(ctx, in.AccountID, func(r uow.Repos) error {
		events, err := r.Eligibility.ListEvents(ctx, in.AccountID)
		if err != nil {
			return fmt.Errorf("list eligibility events: %w", err)
		}
		state, err := domain.Replay(events)
		if err != nil {
			return err
		}

		ev := &evaluation{gate: g, in: in, cfg: cfg, repos: r, state: state}
		d := &Decision{Eligible: true}
		for _, c := range g.checks {
			res, rej, err := c.run(ctx, ev)
			if err != nil {
				return fmt.Errorf("%s check: %w", c.name, err)
			}
			d.Results = append(d.Results, res)
			if rej != nil {
				d.Eligible, d.Rejection = false, rej
				break
			}
		}

		if len(ev.pending) > 0 {
			if err := r.Eligibility.AppendEvents(ctx, ev.pending); err != nil {
				return fmt.Errorf("append eligibility events: %w", err)
			}
		}
		if ev.rejection != nil {
			if _, err := r.Eligibility.CreateRejection(ctx, ev.rejection); err != nil {
				return fmt.Errorf("record rejection: %w", err)
			}
		}
		d.State, d.Appended = ev.state, len(ev.pending)
		dec = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.Ctx(ctx).With(zap.String("account_id", in.AccountID))
	if dec.Rejection != nil {
		metrics.EligibilityBlocks.WithLabelValues(string(dec.Rejection.Check), dec.Rejection.ReasonCode).Inc()
		log.Info("eligibility blocked",
			zap.String("check", string(dec.Rejection.Check)),
			zap.String("reason_code", dec.Rejection.ReasonCode),
			zap.Int("transitions", dec.Appended),
		)
	} else {
		log.Debug("eligibility passed", zap.Int("transitions", dec.Appended))
	}
	return dec, nil
}

// ResetInside clears a persisted inside block. It is the only way one ends.
func (g *Gate) ResetInside(ctx context.Context, accountID, actor, reason string) error {
	return g.uow.WithinAccountTx(ctx, accountID, func(r uow.Repos) error {
		events, err := r.Eligibility.ListEvents(ctx, accountID)
		if err != nil {
			return err
		}
		state, err := domain.Replay(events)
		if err != nil {
			return err
		}
		if !state.InsideBlocked {
			return nil
		}
		e := domain.Event{
			EventID:   uuid.NewString(),
			AccountID: accountID,
			Check:     string(CheckInside),
			Field:     domain.FieldInsideBlocked,
			FromValue: state.Value(domain.FieldInsideBlocked),
			ToValue:   "false",
			Reason:    reason,
			Actor:     actor,
			CreatedAt: time.Now().UTC(),
		}
		logger.Ctx(ctx).Info("inside block reset", zap.String("account_id", accountID), zap.String("actor", actor))
		return r.Eligibility.AppendEvents(ctx, []domain.Event{e})
	})
}

// History returns the account's transition log, oldest first.
func (g *Gate) History(ctx context.Context, accountID string) ([]domain.Event, error) {
	var out []domain.Event
	err := g.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Eligibility.ListEvents(ctx, accountID)
		return err
	})
	return out, err
}

// State replays the account's log without taking the lock.
func (g *Gate) State(ctx context.Context, accountID string) (domain.State, error) {
	events, err := g.History(ctx, accountID)
	if err != nil {
		return domain.NewState(), err
	}
	return domain.Replay(events)
}
