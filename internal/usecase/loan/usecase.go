// Package loan assembles priced, eligible loans: resolve the rate card,
// compute fees, gate, apply promotions, persist.
package loan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"lending-engine/internal/config"
	domainelig "lending-engine/internal/domain/eligibility"
	"lending-engine/internal/domain/errs"
	domain "lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/logger"
	"lending-engine/internal/metrics"
	"lending-engine/internal/usecase/eligibility"
	"lending-engine/internal/usecase/pricing"
	"lending-engine/internal/usecase/promotion"
	"lending-engine/internal/usecase/ratecard"
	"lending-engine/pkg/id"
)

var tracer = otel.Tracer("lending-engine/usecase/loan")

type Deps struct {
	Loans    domain.Repository
	UoW      uow.UnitOfWork
	Features config.Provider
	Resolver *ratecard.Resolver
	Gate     *eligibility.Gate
	Adjuster *promotion.Adjuster
	// Guard is optional.
	Guard SubmissionGuard
	Now   func() time.Time
}

type Usecase struct {
	repo     domain.Repository
	uow      uow.UnitOfWork
	features config.Provider
	resolver *ratecard.Resolver
	gate     *eligibility.Gate
	adjuster *promotion.Adjuster
	guard    SubmissionGuard
	now      func() time.Time
}

func NewUsecase(d Deps) *Usecase {
	u := &Usecase{
		repo:     d.Loans,
		uow:      d.UoW,
		features: d.Features,
		resolver: d.Resolver,
		gate:     d.Gate,
		adjuster: d.Adjuster,
		guard:    d.Guard,
		now:      d.Now,
	}
	if u.adjuster == nil {
		u.adjuster = promotion.NewAdjuster()
	}
	if u.now == nil {
		u.now = func() time.Time { return time.Now().UTC() }
	}
	return u
}

func validateRequest(req LoanRequest) error {
	switch {
	case req.RequestID == "":
		return fmt.Errorf("%w: request_id required", errs.ErrInvalidRequest)
	case req.AccountID == "":
		return fmt.Errorf("%w: account_id required", errs.ErrInvalidRequest)
	case req.ApplicantID == "":
		return fmt.Errorf("%w: applicant_id required", errs.ErrInvalidRequest)
	case req.ProductID == "" || req.TransactionType == "":
		return fmt.Errorf("%w: product_id and transaction_type required", errs.ErrInvalidRequest)
	}
	return nil
}

// priced is the gate-independent part of a request.
type priced struct {
	cfg      *config.Feature
	card     *ratecard.Resolution
	base     *pricing.Result
	promoReq promotion.Request
}

// price snapshots configuration once and runs resolve then compute.
func (u *Usecase) price(ctx context.Context, req LoanRequest, now time.Time) (*priced, error) {
	cfg, err := u.features.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("feature snapshot: %w", err)
	}

	state, err := u.gate.State(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("eligibility state: %w", err)
	}

	ctx, span := tracer.Start(ctx, "ratecard.Resolve")
	card, err := u.resolver.Resolve(ctx, ratecard.Query{
		ProductID:         req.ProductID,
		ProductLine:       req.ProductLine,
		TransactionType:   req.TransactionType,
		TransactionMethod: req.TransactionMethod,
		Risk:              req.Risk,
		IsFDC:             state.FDCStatus == domainelig.FDCEligible,
		Repeat:            cfg.RepeatPricing,
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	base, err := pricing.New(pricing.ParamsFrom(cfg.Pricing)).Compute(pricing.Input{
		Amount:              req.RequestedAmount,
		Duration:            req.RequestedDuration,
		MinTenure:           card.MinTenure,
		MaxTenure:           card.MaxTenure,
		MonthlyInterestRate: card.InterestRate,
		ProvisionRate:       card.ProvisionRate,
		OriginationDate:     req.OriginationDate,
		FirstDueDate:        req.FirstDueDate,
		SelfDisbursement:    req.SelfDisbursement,
		Fees:                req.Fees,
	})
	if err != nil {
		return nil, err
	}

	direction := "non_self"
	if base.SelfDisbursement {
		direction = "self"
	}
	metrics.LoansPriced.WithLabelValues(direction).Inc()
	if base.CapApplied {
		metrics.FeeCapApplied.WithLabelValues(base.CapComponent).Inc()
	}

	return &priced{
		cfg:  cfg,
		card: card,
		base: base,
		promoReq: promotion.Request{
			Feature:           cfg,
			ApplicantID:       req.ApplicantID,
			Segment:           req.Risk.Segment,
			TransactionType:   req.TransactionType,
			TransactionMethod: req.TransactionMethod,
			PromoCode:         req.PromoCode,
			Now:               now,
		},
	}, nil
}

// Quote prices a request with promotions applied, without gating or
// persisting anything.
func (u *Usecase) Quote(ctx context.Context, req LoanRequest) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "loan.Quote")
	defer span.End()
	ctx = logger.WithRequestID(ctx, req.RequestID)

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	p, err := u.price(ctx, req, u.now())
	if err != nil {
		return nil, err
	}
	final, err := u.adjuster.Apply(ctx, p.base, p.promoReq)
	if err != nil {
		return nil, err
	}
	return &Outcome{Pricing: final, RateCard: p.card}, nil
}

// Assemble turns a request into a persisted loan or a structured rejection.
// Eligibility side effects are committed by the gate and survive a later
// persistence failure.
func (u *Usecase) Assemble(ctx context.Context, req LoanRequest) (out *Outcome, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "loan.Assemble", trace.WithAttributes(
		attribute.String("account_id", req.AccountID),
		attribute.String("request_id", req.RequestID),
	))
	ctx = logger.WithRequestID(ctx, req.RequestID)
	log := logger.Ctx(ctx).With(zap.String("account_id", req.AccountID))

	defer func() {
		label := "created"
		switch {
		case err != nil:
			label = string(errs.Category(err))
			log.Warn("assemble failed", zap.Error(err), zap.String("category", label))
		case out.Replayed:
			label = "replayed"
		case out.Rejection != nil:
			label = "rejected"
		}
		metrics.AssembleOutcomes.WithLabelValues(label).Inc()
		metrics.AssembleLatency.Observe(time.Since(start).Seconds())
		endSpan(span, err)
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if u.guard != nil {
		fp := Fingerprint(req)
		stored, gerr := u.guard.Acquire(ctx, req.AccountID, req.RequestID, fp)
		if gerr != nil {
			return nil, gerr
		}
		if stored != nil {
			var prev Outcome
			if err := json.Unmarshal(stored, &prev); err != nil {
				return nil, fmt.Errorf("decode stored outcome: %w", err)
			}
			prev.Replayed = true
			return &prev, nil
		}
		defer func() {
			// New context: the outcome must be recorded even if ctx was cancelled.
			gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err != nil && !errors.Is(err, domain.ErrDuplicateRequest) {
				_ = u.guard.Release(gctx, req.AccountID, req.RequestID)
				return
			}
			if err == nil {
				b, _ := json.Marshal(out)
				if cerr := u.guard.Complete(gctx, req.AccountID, req.RequestID, fp, b); cerr != nil {
					log.Warn("submission guard complete failed", zap.Error(cerr))
				}
			}
		}()
	}

	existing, err := u.repo.GetByRequestID(ctx, req.AccountID, req.RequestID)
	switch {
	case err == nil:
		return &Outcome{Loan: toDTO(existing), Replayed: true}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup request: %w", err)
	}

	now := u.now()
	p, err := u.price(ctx, req, now)
	if err != nil {
		return nil, err
	}

	gctx, gspan := tracer.Start(ctx, "eligibility.Evaluate")
	decision, err := u.gate.Evaluate(gctx, eligibility.Input{
		AccountID:       req.AccountID,
		ApplicantID:     req.ApplicantID,
		RequestedAmount: req.RequestedAmount,
		Limit:           req.Limit,
		Risk:            req.Risk,
		BypassFDC:       req.BypassFDC,
		Locale:          req.Locale,
		Now:             now,
	}, p.cfg)
	endSpan(gspan, err)
	if err != nil {
		return nil, err
	}
	if !decision.Eligible {
		return &Outcome{Rejection: decision.Rejection, Decision: decision, Pricing: p.base, RateCard: p.card}, nil
	}

	final, err := u.adjuster.Apply(ctx, p.base, p.promoReq)
	if err != nil {
		return nil, err
	}

	l := toLoan(id.NewID32(), req, p.card, final)
	if err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Loans.Create(ctx, l)
	}); err != nil {
		return nil, fmt.Errorf("persist loan: %w", err)
	}

	log.Info("loan created",
		zap.String("loan_id", l.LoanID),
		zap.String("principal", l.Principal.String()),
		zap.String("disbursed", l.DisbursedAmount.String()),
		zap.String("pricing_rule", l.PricingRule),
	)
	return &Outcome{Loan: toDTO(l), Decision: decision, Pricing: final, RateCard: p.card}, nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
