package loan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-engine/internal/config"
	"lending-engine/internal/domain/applicant"
	"lending-engine/internal/domain/bureau"
	"lending-engine/internal/domain/errs"
	domain "lending-engine/internal/domain/loan"
	rcdomain "lending-engine/internal/domain/ratecard"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/testutil/bureaumock"
	"lending-engine/internal/testutil/eligibilitymock"
	"lending-engine/internal/testutil/featurefix"
	"lending-engine/internal/testutil/loanmock"
	"lending-engine/internal/testutil/ratecardmock"
	"lending-engine/internal/testutil/uowmock"
	"lending-engine/internal/usecase/eligibility"
	"lending-engine/internal/usecase/pricing"
	"lending-engine/internal/usecase/ratecard"
	"lending-engine/pkg/id"
)

var clock = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// memGuard is an in-memory SubmissionGuard.
type memGuard struct {
	mu       sync.Mutex
	inflight map[string]string
	done     map[string][]byte
	released int
}

func newMemGuard() *memGuard {
	return &memGuard{inflight: map[string]string{}, done: map[string][]byte{}}
}

func (g *memGuard) Acquire(_ context.Context, acc, req, fp string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := acc + ":" + req
	if b, ok := g.done[k]; ok {
		return b, nil
	}
	if cur, ok := g.inflight[k]; ok {
		if cur != fp {
			return nil, domain.ErrRequestReused
		}
		return nil, domain.ErrSubmissionInProgress
	}
	g.inflight[k] = fp
	return nil, nil
}

func (g *memGuard) Complete(_ context.Context, acc, req, _ string, out []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := acc + ":" + req
	delete(g.inflight, k)
	g.done[k] = out
	return nil
}

func (g *memGuard) Release(_ context.Context, acc, req string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, acc+":"+req)
	g.released++
	return nil
}

type harness struct {
	loans   *loanmock.Repo
	elig    *eligibilitymock.Repo
	cards   *ratecardmock.Repo
	bureau  *bureaumock.Client
	cfg     *config.Feature
	created []*domain.Loan
	uc      *Usecase
}

func newHarness(t *testing.T, guard SubmissionGuard) *harness {
	t.Helper()
	h := &harness{
		loans:  &loanmock.Repo{},
		elig:   &eligibilitymock.Repo{},
		bureau: &bureaumock.Client{},
		cfg:    featurefix.New(),
		cards: &ratecardmock.Repo{Cards: []rcdomain.RateCard{{
			ID:                42,
			MinThreshold:      decimal.Zero,
			MaxThreshold:      decimal.NewFromInt(1000),
			BaseInterestRate:  decimal.RequireFromString("0.02"),
			BaseProvisionRate: decimal.RequireFromString("0.05"),
			MinTenure:         1,
			MaxTenure:         12,
			CreatedAt:         clock.AddDate(0, -1, 0),
		}}},
	}
	h.bureau.LatestInquiryFn = func(context.Context, string) (*bureau.Inquiry, error) {
		return &bureau.Inquiry{InquiryID: "inq-1", InquiredAt: clock.Add(-time.Hour)}, nil
	}
	h.loans.CreateFn = func(_ context.Context, l *domain.Loan) error {
		l.CreatedAt = clock
		h.created = append(h.created, l)
		return nil
	}

	tx := uowmock.Passthrough(uow.Repos{Loans: h.loans, Eligibility: h.elig})
	h.uc = NewUsecase(Deps{
		Loans:    h.loans,
		UoW:      tx,
		Features: config.Static(h.cfg),
		Resolver: ratecard.NewResolver(h.cards),
		Gate:     eligibility.NewGate(tx, h.bureau),
		Guard:    guard,
		Now:      func() time.Time { return clock },
	})
	return h
}

func request() LoanRequest {
	return LoanRequest{
		RequestID:         "req-1",
		AccountID:         "acc-1",
		ApplicantID:       "0f1e2d3c4b5a69788796a5b4c3d2e1f2",
		ProductID:         "cash",
		ProductLine:       "microloan",
		RequestedAmount:   decimal.NewFromInt(1000000),
		RequestedDuration: 3,
		TransactionType:   "cash_loan",
		TransactionMethod: "bank_transfer",
		Risk: applicant.RiskSnapshot{
			ApplicantID:    "0f1e2d3c4b5a69788796a5b4c3d2e1f2",
			Score:          decimal.NewFromInt(700),
			Segment:        applicant.SegmentFirstTime,
			BehaviourScore: decimal.NewFromInt(600),
		},
		Limit:            applicant.Limit{SetLimit: decimal.NewFromInt(5000000)},
		SelfDisbursement: true,
		OriginationDate:  clock,
		FirstDueDate:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Locale:           "en",
	}
}

func TestAssemble_CreatesLoan(t *testing.T) {
	h := newHarness(t, nil)
	out, err := h.uc.Assemble(context.Background(), request())
	require.NoError(t, err)
	require.NotNil(t, out.Loan)
	require.Len(t, h.created, 1)

	l := h.created[0]
	assert.True(t, id.Valid32(l.LoanID))
	assert.Equal(t, "acc-1", l.AccountID)
	assert.Equal(t, domain.StateActive, l.State)
	require.NotNil(t, l.RateCardID)
	assert.Equal(t, uint64(42), *l.RateCardID)
	assert.Equal(t, string(ratecard.RuleBracket), l.PricingRule)
	assert.True(t, l.DisbursedAmount.Equal(decimal.NewFromInt(944500)), l.DisbursedAmount.String())
	assert.Len(t, l.Instalments, 3)

	sum := decimal.Zero
	for _, in := range l.Instalments {
		sum = sum.Add(in.Principal)
	}
	assert.True(t, sum.Equal(l.Principal))

	kinds := map[string]bool{}
	for _, f := range l.Fees {
		kinds[f.Kind] = true
	}
	assert.True(t, kinds[string(pricing.FeeProvision)])
	assert.True(t, kinds[string(pricing.FeeTax)])

	assert.True(t, out.Decision.Eligible)
	assert.Equal(t, l.LoanID, out.Loan.LoanID)
}

func TestAssemble_RejectedByGateKeepsSideEffects(t *testing.T) {
	h := newHarness(t, nil)
	paid := clock.Add(-3 * time.Hour)
	h.loans.GetLatestPaidOffFn = func(context.Context, string) (*domain.Loan, error) {
		return &domain.Loan{PaidOffAt: &paid, Instalments: []domain.Instalment{
			{DueDate: clock, PaidAt: &paid},
		}}, nil
	}
	req := request()
	req.Limit.SetLimit = decimal.NewFromInt(1000000)

	out, err := h.uc.Assemble(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Nil(t, out.Loan)
	assert.Equal(t, eligibility.ReasonInside, out.Rejection.ReasonCode)
	assert.Empty(t, h.created)
	assert.NotEmpty(t, h.elig.Events)
}

func TestAssemble_RateCardNotFoundFailsFast(t *testing.T) {
	h := newHarness(t, nil)
	h.cards.Cards = nil
	_, err := h.uc.Assemble(context.Background(), request())
	require.ErrorIs(t, err, ratecard.ErrRateCardNotFound)
	assert.Equal(t, errs.KindConfiguration, errs.Category(err))
	assert.Zero(t, h.elig.Locks, "gate must not run")
	assert.Zero(t, h.bureau.LatestCalls)
}

func TestAssemble_InvalidAmountFailsBeforeGate(t *testing.T) {
	h := newHarness(t, nil)
	req := request()
	req.RequestedAmount = decimal.NewFromInt(100)
	_, err := h.uc.Assemble(context.Background(), req)
	require.ErrorIs(t, err, pricing.ErrInvalidDurationOrAmount)
	assert.Empty(t, h.elig.Events)
}

func TestAssemble_PromoRejectedAfterGate(t *testing.T) {
	h := newHarness(t, nil)
	req := request()
	req.PromoCode = "NOPE"
	_, err := h.uc.Assemble(context.Background(), req)
	require.ErrorIs(t, err, errs.ErrPromoNotApplicable)
	assert.Empty(t, h.created)
	assert.NotEmpty(t, h.elig.Events, "gate bookkeeping is not rolled back")
}

func TestAssemble_PersistFailureKeepsGateState(t *testing.T) {
	h := newHarness(t, nil)
	boom := errors.New("deadlock")
	h.loans.CreateFn = func(context.Context, *domain.Loan) error { return boom }
	_, err := h.uc.Assemble(context.Background(), request())
	require.ErrorIs(t, err, boom)
	assert.NotEmpty(t, h.elig.Events)
}

func TestAssemble_ExistingRequestReturnsStoredLoan(t *testing.T) {
	h := newHarness(t, nil)
	h.loans.GetByRequestIDFn = func(_ context.Context, acc, req string) (*domain.Loan, error) {
		return &domain.Loan{LoanID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", AccountID: acc, RequestID: req}, nil
	}
	out, err := h.uc.Assemble(context.Background(), request())
	require.NoError(t, err)
	assert.True(t, out.Replayed)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", out.Loan.LoanID)
	assert.Empty(t, h.created)
	assert.Zero(t, h.bureau.LatestCalls)
}

func TestAssemble_GuardReplaysAndRejectsReuse(t *testing.T) {
	g := newMemGuard()
	h := newHarness(t, g)

	first, err := h.uc.Assemble(context.Background(), request())
	require.NoError(t, err)

	second, err := h.uc.Assemble(context.Background(), request())
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Loan.LoanID, second.Loan.LoanID)
	assert.Len(t, h.created, 1)

	// in-flight duplicate with a different body
	other := request()
	other.RequestID = "req-2"
	_, err = g.Acquire(context.Background(), other.AccountID, other.RequestID, "someone-else")
	require.NoError(t, err)
	_, err = h.uc.Assemble(context.Background(), other)
	require.ErrorIs(t, err, domain.ErrRequestReused)
}

func TestAssemble_GuardReleasedOnError(t *testing.T) {
	g := newMemGuard()
	h := newHarness(t, g)
	h.cards.Cards = nil
	_, err := h.uc.Assemble(context.Background(), request())
	require.Error(t, err)
	assert.Equal(t, 1, g.released)
	assert.Empty(t, g.inflight)
}

func TestAssemble_RequiresIdentifiers(t *testing.T) {
	h := newHarness(t, nil)
	req := request()
	req.AccountID = ""
	_, err := h.uc.Assemble(context.Background(), req)
	require.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestQuote_NoGateNoPersist(t *testing.T) {
	h := newHarness(t, nil)
	req := request()
	req.PromoCode = "HEMAT50"
	out, err := h.uc.Quote(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, out.Pricing)
	assert.True(t, out.Pricing.PromoDiscount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, uint64(42), out.RateCard.Card.ID)
	assert.Empty(t, h.created)
	assert.Empty(t, h.elig.Events)
	assert.Zero(t, h.bureau.LatestCalls)
}

func TestGet(t *testing.T) {
	h := newHarness(t, nil)
	const wantID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	h.loans.GetByLoanIDFn = func(_ context.Context, loanID string) (*domain.Loan, error) {
		if loanID != wantID {
			return nil, domain.ErrNotFound
		}
		return &domain.Loan{LoanID: wantID, State: domain.StateActive, CreatedAt: clock}, nil
	}
	dto, err := h.uc.Get(context.Background(), wantID)
	require.NoError(t, err)
	assert.Equal(t, wantID, dto.LoanID)
	assert.Equal(t, "active", dto.State)

	_, err = h.uc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	a, b := request(), request()
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	b.RequestedAmount = decimal.NewFromInt(1000001)
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}
