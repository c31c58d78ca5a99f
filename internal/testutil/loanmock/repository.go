package loanmock

import (
	"context"

	domain "lending-engine/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn      func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByRequestIDFn   func(ctx context.Context, accountID, requestID string) (*domain.Loan, error)
	GetLatestPaidOffFn func(ctx context.Context, accountID string) (*domain.Loan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByRequestID(ctx context.Context, accountID, requestID string) (*domain.Loan, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, accountID, requestID)
	}
	return nil, domain.ErrNotFound
}

// Default: the account never paid off a loan.
func (m *Repo) GetLatestPaidOff(ctx context.Context, accountID string) (*domain.Loan, error) {
	if m.GetLatestPaidOffFn != nil {
		return m.GetLatestPaidOffFn(ctx, accountID)
	}
	return nil, domain.ErrNotFound
}
