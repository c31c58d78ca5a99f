package loanmock

import (
	"context"
	"errors"
	"testing"

	domain "lending-engine/internal/domain/loan"
)

func TestRepo_Create(t *testing.T) {
	ctx := context.Background()
	l := &domain.Loan{LoanID: "LN-1"}

	called := false
	wantErr := errors.New("boom")
	m := &Repo{
		CreateFn: func(gotCtx context.Context, got *domain.Loan) error {
			called = true
			if got != l {
				t.Fatalf("Create arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, l); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &Repo{}
	if err := m.Create(ctx, l); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestRepo_Defaults_NotFound(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	if _, err := m.GetByLoanID(ctx, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByLoanID default: got %v", err)
	}
	if _, err := m.GetByRequestID(ctx, "a", "r"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByRequestID default: got %v", err)
	}
	if _, err := m.GetLatestPaidOff(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetLatestPaidOff default: got %v", err)
	}
}

func TestRepo_GetLatestPaidOff_UsesFn(t *testing.T) {
	want := &domain.Loan{LoanID: "LN-9", State: domain.StatePaidOff}
	m := &Repo{GetLatestPaidOffFn: func(_ context.Context, accountID string) (*domain.Loan, error) {
		if accountID != "acc" {
			t.Fatalf("accountID mismatch: %s", accountID)
		}
		return want, nil
	}}
	got, err := m.GetLatestPaidOff(context.Background(), "acc")
	if err != nil || got != want {
		t.Fatalf("GetLatestPaidOff: got %v, %v", got, err)
	}
}
