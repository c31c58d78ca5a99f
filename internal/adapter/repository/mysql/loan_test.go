package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	loanDomain "lending-engine/internal/domain/loan"
	"lending-engine/pkg/id"
)

func TestCreateAndGetByLoanID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	loanID := id.NewID32()
	l := makeLoan(loanID, "acc-1", "req-1")
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.AccountID != "acc-1" || got.RequestID != "req-1" {
		t.Errorf("unexpected loan: %+v", got)
	}
	if len(got.Instalments) != 2 || got.Instalments[0].Period != 1 {
		t.Fatalf("instalments not preloaded in period order: %+v", got.Instalments)
	}
	if len(got.Fees) != 2 || got.Fees[0].Kind != "provision" {
		t.Fatalf("fees not preloaded: %+v", got.Fees)
	}
	if !got.DisbursedAmount.Equal(l.DisbursedAmount) {
		t.Errorf("disbursed = %s, want %s", got.DisbursedAmount, l.DisbursedAmount)
	}
}

func TestCreate_DuplicateRequest(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, makeLoan(id.NewID32(), "acc-1", "req-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, makeLoan(id.NewID32(), "acc-1", "req-1"))
	if !errors.Is(err, loanDomain.ErrDuplicateRequest) {
		t.Fatalf("want ErrDuplicateRequest, got %v", err)
	}
	// same request id on another account is fine
	if err := repo.Create(ctx, makeLoan(id.NewID32(), "acc-2", "req-1")); err != nil {
		t.Fatalf("Create other account: %v", err)
	}
}

func TestGetByRequestID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	loanID := id.NewID32()
	if err := repo.Create(ctx, makeLoan(loanID, "acc-1", "req-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByRequestID(ctx, "acc-1", "req-1")
	if err != nil || got.LoanID != loanID {
		t.Fatalf("GetByRequestID: %v %+v", err, got)
	}
	if _, err := repo.GetByRequestID(ctx, "acc-2", "req-1"); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other account, got %v", err)
	}
}

func TestGetByLoanID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)

	_, err := repo.GetByLoanID(context.Background(), "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetLatestPaidOff(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	seed := func(loanID, req string, state loanDomain.State, paidOff *time.Time) {
		t.Helper()
		l := makeLoan(loanID, "acc-1", req)
		l.State = state
		l.PaidOffAt = paidOff
		if err := repo.Create(ctx, l); err != nil {
			t.Fatal(err)
		}
	}
	older, newer := now.Add(-48*time.Hour), now.Add(-2*time.Hour)
	seed("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "r1", loanDomain.StatePaidOff, &older)
	seed("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "r2", loanDomain.StatePaidOff, &newer)
	seed("cccccccccccccccccccccccccccccccc", "r3", loanDomain.StateActive, nil)

	got, err := repo.GetLatestPaidOff(ctx, "acc-1")
	if err != nil {
		t.Fatalf("GetLatestPaidOff: %v", err)
	}
	if got.LoanID != "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb" || len(got.Instalments) != 2 {
		t.Fatalf("unexpected loan: %s (%d instalments)", got.LoanID, len(got.Instalments))
	}

	if _, err := repo.GetLatestPaidOff(ctx, "acc-none"); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
