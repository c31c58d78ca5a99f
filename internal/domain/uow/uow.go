package uow

import (
	"context"

	"lending-engine/internal/domain/eligibility"
	"lending-engine/internal/domain/loan"
)

// domain/uow/uow.go
type Repos struct {
	Loans       loan.Repository
	Eligibility eligibility.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the account's eligibility row first, then run fn
	WithinAccountTx(ctx context.Context, accountID string, fn func(r Repos) error) error
}
