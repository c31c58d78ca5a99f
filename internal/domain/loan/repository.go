package loan

import "context"

type Repository interface {
	// Create inserts the loan with its instalments and fee lines.
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByRequestID(ctx context.Context, accountID, requestID string) (*Loan, error)
	// Most recent paid-off loan of the account, instalments preloaded.
	GetLatestPaidOff(ctx context.Context, accountID string) (*Loan, error)
}
