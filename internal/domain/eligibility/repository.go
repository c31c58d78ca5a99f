package eligibility

import "context"

type Repository interface {
	// LockAccount creates the anchor row if needed and holds it for the tx.
	LockAccount(ctx context.Context, accountID string) error
	// ListEvents returns the account's log, oldest first.
	ListEvents(ctx context.Context, accountID string) ([]Event, error)
	AppendEvents(ctx context.Context, events []Event) error
	// CreateRejection is a no-op returning false when (account, inquiry) exists.
	CreateRejection(ctx context.Context, r *Rejection) (bool, error)
}
