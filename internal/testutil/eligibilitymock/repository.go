package eligibilitymock

import (
	"context"
	"sync"

	domain "lending-engine/internal/domain/eligibility"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository. With no
// funcs set it behaves as an in-memory store, which is what most gate tests want.
type Repo struct {
	LockAccountFn     func(ctx context.Context, accountID string) error
	ListEventsFn      func(ctx context.Context, accountID string) ([]domain.Event, error)
	AppendEventsFn    func(ctx context.Context, events []domain.Event) error
	CreateRejectionFn func(ctx context.Context, r *domain.Rejection) (bool, error)

	mu         sync.Mutex
	Events     []domain.Event
	Rejections []domain.Rejection
	Locks      int
}

func (m *Repo) LockAccount(ctx context.Context, accountID string) error {
	if m.LockAccountFn != nil {
		return m.LockAccountFn(ctx, accountID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Locks++
	return nil
}

func (m *Repo) ListEvents(ctx context.Context, accountID string) ([]domain.Event, error) {
	if m.ListEventsFn != nil {
		return m.ListEventsFn(ctx, accountID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Event
	for _, e := range m.Events {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Repo) AppendEvents(ctx context.Context, events []domain.Event) error {
	if m.AppendEventsFn != nil {
		return m.AppendEventsFn(ctx, events)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, events...)
	return nil
}

func (m *Repo) CreateRejection(ctx context.Context, r *domain.Rejection) (bool, error) {
	if m.CreateRejectionFn != nil {
		return m.CreateRejectionFn(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.Rejections {
		if x.AccountID == r.AccountID && x.InquiryID == r.InquiryID {
			return false, nil
		}
	}
	m.Rejections = append(m.Rejections, *r)
	return true, nil
}
