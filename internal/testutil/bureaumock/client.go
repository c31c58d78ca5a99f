package bureaumock

import (
	"context"

	"lending-engine/internal/domain/bureau"
)

var _ bureau.Client = (*Client)(nil)

// Client is a function-backed mock of bureau.Client that counts calls.
type Client struct {
	LatestInquiryFn  func(ctx context.Context, accountID string) (*bureau.Inquiry, error)
	RequestInquiryFn func(ctx context.Context, accountID string) error

	LatestCalls  int
	RequestCalls int
}

func (m *Client) LatestInquiry(ctx context.Context, accountID string) (*bureau.Inquiry, error) {
	m.LatestCalls++
	if m.LatestInquiryFn != nil {
		return m.LatestInquiryFn(ctx, accountID)
	}
	return nil, bureau.ErrNoInquiry
}

func (m *Client) RequestInquiry(ctx context.Context, accountID string) error {
	m.RequestCalls++
	if m.RequestInquiryFn != nil {
		return m.RequestInquiryFn(ctx, accountID)
	}
	return nil
}
