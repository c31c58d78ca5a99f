// Package errs holds the error categories shared by every engine component.
// Component errors wrap one of these with %w so callers can classify them
// with errors.Is or Category.
package errs

import "errors"

var (
	// ErrConfigurationMissing: no matching rate card or a required setting is
	// absent. Fatal, surfaced verbatim, never retried.
	ErrConfigurationMissing = errors.New("configuration missing")
	// ErrInvalidRequest: amount, duration or dates out of range. Fatal, user-correctable.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUpstreamUnavailable: bureau, risk or config fetch failed. Retried by the caller.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrPromoNotApplicable: a promotion was requested that cannot be honoured.
	ErrPromoNotApplicable = errors.New("promotion not applicable")
)

type Kind string

const (
	KindConfiguration Kind = "configuration_missing"
	KindInvalid       Kind = "invalid_request"
	KindUpstream      Kind = "upstream_unavailable"
	KindPromo         Kind = "promo_not_applicable"
	KindInternal      Kind = "internal"
)

// Category maps err to its taxonomy bucket. Unknown errors are internal.
func Category(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigurationMissing):
		return KindConfiguration
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalid
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstream
	case errors.Is(err, ErrPromoNotApplicable):
		return KindPromo
	default:
		return KindInternal
	}
}

// Retryable reports whether the caller may retry with backoff.
func Retryable(err error) bool { return errors.Is(err, ErrUpstreamUnavailable) }
