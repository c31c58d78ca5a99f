package eligibility

import (
	"fmt"
	"strconv"
	"time"
)

type FDCStatus string

const (
	FDCNotChecked FDCStatus = "NOT_CHECKED"
	FDCEligible   FDCStatus = "ELIGIBLE"
	FDCIneligible FDCStatus = "INELIGIBLE"
)

const dateLayout = "2006-01-02"

// State is the per-account eligibility view derived from the event log.
type State struct {
	FDCStatus           FDCStatus
	FDCPlatformCount    int
	LastAccessDate      string
	InsideBlocked       bool
	OutsideBlockedUntil time.Time
}

func NewState() State { return State{FDCStatus: FDCNotChecked} }

// Replay folds events, oldest first, into a State.
func Replay(events []Event) (State, error) {
	s := NewState()
	for _, e := range events {
		if err := s.Apply(e.Field, e.ToValue); err != nil {
			return s, fmt.Errorf("replay event %s: %w", e.EventID, err)
		}
	}
	return s, nil
}

// Value renders the current value of f in its stored string form.
func (s State) Value(f Field) string {
	switch f {
	case FieldFDCStatus:
		return string(s.FDCStatus)
	case FieldFDCPlatformCount:
		return strconv.Itoa(s.FDCPlatformCount)
	case FieldLastAccessDate:
		return s.LastAccessDate
	case FieldInsideBlocked:
		return strconv.FormatBool(s.InsideBlocked)
	case FieldOutsideBlockedUntil:
		if s.OutsideBlockedUntil.IsZero() {
			return ""
		}
		return s.OutsideBlockedUntil.UTC().Format(time.RFC3339)
	}
	return ""
}

func (s *State) Apply(f Field, v string) error {
	switch f {
	case FieldFDCStatus:
		switch st := FDCStatus(v); st {
		case FDCNotChecked, FDCEligible, FDCIneligible:
			s.FDCStatus = st
		default:
			return fmt.Errorf("unknown fdc status %q", v)
		}
	case FieldFDCPlatformCount:
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		s.FDCPlatformCount = n
	case FieldLastAccessDate:
		if v != "" {
			if _, err := time.Parse(dateLayout, v); err != nil {
				return err
			}
		}
		s.LastAccessDate = v
	case FieldInsideBlocked:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		s.InsideBlocked = b
	case FieldOutsideBlockedUntil:
		if v == "" {
			s.OutsideBlockedUntil = time.Time{}
			return nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return err
		}
		s.OutsideBlockedUntil = t
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// OutsideBlockedAt reports whether the time-bounded outside block is active.
func (s State) OutsideBlockedAt(now time.Time) bool {
	return !s.OutsideBlockedUntil.IsZero() && now.Before(s.OutsideBlockedUntil)
}

// FormatDate renders t as a last_access_date value.
func FormatDate(t time.Time) string { return t.Format(dateLayout) }
