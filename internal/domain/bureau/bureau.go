// Package bureau describes the cross-lender (FDC) data the eligibility checks
// consume. Fetching and refreshing inquiries is owned by the bureau
// integration; the engine only reads them and asks for a refresh.
package bureau

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNoInquiry = errors.New("bureau: no inquiry for account")

type LoanStatus string

const (
	LoanCurrent    LoanStatus = "current"
	LoanDelinquent LoanStatus = "delinquent"
	LoanPaidOff    LoanStatus = "paid_off"
	LoanWrittenOff LoanStatus = "written_off"
)

// Active reports whether the loan still counts towards concentration.
func (s LoanStatus) Active() bool { return s == LoanCurrent || s == LoanDelinquent }

type Inquiry struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	InquiryID  string    `gorm:"size:64;uniqueIndex;column:inquiry_id" json:"inquiry_id"`
	AccountID  string    `gorm:"size:32;index:idx_bureau_inquiries_account;column:account_id" json:"account_id"`
	InquiredAt time.Time `gorm:"column:inquired_at;index:idx_bureau_inquiries_account" json:"inquired_at"`
	Loans      []Loan    `gorm:"foreignKey:InquiryRef;references:ID" json:"loans"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Inquiry) TableName() string { return "bureau_inquiries" }

type Loan struct {
	ID          uint64          `gorm:"primaryKey;column:id" json:"-"`
	InquiryRef  uint64          `gorm:"column:inquiry_ref;index" json:"-"`
	IssuerID    string          `gorm:"size:64;column:issuer_id" json:"issuer_id"`
	Status      LoanStatus      `gorm:"size:16;column:status" json:"status"`
	DueDate     time.Time       `gorm:"column:due_date" json:"due_date"`
	DaysPastDue int             `gorm:"column:days_past_due" json:"days_past_due"`
	Outstanding decimal.Decimal `gorm:"type:decimal(18,2);column:outstanding" json:"outstanding"`
}

func (Loan) TableName() string { return "bureau_inquiry_loans" }

// Stale reports whether the inquiry is older than staleDays at now.
func (i *Inquiry) Stale(now time.Time, staleDays int) bool {
	return now.Sub(i.InquiredAt) > time.Duration(staleDays)*24*time.Hour
}

// ActivePlatforms counts distinct issuers with an active loan, ignoring own.
func (i *Inquiry) ActivePlatforms(own string) int {
	seen := map[string]struct{}{}
	for _, l := range i.Loans {
		if !l.Status.Active() || l.IssuerID == "" || l.IssuerID == own {
			continue
		}
		seen[l.IssuerID] = struct{}{}
	}
	return len(seen)
}

// HasDelinquency reports an active delinquent loan past dpd days.
func (i *Inquiry) HasDelinquency(dpd int) bool {
	for _, l := range i.Loans {
		if l.Status == LoanDelinquent && l.DaysPastDue > dpd {
			return true
		}
	}
	return false
}

// Client is the bureau-data collaborator. Calls block and must honour ctx.
type Client interface {
	// LatestInquiry returns ErrNoInquiry when the account was never inquired.
	LatestInquiry(ctx context.Context, accountID string) (*Inquiry, error)
	// RequestInquiry asks the integration for a fresh inquiry. Idempotent per day.
	RequestInquiry(ctx context.Context, accountID string) error
}

// ReinquiryRequest is an outbox row picked up by the bureau integration.
type ReinquiryRequest struct {
	ID          uint64    `gorm:"primaryKey;column:id"`
	AccountID   string    `gorm:"size:32;column:account_id;uniqueIndex:ux_reinquiry_account_day"`
	RequestDay  string    `gorm:"size:10;column:request_day;uniqueIndex:ux_reinquiry_account_day"`
	RequestedAt time.Time `gorm:"column:requested_at"`
}

func (ReinquiryRequest) TableName() string { return "bureau_reinquiry_requests" }
