package loan

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lending-engine/internal/domain/errs"
)

var (
	ErrNotFound         = errors.New("loan not found")
	ErrDuplicateRequest = errors.New("loan already created for request")

	// Submission guard outcomes.
	ErrSubmissionInProgress = fmt.Errorf("%w: submission already in progress", errs.ErrInvalidRequest)
	ErrRequestReused        = fmt.Errorf("%w: request id reused with a different body", errs.ErrInvalidRequest)
	ErrGuardUnavailable     = fmt.Errorf("%w: submission guard store", errs.ErrUpstreamUnavailable)
)

type State string

const (
	StateActive  State = "active"
	StatePaidOff State = "paid_off"
)

// Table: loans. Every amount is stored next to the rate that produced it.
type Loan struct {
	ID                      uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID                  string          `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	RequestID               string          `gorm:"size:64;uniqueIndex:ux_loans_account_request" json:"request_id"`
	AccountID               string          `gorm:"size:32;uniqueIndex:ux_loans_account_request;index:idx_loans_account_state" json:"account_id"`
	ProductID               string          `gorm:"size:32" json:"product_id"`
	TransactionType         string          `gorm:"size:32" json:"transaction_type"`
	RateCardID              *uint64         `json:"rate_card_id,omitempty"`
	RepeatRateCardID        *uint64         `json:"repeat_rate_card_id,omitempty"`
	PricingRule             string          `gorm:"size:16" json:"pricing_rule"`
	SelfDisbursement        bool            `json:"self_disbursement"`
	Duration                int             `json:"duration"`
	Principal               decimal.Decimal `gorm:"type:decimal(18,2)" json:"principal"`
	DisbursedAmount         decimal.Decimal `gorm:"type:decimal(18,2)" json:"disbursed_amount"`
	ProvisionAmount         decimal.Decimal `gorm:"type:decimal(18,2)" json:"provision_amount"`
	TaxAmount               decimal.Decimal `gorm:"type:decimal(18,2)" json:"tax_amount"`
	InsurancePremium        decimal.Decimal `gorm:"type:decimal(18,2)" json:"insurance_premium"`
	DDPremium               decimal.Decimal `gorm:"column:dd_premium;type:decimal(18,2)" json:"dd_premium"`
	RegistrationFee         decimal.Decimal `gorm:"type:decimal(18,2)" json:"registration_fee"`
	PromoDiscount           decimal.Decimal `gorm:"type:decimal(18,2)" json:"promo_discount"`
	ProvisionRate           decimal.Decimal `gorm:"type:decimal(12,8)" json:"provision_rate"`
	MonthlyInterestRate     decimal.Decimal `gorm:"type:decimal(12,8)" json:"monthly_interest_rate"`
	FirstPeriodInterestRate decimal.Decimal `gorm:"type:decimal(12,8)" json:"first_period_interest_rate"`
	TotalFeeRate            decimal.Decimal `gorm:"type:decimal(12,8)" json:"total_fee_rate"`
	MaxFeeRate              decimal.Decimal `gorm:"type:decimal(12,8)" json:"max_fee_rate"`
	PromoCode               string          `gorm:"size:32" json:"promo_code,omitempty"`
	ZeroInterest            bool            `json:"zero_interest"`
	State                   State           `gorm:"size:16;default:'active';index:idx_loans_account_state" json:"state"`
	PaidOffAt               *time.Time      `json:"paid_off_at,omitempty"`
	Instalments             []Instalment    `gorm:"foreignKey:LoanRef;references:ID" json:"instalments"`
	Fees                    []Fee           `gorm:"foreignKey:LoanRef;references:ID" json:"fees"`
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt               gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Table: loan_instalments
type Instalment struct {
	ID           uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanRef      uint64          `gorm:"column:loan_ref;index" json:"-"`
	Period       int             `json:"period"`
	DueDate      time.Time       `gorm:"type:date" json:"due_date"`
	Days         int             `json:"days"`
	InterestRate decimal.Decimal `gorm:"type:decimal(12,8)" json:"interest_rate"`
	Principal    decimal.Decimal `gorm:"type:decimal(18,2)" json:"principal"`
	Interest     decimal.Decimal `gorm:"type:decimal(18,2)" json:"interest"`
	DueAmount    decimal.Decimal `gorm:"type:decimal(18,2)" json:"due_amount"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
}

func (Instalment) TableName() string { return "loan_instalments" }

// PaidWithin reports whether the instalment was settled by due date + grace.
func (i Instalment) PaidWithin(grace time.Duration) bool {
	if i.PaidAt == nil {
		return false
	}
	return !i.PaidAt.After(endOfDay(i.DueDate).Add(grace))
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// Table: loan_fees. Audit ledger: amount = f(rate, base).
type Fee struct {
	ID      uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanRef uint64          `gorm:"column:loan_ref;index" json:"-"`
	Kind    string          `gorm:"size:32" json:"kind"`
	Rate    decimal.Decimal `gorm:"type:decimal(12,8)" json:"rate"`
	Base    decimal.Decimal `gorm:"type:decimal(18,2)" json:"base"`
	Amount  decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
}

func (Fee) TableName() string { return "loan_fees" }
