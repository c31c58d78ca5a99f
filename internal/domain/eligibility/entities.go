package eligibility

import (
	"time"

	"github.com/shopspring/decimal"
)

type Field string

const (
	FieldFDCStatus           Field = "fdc_status"
	FieldFDCPlatformCount    Field = "fdc_platform_count"
	FieldLastAccessDate      Field = "last_access_date"
	FieldInsideBlocked       Field = "inside_blocked"
	FieldOutsideBlockedUntil Field = "outside_blocked_until"
)

// Table: eligibility_events. Append-only; current state is the replay.
type Event struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	EventID   string    `gorm:"size:36;uniqueIndex;column:event_id" json:"event_id"`
	AccountID string    `gorm:"size:32;index:idx_eligibility_events_account;column:account_id" json:"account_id"`
	Check     string    `gorm:"size:16;column:check_name" json:"check"`
	Field     Field     `gorm:"size:32;column:field" json:"field"`
	FromValue string    `gorm:"size:64;column:from_value" json:"from"`
	ToValue   string    `gorm:"size:64;column:to_value" json:"to"`
	Reason    string    `gorm:"size:64;column:reason" json:"reason"`
	Actor     string    `gorm:"size:64;column:actor" json:"actor"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Event) TableName() string { return "eligibility_events" }

// Table: eligibility_rejections. One row per (account, inquiry).
type Rejection struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	AccountID       string          `gorm:"size:32;column:account_id;uniqueIndex:ux_eligibility_rejections_inquiry" json:"account_id"`
	InquiryID       string          `gorm:"size:64;column:inquiry_id;uniqueIndex:ux_eligibility_rejections_inquiry" json:"inquiry_id"`
	Check           string          `gorm:"size:16;column:check_name" json:"check"`
	ReasonCode      string          `gorm:"size:64;column:reason_code" json:"reason_code"`
	PlatformCount   int             `gorm:"column:platform_count" json:"platform_count"`
	RequestedAmount decimal.Decimal `gorm:"type:decimal(18,2);column:requested_amount" json:"requested_amount"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Rejection) TableName() string { return "eligibility_rejections" }

// Table: eligibility_accounts. Row lock anchor for per-account evaluation.
type Account struct {
	AccountID string    `gorm:"primaryKey;size:32;column:account_id"`
	Version   int64     `gorm:"column:version"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Account) TableName() string { return "eligibility_accounts" }
