package ratecard

import (
	"time"

	"github.com/shopspring/decimal"
)

type MatrixType string

const (
	MatrixStandard  MatrixType = "standard"
	MatrixAlternate MatrixType = "alternate"
)

// Table: rate_cards. Published brackets are never updated in place.
type RateCard struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"id"`
	ProductID         string          `gorm:"size:32;column:product_id;index:idx_rate_cards_lookup" json:"product_id"`
	TransactionType   string          `gorm:"size:32;column:transaction_type;index:idx_rate_cards_lookup" json:"transaction_type"`
	MatrixType        MatrixType      `gorm:"size:16;column:matrix_type;index:idx_rate_cards_lookup" json:"matrix_type"`
	IsPremium         bool            `gorm:"column:is_premium" json:"is_premium"`
	IsSalaried        bool            `gorm:"column:is_salaried" json:"is_salaried"`
	IsFDC             bool            `gorm:"column:is_fdc" json:"is_fdc"`
	Segment           *string         `gorm:"size:32;column:segment" json:"segment,omitempty"`
	RiskBand          string          `gorm:"size:16;column:risk_band" json:"risk_band"`
	MinThreshold      decimal.Decimal `gorm:"type:decimal(10,4);column:min_threshold" json:"min_threshold"`
	MaxThreshold      decimal.Decimal `gorm:"type:decimal(10,4);column:max_threshold" json:"max_threshold"`
	BaseInterestRate  decimal.Decimal `gorm:"type:decimal(10,6);column:base_interest_rate" json:"base_interest_rate"`
	BaseProvisionRate decimal.Decimal `gorm:"type:decimal(10,6);column:base_provision_rate" json:"base_provision_rate"`
	MinTenure         int             `gorm:"column:min_tenure" json:"min_tenure"`
	MaxTenure         int             `gorm:"column:max_tenure" json:"max_tenure"`
	CreatedAt         time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (RateCard) TableName() string { return "rate_cards" }

// Contains reports whether score falls inside [min, max].
func (c RateCard) Contains(score decimal.Decimal) bool {
	return score.GreaterThanOrEqual(c.MinThreshold) && score.LessThanOrEqual(c.MaxThreshold)
}

// Table: repeat_rate_cards
type RepeatRateCard struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"id"`
	CustomerSegment   string          `gorm:"size:32;column:customer_segment;index:idx_repeat_rate_cards_lookup" json:"customer_segment"`
	ProductLine       string          `gorm:"size:32;column:product_line;index:idx_repeat_rate_cards_lookup" json:"product_line"`
	TransactionMethod string          `gorm:"size:32;column:transaction_method;index:idx_repeat_rate_cards_lookup" json:"transaction_method"`
	InterestRate      decimal.Decimal `gorm:"type:decimal(10,6);column:interest_rate" json:"interest_rate"`
	ProvisionRate     decimal.Decimal `gorm:"type:decimal(10,6);column:provision_rate" json:"provision_rate"`
	MinTenure         int             `gorm:"column:min_tenure" json:"min_tenure"`
	MaxTenure         int             `gorm:"column:max_tenure" json:"max_tenure"`
	CreatedAt         time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (RepeatRateCard) TableName() string { return "repeat_rate_cards" }

// Filter narrows bracket candidates; score and FDC matching happen in memory.
type Filter struct {
	ProductID       string
	TransactionType string
	MatrixType      MatrixType
	IsPremium       bool
	IsSalaried      bool
}

type RepeatFilter struct {
	CustomerSegment   string
	ProductLine       string
	TransactionMethod string
}
