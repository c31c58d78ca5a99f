package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"lending-engine/internal/config"
)

type FeeKind string

const (
	FeeInsurance    FeeKind = "insurance"
	FeeDD           FeeKind = "dd_premium"
	FeeRegistration FeeKind = "registration"

	// ledger-only kinds
	FeeProvision     FeeKind = "provision"
	FeePromoDiscount FeeKind = "promo_discount"
	FeeInterestFold  FeeKind = "interest_fold"
	FeeTax           FeeKind = "tax"
)

// Params are the platform-wide pricing settings of one feature snapshot.
type Params struct {
	DailyRateCap  decimal.Decimal
	MinLoanAmount decimal.Decimal
	TaxEnabled    bool
	TaxRate       decimal.Decimal
	RoundingUnit  decimal.Decimal
}

func ParamsFrom(c config.PricingConfig) Params {
	return Params{
		DailyRateCap:  c.DailyCap(),
		MinLoanAmount: c.MinAmount(),
		TaxEnabled:    c.TaxEnabled,
		TaxRate:       c.Tax(),
		RoundingUnit:  c.Unit(),
	}
}

// FeeSpec is a non-provision fee requested for the loan.
type FeeSpec struct {
	Kind    FeeKind         `json:"kind"`
	Rate    decimal.Decimal `json:"rate"`
	Flat    decimal.Decimal `json:"flat"`
	Taxable bool            `json:"taxable"`
}

type Input struct {
	// Amount is the principal for self disbursement and the cash-out target otherwise.
	Amount              decimal.Decimal
	Duration            int
	MinTenure           int
	MaxTenure           int
	MonthlyInterestRate decimal.Decimal
	ProvisionRate       decimal.Decimal
	OriginationDate     time.Time
	FirstDueDate        time.Time
	SelfDisbursement    bool
	Fees                []FeeSpec
}

// Charge is a computed non-provision fee. Amount is fixed once computed.
type Charge struct {
	Kind    FeeKind         `json:"kind"`
	Rate    decimal.Decimal `json:"rate"`
	Flat    decimal.Decimal `json:"flat"`
	Taxable bool            `json:"taxable"`
	Amount  decimal.Decimal `json:"amount"`
}

type Instalment struct {
	Period       int             `json:"period"`
	DueDate      time.Time       `json:"due_date"`
	Days         int             `json:"days"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Principal    decimal.Decimal `json:"principal"`
	Interest     decimal.Decimal `json:"interest"`
	DueAmount    decimal.Decimal `json:"due_amount"`
}

// FeeLine is one audit ledger entry: Amount was derived from Rate and Base.
type FeeLine struct {
	Kind   FeeKind         `json:"kind"`
	Rate   decimal.Decimal `json:"rate"`
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

type Result struct {
	RequestedAmount  decimal.Decimal `json:"requested_amount"`
	SelfDisbursement bool            `json:"self_disbursement"`
	Duration         int             `json:"duration"`
	OriginationDate  time.Time       `json:"origination_date"`
	FirstDueDate     time.Time       `json:"first_due_date"`
	FirstDays        int             `json:"first_days"`
	TotalDays        int             `json:"total_days"`

	Principal       decimal.Decimal `json:"principal"`
	// PricedOn is the principal provision and charges were computed from.
	// It differs from Principal once zero interest grows a non-self loan.
	PricedOn        decimal.Decimal `json:"priced_on"`
	DisbursedAmount decimal.Decimal `json:"disbursed_amount"`
	BaseProvision   decimal.Decimal `json:"base_provision"`
	PromoDiscount   decimal.Decimal `json:"promo_discount"`
	InterestFold    decimal.Decimal `json:"interest_fold"`
	ProvisionAmount decimal.Decimal `json:"provision_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`

	InsurancePremium decimal.Decimal `json:"insurance_premium"`
	DDPremium        decimal.Decimal `json:"dd_premium"`
	RegistrationFee  decimal.Decimal `json:"registration_fee"`
	Charges          []Charge        `json:"charges"`

	ProvisionRate           decimal.Decimal `json:"provision_rate"`
	MonthlyInterestRate     decimal.Decimal `json:"monthly_interest_rate"`
	FirstPeriodInterestRate decimal.Decimal `json:"first_period_interest_rate"`
	MaxFeeRate              decimal.Decimal `json:"max_fee_rate"`
	TotalFeeRate            decimal.Decimal `json:"total_fee_rate"`
	CapApplied              bool            `json:"cap_applied"`
	CapComponent            string          `json:"cap_component,omitempty"`
	ZeroInterest            bool            `json:"zero_interest"`
	PromoCode               string          `json:"promo_code,omitempty"`

	Instalments []Instalment `json:"instalments"`
	Fees        []FeeLine    `json:"fees"`
}

// TotalInterest sums scheduled interest.
func (r *Result) TotalInterest() decimal.Decimal {
	sum := decimal.Zero
	for _, in := range r.Instalments {
		sum = sum.Add(in.Interest)
	}
	return sum
}

// TotalFeeAmount is everything the borrower pays on top of net cash.
func (r *Result) TotalFeeAmount() decimal.Decimal {
	sum := r.ProvisionAmount.Add(r.TaxAmount).Add(r.TotalInterest())
	for _, c := range r.Charges {
		sum = sum.Add(c.Amount)
	}
	return sum
}

// Clone returns a deep copy so adjustments never mutate the caller's result.
func (r *Result) Clone() *Result {
	c := *r
	c.Charges = append([]Charge(nil), r.Charges...)
	c.Instalments = append([]Instalment(nil), r.Instalments...)
	c.Fees = append([]FeeLine(nil), r.Fees...)
	return &c
}
