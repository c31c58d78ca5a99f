package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"lending-engine/internal/domain/applicant"
	domain "lending-engine/internal/domain/loan"
	"lending-engine/internal/usecase/eligibility"
	"lending-engine/internal/usecase/pricing"
	"lending-engine/internal/usecase/ratecard"
)

// LoanRequest is immutable once submitted.
type LoanRequest struct {
	RequestID         string                 `json:"request_id"`
	AccountID         string                 `json:"account_id"`
	ApplicantID       string                 `json:"applicant_id"`
	ProductID         string                 `json:"product_id"`
	ProductLine       string                 `json:"product_line"`
	RequestedAmount   decimal.Decimal        `json:"requested_amount"`
	RequestedDuration int                    `json:"requested_duration"`
	TransactionType   string                 `json:"transaction_type"`
	TransactionMethod string                 `json:"transaction_method"`
	Risk              applicant.RiskSnapshot `json:"risk"`
	Limit             applicant.Limit        `json:"limit"`
	SelfDisbursement  bool                   `json:"is_self_disbursement"`
	PromoCode         string                 `json:"promo_code,omitempty"`
	OriginationDate   time.Time              `json:"origination_date"`
	FirstDueDate      time.Time              `json:"first_due_date"`
	Fees              []pricing.FeeSpec      `json:"fees,omitempty"`
	BypassFDC         bool                   `json:"bypass_fdc,omitempty"`
	Locale            string                 `json:"locale,omitempty"`
}

type LoanDTO struct {
	LoanID          string              `json:"loan_id"`
	RequestID       string              `json:"request_id"`
	AccountID       string              `json:"account_id"`
	Principal       decimal.Decimal     `json:"principal"`
	DisbursedAmount decimal.Decimal     `json:"disbursed_amount"`
	ProvisionAmount decimal.Decimal     `json:"provision_amount"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	Duration        int                 `json:"duration"`
	PricingRule     string              `json:"pricing_rule"`
	PromoCode       string              `json:"promo_code,omitempty"`
	ZeroInterest    bool                `json:"zero_interest"`
	State           string              `json:"state"`
	Instalments     []domain.Instalment `json:"instalments"`
	Fees            []domain.Fee        `json:"fees"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Outcome is either a created loan or a structured rejection. Quotes carry
// only Pricing and RateCard.
type Outcome struct {
	Loan      *LoanDTO               `json:"loan,omitempty"`
	Rejection *eligibility.Rejection `json:"rejection,omitempty"`
	Decision  *eligibility.Decision  `json:"decision,omitempty"`
	Pricing   *pricing.Result        `json:"pricing,omitempty"`
	RateCard  *ratecard.Resolution   `json:"rate_card,omitempty"`
	Replayed  bool                   `json:"replayed,omitempty"`
}

func toDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:          l.LoanID,
		RequestID:       l.RequestID,
		AccountID:       l.AccountID,
		Principal:       l.Principal,
		DisbursedAmount: l.DisbursedAmount,
		ProvisionAmount: l.ProvisionAmount,
		TaxAmount:       l.TaxAmount,
		Duration:        l.Duration,
		PricingRule:     l.PricingRule,
		PromoCode:       l.PromoCode,
		ZeroInterest:    l.ZeroInterest,
		State:           string(l.State),
		Instalments:     l.Instalments,
		Fees:            l.Fees,
		CreatedAt:       l.CreatedAt,
	}
}

func toLoan(loanID string, req LoanRequest, rc *ratecard.Resolution, r *pricing.Result) *domain.Loan {
	l := &domain.Loan{
		LoanID:                  loanID,
		RequestID:               req.RequestID,
		AccountID:               req.AccountID,
		ProductID:               req.ProductID,
		TransactionType:         req.TransactionType,
		PricingRule:             string(rc.Rule),
		SelfDisbursement:        r.SelfDisbursement,
		Duration:                r.Duration,
		Principal:               r.Principal,
		DisbursedAmount:         r.DisbursedAmount,
		ProvisionAmount:         r.ProvisionAmount,
		TaxAmount:               r.TaxAmount,
		InsurancePremium:        r.InsurancePremium,
		DDPremium:               r.DDPremium,
		RegistrationFee:         r.RegistrationFee,
		PromoDiscount:           r.PromoDiscount,
		ProvisionRate:           r.ProvisionRate,
		MonthlyInterestRate:     r.MonthlyInterestRate,
		FirstPeriodInterestRate: r.FirstPeriodInterestRate,
		TotalFeeRate:            r.TotalFeeRate,
		MaxFeeRate:              r.MaxFeeRate,
		PromoCode:               r.PromoCode,
		ZeroInterest:            r.ZeroInterest,
		State:                   domain.StateActive,
	}
	if rc.Card != nil {
		l.RateCardID = &rc.Card.ID
	}
	if rc.Repeat != nil {
		l.RepeatRateCardID = &rc.Repeat.ID
	}
	for _, in := range r.Instalments {
		l.Instalments = append(l.Instalments, domain.Instalment{
			Period:       in.Period,
			DueDate:      in.DueDate,
			Days:         in.Days,
			InterestRate: in.InterestRate,
			Principal:    in.Principal,
			Interest:     in.Interest,
			DueAmount:    in.DueAmount,
		})
	}
	for _, f := range r.Fees {
		l.Fees = append(l.Fees, domain.Fee{Kind: string(f.Kind), Rate: f.Rate, Base: f.Base, Amount: f.Amount})
	}
	return l
}
