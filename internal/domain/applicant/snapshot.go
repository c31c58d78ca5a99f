package applicant

import "github.com/shopspring/decimal"

type Segment string

const (
	SegmentFirstTime Segment = "first_time"
	SegmentRepeat    Segment = "repeat"
)

// RiskSnapshot is what the risk-scoring collaborator knows about an applicant
// at submission time.
type RiskSnapshot struct {
	ApplicantID      string          `json:"applicant_id"`
	Score            decimal.Decimal `json:"score"`
	RiskBand         string          `json:"risk_band"`
	IsPremium        bool            `json:"is_premium"`
	IsSalaried       bool            `json:"is_salaried"`
	AlternateScoring bool            `json:"alternate_scoring"`
	Segment          Segment         `json:"segment"`
	IsRepeatBorrower bool            `json:"is_repeat_borrower"`
	BehaviourScore   decimal.Decimal `json:"behaviour_score"`
}

// Limit is the applicant's credit line at submission time.
type Limit struct {
	SetLimit  decimal.Decimal `json:"set_limit"`
	UsedLimit decimal.Decimal `json:"used_limit"`
}

// Available never goes below zero.
func (l Limit) Available() decimal.Decimal {
	a := l.SetLimit.Sub(l.UsedLimit)
	if a.IsNegative() {
		return decimal.Zero
	}
	return a
}
