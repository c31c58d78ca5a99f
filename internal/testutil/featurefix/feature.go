// Package featurefix builds feature snapshots for tests.
package featurefix

import (
	"time"

	"lending-engine/internal/config"
)

// New returns a valid snapshot with every check active and no campaigns.
// Tests mutate the copy they get.
func New() *config.Feature {
	return &config.Feature{
		Version: 1,
		Pricing: config.PricingConfig{
			DailyRateCap:  0.004,
			MinLoanAmount: 500000,
			TaxEnabled:    true,
			TaxRate:       0.11,
			RoundingUnit:  1,
		},
		ZeroInterest: config.ZeroInterestConfig{
			MinAmount: 500000,
			MaxAmount: 5000000,
		},
		Promotions: []config.PromoCode{
			{Code: "HEMAT50", Type: config.PromoFixed, Amount: 50000},
			{Code: "DISKON2", Type: config.PromoPercentage, Amount: 2, MaxDiscount: 75000,
				TransactionTypes: []string{"cash_loan"},
				ValidFrom:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				ValidUntil:       time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)},
		},
		Bureau: config.BureauConfig{TimeoutMillis: 500},
		FDC: config.FDCConfig{
			Active:       true,
			FailOpen:     true,
			StaleDays:    7,
			MaxPlatforms: 3,
			OwnIssuerID:  "820001",
		},
		Inside: config.InsideConfig{
			Active:       true,
			ThresholdPct: 90,
			RecencyHours: 24,
		},
		Outside: config.OutsideConfig{
			Active:            true,
			FailOpen:          true,
			RatioThreshold:    0.8,
			MaxBehaviourScore: 450,
			DPDThreshold:      30,
			BlockHours:        72,
		},
	}
}
