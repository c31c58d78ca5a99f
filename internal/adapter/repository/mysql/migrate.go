package mysql

import (
	"lending-engine/internal/domain/bureau"
	"lending-engine/internal/domain/eligibility"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/ratecard"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the engine reads or writes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&loan.Loan{}, &loan.Instalment{}, &loan.Fee{},
		&ratecard.RateCard{}, &ratecard.RepeatRateCard{},
		&eligibility.Account{}, &eligibility.Event{}, &eligibility.Rejection{},
		&bureau.Inquiry{}, &bureau.Loan{}, &bureau.ReinquiryRequest{},
	)
}
