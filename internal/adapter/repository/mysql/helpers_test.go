package mysql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	loanDomain "lending-engine/internal/domain/loan"
)

// openTestDB creates an in-memory sqlite DB with the full schema. One
// connection only: every ":memory:" connection is a separate database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func makeLoan(loanID, accountID, requestID string) *loanDomain.Loan {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return &loanDomain.Loan{
		LoanID:          loanID,
		AccountID:       accountID,
		RequestID:       requestID,
		ProductID:       "cash",
		TransactionType: "cash_loan",
		PricingRule:     "bracket",
		Duration:        2,
		Principal:       decimal.NewFromInt(1000000),
		DisbursedAmount: decimal.NewFromInt(944500),
		ProvisionAmount: decimal.NewFromInt(50000),
		TaxAmount:       decimal.NewFromInt(5500),
		State:           loanDomain.StateActive,
		Instalments: []loanDomain.Instalment{
			{Period: 2, DueDate: due.AddDate(0, 1, 0), Days: 30, Principal: decimal.NewFromInt(500000), DueAmount: decimal.NewFromInt(520000)},
			{Period: 1, DueDate: due, Days: 31, Principal: decimal.NewFromInt(500000), DueAmount: decimal.NewFromInt(520667)},
		},
		Fees: []loanDomain.Fee{
			{Kind: "provision", Rate: decimal.RequireFromString("0.05"), Base: decimal.NewFromInt(1000000), Amount: decimal.NewFromInt(50000)},
			{Kind: "tax", Rate: decimal.RequireFromString("0.11"), Base: decimal.NewFromInt(50000), Amount: decimal.NewFromInt(5500)},
		},
	}
}
