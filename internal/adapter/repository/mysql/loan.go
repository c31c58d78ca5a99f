package mysql

import (
	"context"
	"errors"

	loanDomain "lending-engine/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// Create inserts the loan row and its instalments and fee lines.
func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	err := r.db.WithContext(ctx).Create(l).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return loanDomain.ErrDuplicateRequest
	}
	return err
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := withChildren(r.db.WithContext(ctx)).Where("loan_id = ?", loanID).First(&out)
	return found(&out, res.Error)
}

func (r *LoanRepository) GetByRequestID(ctx context.Context, accountID, requestID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := withChildren(r.db.WithContext(ctx)).
		Where("account_id = ? AND request_id = ?", accountID, requestID).
		First(&out)
	return found(&out, res.Error)
}

func (r *LoanRepository) GetLatestPaidOff(ctx context.Context, accountID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := withChildren(r.db.WithContext(ctx)).
		Where("account_id = ? AND state = ? AND paid_off_at IS NOT NULL", accountID, loanDomain.StatePaidOff).
		Order("paid_off_at DESC, id DESC").
		First(&out)
	return found(&out, res.Error)
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Instalments", func(db *gorm.DB) *gorm.DB { return db.Order("period ASC") }).
		Preload("Fees", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func found(l *loanDomain.Loan, err error) (*loanDomain.Loan, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
