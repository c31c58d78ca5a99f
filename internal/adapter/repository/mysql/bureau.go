package mysql

import (
	"context"
	"errors"
	"time"

	"lending-engine/internal/domain/bureau"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BureauRepository reads inquiries written by the bureau integration and
// queues refresh requests in its outbox table.
type BureauRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBureauRepository(db *gorm.DB) *BureauRepository {
	return &BureauRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *BureauRepository) LatestInquiry(ctx context.Context, accountID string) (*bureau.Inquiry, error) {
	var out bureau.Inquiry
	err := r.db.WithContext(ctx).
		Preload("Loans").
		Where("account_id = ?", accountID).
		Order("inquired_at DESC, id DESC").
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bureau.ErrNoInquiry
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestInquiry enqueues at most one refresh per account per UTC day.
func (r *BureauRepository) RequestInquiry(ctx context.Context, accountID string) error {
	now := r.now()
	req := bureau.ReinquiryRequest{
		AccountID:   accountID,
		RequestDay:  now.UTC().Format("2006-01-02"),
		RequestedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&req).Error
}
