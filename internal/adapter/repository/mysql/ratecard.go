package mysql

import (
	"context"

	rcDomain "lending-engine/internal/domain/ratecard"

	"gorm.io/gorm"
)

type RateCardRepository struct{ db *gorm.DB }

func NewRateCardRepository(db *gorm.DB) *RateCardRepository { return &RateCardRepository{db: db} }

func (r *RateCardRepository) FindRateCards(ctx context.Context, f rcDomain.Filter) ([]rcDomain.RateCard, error) {
	var out []rcDomain.RateCard
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND transaction_type = ? AND matrix_type = ?", f.ProductID, f.TransactionType, f.MatrixType).
		Where("is_premium = ? AND is_salaried = ?", f.IsPremium, f.IsSalaried).
		Find(&out)
	return out, res.Error
}

func (r *RateCardRepository) FindRepeatRateCards(ctx context.Context, f rcDomain.RepeatFilter) ([]rcDomain.RepeatRateCard, error) {
	var out []rcDomain.RepeatRateCard
	res := r.db.WithContext(ctx).
		Where("customer_segment = ? AND product_line = ? AND transaction_method = ?",
			f.CustomerSegment, f.ProductLine, f.TransactionMethod).
		Find(&out)
	return out, res.Error
}
