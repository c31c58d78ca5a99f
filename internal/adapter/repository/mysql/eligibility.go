package mysql

import (
	"context"
	"time"

	eligDomain "lending-engine/internal/domain/eligibility"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EligibilityRepository struct{ db *gorm.DB }

func NewEligibilityRepository(db *gorm.DB) *EligibilityRepository {
	return &EligibilityRepository{db: db}
}

// LockAccount must run inside a transaction; the row lock is held until it ends.
func (r *EligibilityRepository) LockAccount(ctx context.Context, accountID string) error {
	db := r.db.WithContext(ctx)
	anchor := eligDomain.Account{AccountID: accountID, UpdatedAt: time.Now().UTC()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&anchor).Error; err != nil {
		return err
	}
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ?", accountID).
		First(&anchor).Error; err != nil {
		return err
	}
	return db.Model(&eligDomain.Account{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{"version": gorm.Expr("version + 1"), "updated_at": time.Now().UTC()}).Error
}

func (r *EligibilityRepository) ListEvents(ctx context.Context, accountID string) ([]eligDomain.Event, error) {
	var out []eligDomain.Event
	res := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *EligibilityRepository) AppendEvents(ctx context.Context, events []eligDomain.Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&events).Error
}

func (r *EligibilityRepository) CreateRejection(ctx context.Context, rej *eligDomain.Rejection) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rej)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
