package repository

import (
	"context"
	"time"

	"github.com/yshino/fleamarket-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByAccountName(ctx context.Context, accountName string) (*model.User, error)

	// FindForUpdate re-reads the row under an exclusive lock. Only this
	// read may gate a mutation of the user's counters.
	FindForUpdate(ctx context.Context, tx *gorm.DB, id uint64) (*model.User, error)
	UpdateSellStats(ctx context.Context, tx *gorm.DB, id uint64, numSellItems int, lastBump time.Time) error
	UpdateLastBump(ctx context.Context, tx *gorm.DB, id uint64, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByAccountName(ctx context.Context, accountName string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).
		Where("account_name = ?", accountName).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, id uint64) (*model.User, error) {
	var u model.User
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UpdateSellStats(ctx context.Context, tx *gorm.DB, id uint64, numSellItems int, lastBump time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"num_sell_items": numSellItems,
			"last_bump":      lastBump,
		}).Error
}

func (r *userRepository) UpdateLastBump(ctx context.Context, tx *gorm.DB, id uint64, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("last_bump", at).Error
}
