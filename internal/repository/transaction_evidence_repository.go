package repository

import (
	"context"
	"time"

	"github.com/yshino/fleamarket-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionEvidenceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, ev *model.TransactionEvidence) error
	FindByID(ctx context.Context, id uint64) (*model.TransactionEvidence, error)
	FindByItemID(ctx context.Context, itemID uint64) (*model.TransactionEvidence, error)
	FindByItemIDTx(ctx context.Context, tx *gorm.DB, itemID uint64) (*model.TransactionEvidence, error)

	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint64) (*model.TransactionEvidence, error)
	FindByItemIDForUpdate(ctx context.Context, tx *gorm.DB, itemID uint64) (*model.TransactionEvidence, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint64, status model.TransactionEvidenceStatus, at time.Time) error
}

type transactionEvidenceRepository struct {
	db *gorm.DB
}

func NewTransactionEvidenceRepository(db *gorm.DB) TransactionEvidenceRepository {
	return &transactionEvidenceRepository{db: db}
}

func (r *transactionEvidenceRepository) Create(ctx context.Context, tx *gorm.DB, ev *model.TransactionEvidence) error {
	return tx.WithContext(ctx).Create(ev).Error
}

func (r *transactionEvidenceRepository) FindByID(ctx context.Context, id uint64) (*model.TransactionEvidence, error) {
	var ev model.TransactionEvidence
	if err := r.db.WithContext(ctx).First(&ev, id).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *transactionEvidenceRepository) FindByItemID(ctx context.Context, itemID uint64) (*model.TransactionEvidence, error) {
	var ev model.TransactionEvidence
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *transactionEvidenceRepository) FindByItemIDTx(ctx context.Context, tx *gorm.DB, itemID uint64) (*model.TransactionEvidence, error) {
	var ev model.TransactionEvidence
	if err := tx.WithContext(ctx).
		Where("item_id = ?", itemID).
		First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *transactionEvidenceRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint64) (*model.TransactionEvidence, error) {
	var ev model.TransactionEvidence
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ev, id).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *transactionEvidenceRepository) FindByItemIDForUpdate(ctx context.Context, tx *gorm.DB, itemID uint64) (*model.TransactionEvidence, error) {
	var ev model.TransactionEvidence
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ?", itemID).
		First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *transactionEvidenceRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint64, status model.TransactionEvidenceStatus, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.TransactionEvidence{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		}).Error
}
