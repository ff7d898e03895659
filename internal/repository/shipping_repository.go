package repository

import (
	"context"
	"time"

	"github.com/yshino/fleamarket-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShippingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Shipping) error
	FindByTransactionEvidenceID(ctx context.Context, evidenceID uint64) (*model.Shipping, error)
	FindByTransactionEvidenceIDTx(ctx context.Context, tx *gorm.DB, evidenceID uint64) (*model.Shipping, error)

	FindForUpdate(ctx context.Context, tx *gorm.DB, evidenceID uint64) (*model.Shipping, error)
	UpdateLabel(ctx context.Context, tx *gorm.DB, evidenceID uint64, status model.ShippingStatus, img []byte, at time.Time) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, evidenceID uint64, status model.ShippingStatus, at time.Time) error
}

type shippingRepository struct {
	db *gorm.DB
}

func NewShippingRepository(db *gorm.DB) ShippingRepository {
	return &shippingRepository{db: db}
}

func (r *shippingRepository) Create(ctx context.Context, tx *gorm.DB, s *model.Shipping) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *shippingRepository) FindByTransactionEvidenceID(ctx context.Context, evidenceID uint64) (*model.Shipping, error) {
	return findShipping(r.db.WithContext(ctx), evidenceID)
}

func (r *shippingRepository) FindByTransactionEvidenceIDTx(ctx context.Context, tx *gorm.DB, evidenceID uint64) (*model.Shipping, error) {
	return findShipping(tx.WithContext(ctx), evidenceID)
}

func (r *shippingRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, evidenceID uint64) (*model.Shipping, error) {
	return findShipping(tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), evidenceID)
}

func findShipping(q *gorm.DB, evidenceID uint64) (*model.Shipping, error) {
	var s model.Shipping
	if err := q.Where("transaction_evidence_id = ?", evidenceID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shippingRepository) UpdateLabel(ctx context.Context, tx *gorm.DB, evidenceID uint64, status model.ShippingStatus, img []byte, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.Shipping{}).
		Where("transaction_evidence_id = ?", evidenceID).
		Updates(map[string]interface{}{
			"status":     status,
			"img_binary": img,
			"updated_at": at,
		}).Error
}

func (r *shippingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, evidenceID uint64, status model.ShippingStatus, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.Shipping{}).
		Where("transaction_evidence_id = ?", evidenceID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		}).Error
}
