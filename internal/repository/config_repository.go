package repository

import (
	"context"

	"github.com/yshino/fleamarket-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfigRepository interface {
	Upsert(ctx context.Context, name, val string) error
	// PaymentServiceURL and ShipmentServiceURL fall back to the
	// configured defaults when the row is absent.
	PaymentServiceURL(ctx context.Context) string
	ShipmentServiceURL(ctx context.Context) string
}

type configRepository struct {
	db              *gorm.DB
	defaultPayment  string
	defaultShipment string
}

func NewConfigRepository(db *gorm.DB, defaultPayment, defaultShipment string) ConfigRepository {
	return &configRepository{
		db:              db,
		defaultPayment:  defaultPayment,
		defaultShipment: defaultShipment,
	}
}

func (r *configRepository) Upsert(ctx context.Context, name, val string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"val"}),
		}).
		Create(&model.Config{Name: name, Val: val}).Error
}

func (r *configRepository) get(ctx context.Context, name, fallback string) string {
	var c model.Config
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&c).Error; err != nil {
		return fallback
	}
	return c.Val
}

func (r *configRepository) PaymentServiceURL(ctx context.Context) string {
	return r.get(ctx, model.ConfigPaymentServiceURL, r.defaultPayment)
}

func (r *configRepository) ShipmentServiceURL(ctx context.Context) string {
	return r.get(ctx, model.ConfigShipmentServiceURL, r.defaultShipment)
}
