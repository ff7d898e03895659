package repository

import (
	"context"
	"time"

	"github.com/yshino/fleamarket-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.Item, error)

	Create(ctx context.Context, tx *gorm.DB, item *model.Item) error
	// FindForUpdate is the authoritative read: the pre-lock read may be
	// stale and must never gate a mutation.
	FindForUpdate(ctx context.Context, tx *gorm.DB, id uint64) (*model.Item, error)
	UpdateTrading(ctx context.Context, tx *gorm.DB, id, buyerID uint64, at time.Time) error
	UpdateSoldOut(ctx context.Context, tx *gorm.DB, id uint64, at time.Time) error
	UpdatePrice(ctx context.Context, tx *gorm.DB, id uint64, price int, at time.Time) error
	ResetCreatedAt(ctx context.Context, tx *gorm.DB, id uint64, at time.Time) error
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uint64) (*model.Item, error)

	ListNewest(ctx context.Context, statuses []model.ItemStatus, cursor Cursor, limit int) ([]model.Item, error)
	ListNewestByCategories(ctx context.Context, statuses []model.ItemStatus, categoryIDs []int, cursor Cursor, limit int) ([]model.Item, error)
	ListBySeller(ctx context.Context, sellerID uint64, statuses []model.ItemStatus, cursor Cursor, limit int) ([]model.Item, error)
	ListInvolving(ctx context.Context, tx *gorm.DB, userID uint64, cursor Cursor, limit int) ([]model.Item, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) FindByID(ctx context.Context, id uint64) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) Create(ctx context.Context, tx *gorm.DB, item *model.Item) error {
	return tx.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, id uint64) (*model.Item, error) {
	var item model.Item
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) FindByIDTx(ctx context.Context, tx *gorm.DB, id uint64) (*model.Item, error) {
	var item model.Item
	if err := tx.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) UpdateTrading(ctx context.Context, tx *gorm.DB, id, buyerID uint64, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"buyer_id":   buyerID,
			"status":     model.ItemStatusTrading,
			"updated_at": at,
		}).Error
}

func (r *itemRepository) UpdateSoldOut(ctx context.Context, tx *gorm.DB, id uint64, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.ItemStatusSoldOut,
			"updated_at": at,
		}).Error
}

func (r *itemRepository) UpdatePrice(ctx context.Context, tx *gorm.DB, id uint64, price int, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"price":      price,
			"updated_at": at,
		}).Error
}

func (r *itemRepository) ResetCreatedAt(ctx context.Context, tx *gorm.DB, id uint64, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"created_at": at,
			"updated_at": at,
		}).Error
}

func (r *itemRepository) ListNewest(ctx context.Context, statuses []model.ItemStatus, cursor Cursor, limit int) ([]model.Item, error) {
	q := r.db.WithContext(ctx).
		Where("status IN ?", statuses)
	return r.listPage(q, cursor, limit)
}

func (r *itemRepository) ListNewestByCategories(ctx context.Context, statuses []model.ItemStatus, categoryIDs []int, cursor Cursor, limit int) ([]model.Item, error) {
	q := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Where("category_id IN ?", categoryIDs)
	return r.listPage(q, cursor, limit)
}

func (r *itemRepository) ListBySeller(ctx context.Context, sellerID uint64, statuses []model.ItemStatus, cursor Cursor, limit int) ([]model.Item, error) {
	q := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Where("status IN ?", statuses)
	return r.listPage(q, cursor, limit)
}

func (r *itemRepository) ListInvolving(ctx context.Context, tx *gorm.DB, userID uint64, cursor Cursor, limit int) ([]model.Item, error) {
	q := tx.WithContext(ctx).
		Where("(seller_id = ? OR buyer_id = ?)", userID, userID)
	return r.listPage(q, cursor, limit)
}

func (r *itemRepository) listPage(q *gorm.DB, cursor Cursor, limit int) ([]model.Item, error) {
	if !cursor.IsZero() {
		q = q.Where(cursorCond, cursor.CreatedAt, cursor.CreatedAt, cursor.ItemID)
	}
	var items []model.Item
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
