package repository

import (
	"context"

	"github.com/yshino/fleamarket-backend/internal/model"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	// FindByID resolves the parent category name for non-root categories.
	FindByID(ctx context.Context, id int) (*model.Category, error)
	ListAll(ctx context.Context) ([]model.Category, error)
	ListChildIDs(ctx context.Context, rootID int) ([]int, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindByID(ctx context.Context, id int) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	if !c.IsRoot() {
		var parent model.Category
		if err := r.db.WithContext(ctx).First(&parent, c.ParentID).Error; err == nil {
			c.ParentCategoryName = parent.CategoryName
		}
	}
	return &c, nil
}

func (r *categoryRepository) ListAll(ctx context.Context) ([]model.Category, error) {
	var cs []model.Category
	if err := r.db.WithContext(ctx).Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *categoryRepository) ListChildIDs(ctx context.Context, rootID int) ([]int, error) {
	var ids []int
	if err := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("parent_id = ?", rootID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
