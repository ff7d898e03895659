package service

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yshino/fleamarket-backend/internal/model"
	"github.com/yshino/fleamarket-backend/internal/repository"
	"github.com/yshino/fleamarket-backend/internal/storage"
	"gorm.io/gorm"
)

// BumpChargeSeconds is compared against epoch milliseconds below, so
// the effective cooldown is 3ms, not 3s. Benchmarked clients depend on
// the current behavior, so it stays as is.
const BumpChargeSeconds = 3

type SellInput struct {
	Name          string
	Description   string
	Price         int
	CategoryID    int
	ImageFilename string
	ImageData     []byte
}

type ListingService interface {
	Sell(ctx context.Context, sellerID uint64, in SellInput) (uint64, error)
	EditPrice(ctx context.Context, sellerID, itemID uint64, price int) (*model.Item, error)
	Bump(ctx context.Context, userID, itemID uint64) (*model.Item, error)
}

type listingService struct {
	tm         repository.TxManager
	items      repository.ItemRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	images     storage.ImageStore
}

func NewListingService(
	tm repository.TxManager,
	items repository.ItemRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	images storage.ImageStore,
) ListingService {
	return &listingService{tm: tm, items: items, users: users, categories: categories, images: images}
}

func (s *listingService) Sell(ctx context.Context, sellerID uint64, in SellInput) (uint64, error) {
	if in.Price < model.ItemMinPrice || in.Price > model.ItemMaxPrice {
		return 0, NewError(http.StatusBadRequest, model.ItemPriceErrMsg)
	}
	if in.Name == "" || in.Description == "" || in.CategoryID == 0 {
		return 0, NewError(http.StatusBadRequest, "all parameters are required")
	}

	category, err := s.categories.FindByID(ctx, in.CategoryID)
	if err != nil || category.IsRoot() {
		return 0, NewError(http.StatusBadRequest, "Incorrect category ID")
	}

	ext := strings.ToLower(filepath.Ext(in.ImageFilename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
	default:
		return 0, NewError(http.StatusBadRequest, "unsupported image format error")
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}

	imgName := strings.ReplaceAll(uuid.New().String(), "-", "") + ext
	if err := s.images.Save(ctx, imgName, in.ImageData); err != nil {
		return 0, NewError(http.StatusInternalServerError, "Saving image failed")
	}

	var itemID uint64
	err = s.tm.Do(ctx, func(tx *gorm.DB) error {
		seller, err := s.users.FindForUpdate(ctx, tx, sellerID)
		if err != nil {
			if isNotFound(err) {
				return NewError(http.StatusNotFound, "user not found")
			}
			return err
		}

		item := &model.Item{
			SellerID:    seller.ID,
			Status:      model.ItemStatusOnSale,
			Name:        in.Name,
			Price:       in.Price,
			Description: in.Description,
			ImageName:   imgName,
			CategoryID:  category.ID,
			CreatedAt:   time.Now(),
		}
		if err := s.items.Create(ctx, tx, item); err != nil {
			return err
		}
		itemID = item.ID

		return s.users.UpdateSellStats(ctx, tx, seller.ID, seller.NumSellItems+1, time.Now())
	})
	if err != nil {
		return 0, err
	}
	return itemID, nil
}

func (s *listingService) EditPrice(ctx context.Context, sellerID, itemID uint64, price int) (*model.Item, error) {
	if price < model.ItemMinPrice || price > model.ItemMaxPrice {
		return nil, NewError(http.StatusBadRequest, model.ItemPriceErrMsg)
	}

	// Fast precheck without a lock; it may be stale and only fails fast.
	target, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if isNotFound(err) {
			return nil, NewError(http.StatusNotFound, "item not found")
		}
		return nil, err
	}
	if target.SellerID != sellerID {
		return nil, NewError(http.StatusForbidden, "自分の商品以外は編集できません")
	}

	var updated *model.Item
	err = s.tm.Do(ctx, func(tx *gorm.DB) error {
		// Authoritative read: the item may have left on_sale between the
		// precheck and the lock.
		locked, err := s.items.FindForUpdate(ctx, tx, itemID)
		if err != nil {
			if isNotFound(err) {
				return NewError(http.StatusNotFound, "item not found")
			}
			return err
		}
		if locked.Status != model.ItemStatusOnSale {
			return NewError(http.StatusForbidden, "販売中の商品以外編集できません")
		}

		if err := s.items.UpdatePrice(ctx, tx, itemID, price, time.Now()); err != nil {
			return err
		}

		updated, err = s.items.FindByIDTx(ctx, tx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *listingService) Bump(ctx context.Context, userID, itemID uint64) (*model.Item, error) {
	var bumped *model.Item
	err := s.tm.Do(ctx, func(tx *gorm.DB) error {
		target, err := s.items.FindForUpdate(ctx, tx, itemID)
		if err != nil {
			if isNotFound(err) {
				return NewError(http.StatusNotFound, "item not found")
			}
			return err
		}
		if target.SellerID != userID {
			return NewError(http.StatusForbidden, "自分の商品以外は編集できません")
		}

		seller, err := s.users.FindForUpdate(ctx, tx, userID)
		if err != nil {
			if isNotFound(err) {
				return NewError(http.StatusNotFound, "user not found")
			}
			return err
		}

		now := time.Now()
		if seller.LastBump.UnixMilli()+BumpChargeSeconds > now.UnixMilli() {
			return NewError(http.StatusForbidden, "Bump not allowed")
		}

		if err := s.items.ResetCreatedAt(ctx, tx, target.ID, now); err != nil {
			return err
		}
		if err := s.users.UpdateLastBump(ctx, tx, seller.ID, now); err != nil {
			return err
		}

		bumped, err = s.items.FindByIDTx(ctx, tx, target.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bumped, nil
}
