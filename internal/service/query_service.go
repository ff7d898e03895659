package service

import (
	"context"
	"net/http"

	"github.com/yshino/fleamarket-backend/internal/gateway"
	"github.com/yshino/fleamarket-backend/internal/model"
	"github.com/yshino/fleamarket-backend/internal/repository"
	"github.com/yshino/fleamarket-backend/internal/storage"
	"gorm.io/gorm"
)

const (
	ItemsPerPage        = 48
	TransactionsPerPage = 10
)

// ItemSimple is the list-page projection of an item.
type ItemSimple struct {
	ID         uint64           `json:"id"`
	SellerID   uint64           `json:"seller_id"`
	Seller     model.UserSimple `json:"seller"`
	Status     string           `json:"status"`
	Name       string           `json:"name"`
	Price      int              `json:"price"`
	ImageURL   string           `json:"image_url"`
	CategoryID int              `json:"category_id"`
	Category   model.Category   `json:"category"`
	CreatedAt  int64            `json:"created_at"`
}

// ItemDetail adds the trade-side fields, which are only populated when
// the viewer is the seller or the buyer.
type ItemDetail struct {
	ID                        uint64            `json:"id"`
	SellerID                  uint64            `json:"seller_id"`
	Seller                    model.UserSimple  `json:"seller"`
	BuyerID                   uint64            `json:"buyer_id,omitempty"`
	Buyer                     *model.UserSimple `json:"buyer,omitempty"`
	Status                    string            `json:"status"`
	Name                      string            `json:"name"`
	Price                     int               `json:"price"`
	Description               string            `json:"description"`
	ImageURL                  string            `json:"image_url"`
	CategoryID                int               `json:"category_id"`
	Category                  model.Category    `json:"category"`
	TransactionEvidenceID     uint64            `json:"transaction_evidence_id,omitempty"`
	TransactionEvidenceStatus string            `json:"transaction_evidence_status,omitempty"`
	ShippingStatus            string            `json:"shipping_status,omitempty"`
	CreatedAt                 int64             `json:"created_at"`
}

type NewItemsPage struct {
	RootCategoryID   int          `json:"root_category_id,omitempty"`
	RootCategoryName string       `json:"root_category_name,omitempty"`
	HasNext          bool         `json:"has_next"`
	Items            []ItemSimple `json:"items"`
}

type UserItemsPage struct {
	User    model.UserSimple `json:"user"`
	HasNext bool             `json:"has_next"`
	Items   []ItemSimple     `json:"items"`
}

type TransactionsPage struct {
	HasNext bool         `json:"has_next"`
	Items   []ItemDetail `json:"items"`
}

type SettingsView struct {
	CSRFToken         string           `json:"csrf_token"`
	User              *model.User      `json:"user,omitempty"`
	PaymentServiceURL string           `json:"payment_service_url"`
	Categories        []model.Category `json:"categories"`
}

type QueryService interface {
	NewItems(ctx context.Context, cursor repository.Cursor) (*NewItemsPage, error)
	NewCategoryItems(ctx context.Context, rootCategoryID int, cursor repository.Cursor) (*NewItemsPage, error)
	UserItems(ctx context.Context, userID uint64, cursor repository.Cursor) (*UserItemsPage, error)
	Transactions(ctx context.Context, userID uint64, cursor repository.Cursor) (*TransactionsPage, error)
	ItemDetail(ctx context.Context, viewer *model.User, itemID uint64) (*ItemDetail, error)
	QRCode(ctx context.Context, sellerID, evidenceID uint64) ([]byte, error)
	Settings(ctx context.Context, user *model.User, csrfToken string) (*SettingsView, error)
}

type queryService struct {
	tm         repository.TxManager
	items      repository.ItemRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	evidences  repository.TransactionEvidenceRepository
	shippings  repository.ShippingRepository
	configs    repository.ConfigRepository
	shipment   gateway.ShipmentGateway
	images     storage.ImageStore
}

func NewQueryService(
	tm repository.TxManager,
	items repository.ItemRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	evidences repository.TransactionEvidenceRepository,
	shippings repository.ShippingRepository,
	configs repository.ConfigRepository,
	shipment gateway.ShipmentGateway,
	images storage.ImageStore,
) QueryService {
	return &queryService{
		tm:         tm,
		items:      items,
		users:      users,
		categories: categories,
		evidences:  evidences,
		shippings:  shippings,
		configs:    configs,
		shipment:   shipment,
		images:     images,
	}
}

func (s *queryService) NewItems(ctx context.Context, cursor repository.Cursor) (*NewItemsPage, error) {
	statuses := []model.ItemStatus{model.ItemStatusOnSale, model.ItemStatusSoldOut}
	items, err := s.items.ListNewest(ctx, statuses, cursor, ItemsPerPage+1)
	if err != nil {
		return nil, err
	}

	simples, err := s.toItemSimples(ctx, items)
	if err != nil {
		return nil, err
	}

	simples, hasNext := trimPage(simples, ItemsPerPage)
	return &NewItemsPage{HasNext: hasNext, Items: simples}, nil
}

func (s *queryService) NewCategoryItems(ctx context.Context, rootCategoryID int, cursor repository.Cursor) (*NewItemsPage, error) {
	rootCategory, err := s.categories.FindByID(ctx, rootCategoryID)
	if err != nil || !rootCategory.IsRoot() {
		return nil, NewError(http.StatusNotFound, "category not found")
	}

	categoryIDs, err := s.categories.ListChildIDs(ctx, rootCategory.ID)
	if err != nil {
		return nil, err
	}

	statuses := []model.ItemStatus{model.ItemStatusOnSale, model.ItemStatusSoldOut}
	items, err := s.items.ListNewestByCategories(ctx, statuses, categoryIDs, cursor, ItemsPerPage+1)
	if err != nil {
		return nil, err
	}

	simples, err := s.toItemSimples(ctx, items)
	if err != nil {
		return nil, err
	}

	simples, hasNext := trimPage(simples, ItemsPerPage)
	return &NewItemsPage{
		RootCategoryID:   rootCategory.ID,
		RootCategoryName: rootCategory.CategoryName,
		HasNext:          hasNext,
		Items:            simples,
	}, nil
}

func (s *queryService) UserItems(ctx context.Context, userID uint64, cursor repository.Cursor) (*UserItemsPage, error) {
	seller, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, NewError(http.StatusNotFound, "user not found")
		}
		return nil, err
	}

	statuses := []model.ItemStatus{model.ItemStatusOnSale, model.ItemStatusTrading, model.ItemStatusSoldOut}
	items, err := s.items.ListBySeller(ctx, seller.ID, statuses, cursor, ItemsPerPage+1)
	if err != nil {
		return nil, err
	}

	sellerSimple := seller.Simple()
	simples := make([]ItemSimple, 0, len(items))
	for i := range items {
		category, err := s.categories.FindByID(ctx, items[i].CategoryID)
		if err != nil {
			return nil, NewError(http.StatusNotFound, "category not found")
		}
		simples = append(simples, s.toItemSimple(&items[i], sellerSimple, category))
	}

	simples, hasNext := trimPage(simples, ItemsPerPage)
	return &UserItemsPage{User: sellerSimple, HasNext: hasNext, Items: simples}, nil
}

func (s *queryService) Transactions(ctx context.Context, userID uint64, cursor repository.Cursor) (*TransactionsPage, error) {
	var details []ItemDetail
	err := s.tm.Do(ctx, func(tx *gorm.DB) error {
		items, err := s.items.ListInvolving(ctx, tx, userID, cursor, TransactionsPerPage+1)
		if err != nil {
			return err
		}

		details = make([]ItemDetail, 0, len(items))
		for i := range items {
			detail, err := s.buildDetail(ctx, &items[i])
			if err != nil {
				return err
			}
			// Every listed item involves the viewer, so the buyer is
			// visible here.
			if err := s.attachBuyer(ctx, &items[i], detail); err != nil {
				return err
			}

			ev, err := s.evidences.FindByItemIDTx(ctx, tx, items[i].ID)
			if err != nil && !isNotFound(err) {
				return err
			}
			if ev != nil && err == nil {
				shipping, err := s.shippings.FindByTransactionEvidenceIDTx(ctx, tx, ev.ID)
				if err != nil {
					if isNotFound(err) {
						return NewError(http.StatusNotFound, "shipping not found")
					}
					return err
				}

				// In-flight shipments are reported from the courier, not
				// from the locally stored status.
				res, err := s.shipment.Status(ctx, s.configs.ShipmentServiceURL(ctx), shipping.ReserveID)
				if err != nil {
					return NewError(http.StatusInternalServerError, "failed to request to shipment service")
				}
				detail.TransactionEvidenceID = ev.ID
				detail.TransactionEvidenceStatus = string(ev.Status)
				detail.ShippingStatus = res.Status
			}

			details = append(details, *detail)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	hasNext := false
	if len(details) > TransactionsPerPage {
		hasNext = true
		details = details[:TransactionsPerPage]
	}
	return &TransactionsPage{HasNext: hasNext, Items: details}, nil
}

func (s *queryService) ItemDetail(ctx context.Context, viewer *model.User, itemID uint64) (*ItemDetail, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if isNotFound(err) {
			return nil, NewError(http.StatusNotFound, "item not found")
		}
		return nil, err
	}

	detail, err := s.buildDetail(ctx, item)
	if err != nil {
		return nil, err
	}

	if (viewer.ID == item.SellerID || viewer.ID == item.BuyerID) && item.BuyerID != 0 {
		if err := s.attachBuyer(ctx, item, detail); err != nil {
			return nil, err
		}

		ev, err := s.evidences.FindByItemID(ctx, item.ID)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if err == nil {
			shipping, err := s.shippings.FindByTransactionEvidenceID(ctx, ev.ID)
			if err != nil {
				if isNotFound(err) {
					return nil, NewError(http.StatusNotFound, "shipping not found")
				}
				return nil, err
			}
			detail.TransactionEvidenceID = ev.ID
			detail.TransactionEvidenceStatus = string(ev.Status)
			detail.ShippingStatus = string(shipping.Status)
		}
	}

	return detail, nil
}

func (s *queryService) QRCode(ctx context.Context, sellerID, evidenceID uint64) ([]byte, error) {
	ev, err := s.evidences.FindByID(ctx, evidenceID)
	if err != nil {
		if isNotFound(err) {
			return nil, NewError(http.StatusNotFound, "transaction_evidence not found")
		}
		return nil, err
	}
	if ev.SellerID != sellerID {
		return nil, NewError(http.StatusForbidden, "権限がありません")
	}

	shipping, err := s.shippings.FindByTransactionEvidenceID(ctx, ev.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, NewError(http.StatusNotFound, "shippings not found")
		}
		return nil, err
	}
	if shipping.Status != model.ShippingStatusWaitPickup && shipping.Status != model.ShippingStatusShipping {
		return nil, NewError(http.StatusForbidden, "qrcode not available")
	}
	if len(shipping.ImgBinary) == 0 {
		return nil, NewError(http.StatusInternalServerError, "empty qrcode image")
	}
	return shipping.ImgBinary, nil
}

func (s *queryService) Settings(ctx context.Context, user *model.User, csrfToken string) (*SettingsView, error) {
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &SettingsView{
		CSRFToken:         csrfToken,
		User:              user,
		PaymentServiceURL: s.configs.PaymentServiceURL(ctx),
		Categories:        categories,
	}, nil
}

func (s *queryService) buildDetail(ctx context.Context, item *model.Item) (*ItemDetail, error) {
	category, err := s.categories.FindByID(ctx, item.CategoryID)
	if err != nil {
		return nil, NewError(http.StatusNotFound, "category not found")
	}

	seller, err := s.users.FindByID(ctx, item.SellerID)
	if err != nil {
		return nil, NewError(http.StatusNotFound, "seller not found")
	}

	detail := &ItemDetail{
		ID:          item.ID,
		SellerID:    item.SellerID,
		Seller:      seller.Simple(),
		Status:      string(item.Status),
		Name:        item.Name,
		Price:       item.Price,
		Description: item.Description,
		ImageURL:    s.images.URL(item.ImageName),
		CategoryID:  item.CategoryID,
		Category:    *category,
		CreatedAt:   item.CreatedAt.UnixMilli(),
	}
	return detail, nil
}

// attachBuyer fills in the buyer projection. Callers gate it: only the
// seller and the buyer themselves may see who bought an item.
func (s *queryService) attachBuyer(ctx context.Context, item *model.Item, detail *ItemDetail) error {
	if item.BuyerID == 0 {
		return nil
	}
	buyer, err := s.users.FindByID(ctx, item.BuyerID)
	if err != nil {
		return NewError(http.StatusNotFound, "buyer not found")
	}
	simple := buyer.Simple()
	detail.BuyerID = item.BuyerID
	detail.Buyer = &simple
	return nil
}

func (s *queryService) toItemSimples(ctx context.Context, items []model.Item) ([]ItemSimple, error) {
	simples := make([]ItemSimple, 0, len(items))
	for i := range items {
		seller, err := s.users.FindByID(ctx, items[i].SellerID)
		if err != nil {
			return nil, NewError(http.StatusNotFound, "seller not found")
		}
		category, err := s.categories.FindByID(ctx, items[i].CategoryID)
		if err != nil {
			return nil, NewError(http.StatusNotFound, "category not found")
		}
		simples = append(simples, s.toItemSimple(&items[i], seller.Simple(), category))
	}
	return simples, nil
}

func (s *queryService) toItemSimple(item *model.Item, seller model.UserSimple, category *model.Category) ItemSimple {
	return ItemSimple{
		ID:         item.ID,
		SellerID:   item.SellerID,
		Seller:     seller,
		Status:     string(item.Status),
		Name:       item.Name,
		Price:      item.Price,
		ImageURL:   s.images.URL(item.ImageName),
		CategoryID: item.CategoryID,
		Category:   *category,
		CreatedAt:  item.CreatedAt.UnixMilli(),
	}
}

func trimPage(items []ItemSimple, perPage int) ([]ItemSimple, bool) {
	if len(items) > perPage {
		return items[:perPage], true
	}
	return items, false
}
