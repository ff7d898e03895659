package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yshino/fleamarket-backend/internal/gateway"
	"github.com/yshino/fleamarket-backend/internal/model"
	"github.com/yshino/fleamarket-backend/internal/repository"
	"gorm.io/gorm"
)

type queryFixture struct {
	items      *mockItemRepository
	users      *mockUserRepository
	categories *mockCategoryRepository
	evidences  *mockTransactionEvidenceRepository
	shippings  *mockShippingRepository
	configs    *mockConfigRepository
	shipment   *mockShipmentGateway
	images     *mockImageStore
	svc        QueryService
}

func newQueryFixture() *queryFixture {
	f := &queryFixture{
		items:      new(mockItemRepository),
		users:      new(mockUserRepository),
		categories: new(mockCategoryRepository),
		evidences:  new(mockTransactionEvidenceRepository),
		shippings:  new(mockShippingRepository),
		configs:    new(mockConfigRepository),
		shipment:   new(mockShipmentGateway),
		images:     new(mockImageStore),
	}
	f.svc = NewQueryService(fakeTxManager{}, f.items, f.users, f.categories, f.evidences, f.shippings, f.configs, f.shipment, f.images)
	f.configs.On("PaymentServiceURL", mock.Anything).Return("http://payment.test").Maybe()
	f.configs.On("ShipmentServiceURL", mock.Anything).Return("http://shipment.test").Maybe()
	return f
}

func makeItems(n int, status model.ItemStatus) []model.Item {
	items := make([]model.Item, n)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := range items {
		items[i] = model.Item{
			ID:         uint64(1000 - i),
			SellerID:   1,
			Status:     status,
			Name:       "item",
			Price:      5000,
			ImageName:  "img.jpg",
			CategoryID: 32,
			CreatedAt:  base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return items
}

func TestQueryServiceNewItems(t *testing.T) {
	seller := &model.User{ID: 1, AccountName: "seller"}
	category := &model.Category{ID: 32, ParentID: 30, CategoryName: "コンパクトカメラ", ParentCategoryName: "家電"}

	t.Run("full page sets has_next and trims the probe row", func(t *testing.T) {
		f := newQueryFixture()
		f.items.On("ListNewest", mock.Anything, mock.Anything, repository.Cursor{}, ItemsPerPage+1).
			Return(makeItems(ItemsPerPage+1, model.ItemStatusOnSale), nil)
		f.users.On("FindByID", mock.Anything, uint64(1)).Return(seller, nil)
		f.categories.On("FindByID", mock.Anything, 32).Return(category, nil)

		page, err := f.svc.NewItems(context.Background(), repository.Cursor{})
		require.NoError(t, err)
		assert.True(t, page.HasNext)
		assert.Len(t, page.Items, ItemsPerPage)
		first := page.Items[0]
		assert.Equal(t, "/upload/img.jpg", first.ImageURL)
		assert.Equal(t, "家電", first.Category.ParentCategoryName)
	})

	t.Run("short page has no next", func(t *testing.T) {
		f := newQueryFixture()
		f.items.On("ListNewest", mock.Anything, mock.Anything, repository.Cursor{}, ItemsPerPage+1).
			Return(makeItems(3, model.ItemStatusOnSale), nil)
		f.users.On("FindByID", mock.Anything, uint64(1)).Return(seller, nil)
		f.categories.On("FindByID", mock.Anything, 32).Return(category, nil)

		page, err := f.svc.NewItems(context.Background(), repository.Cursor{})
		require.NoError(t, err)
		assert.False(t, page.HasNext)
		assert.Len(t, page.Items, 3)
	})
}

func TestQueryServiceNewCategoryItems(t *testing.T) {
	t.Run("leaf category is rejected", func(t *testing.T) {
		f := newQueryFixture()
		leaf := &model.Category{ID: 32, ParentID: 30}
		f.categories.On("FindByID", mock.Anything, 32).Return(leaf, nil)

		_, err := f.svc.NewCategoryItems(context.Background(), 32, repository.Cursor{})
		svcErr := serviceError(t, err)
		assert.Equal(t, http.StatusNotFound, svcErr.Status)
		assert.Equal(t, "category not found", svcErr.Message)
	})

	t.Run("filters by all child categories", func(t *testing.T) {
		f := newQueryFixture()
		root := &model.Category{ID: 30, ParentID: 0, CategoryName: "家電"}
		f.categories.On("FindByID", mock.Anything, 30).Return(root, nil)
		f.categories.On("ListChildIDs", mock.Anything, 30).Return([]int{31, 32, 33}, nil)
		f.items.On("ListNewestByCategories", mock.Anything, mock.Anything, []int{31, 32, 33}, repository.Cursor{}, ItemsPerPage+1).
			Return([]model.Item{}, nil)

		page, err := f.svc.NewCategoryItems(context.Background(), 30, repository.Cursor{})
		require.NoError(t, err)
		assert.Equal(t, 30, page.RootCategoryID)
		assert.Equal(t, "家電", page.RootCategoryName)
		assert.Empty(t, page.Items)
	})
}

func TestQueryServiceItemDetail(t *testing.T) {
	seller := &model.User{ID: 1, AccountName: "seller"}
	buyer := &model.User{ID: 2, AccountName: "buyer"}
	stranger := &model.User{ID: 3, AccountName: "stranger"}
	category := &model.Category{ID: 32, ParentID: 30}
	item := &model.Item{ID: 10, SellerID: 1, BuyerID: 2, Status: model.ItemStatusTrading, Name: "camera", ImageName: "img.jpg", CategoryID: 32, CreatedAt: time.Now()}
	ev := &model.TransactionEvidence{ID: 70, SellerID: 1, BuyerID: 2, Status: model.TransactionEvidenceStatusWaitShipping, ItemID: 10}
	shipping := &model.Shipping{TransactionEvidenceID: 70, Status: model.ShippingStatusWaitPickup}

	setup := func() *queryFixture {
		f := newQueryFixture()
		f.items.On("FindByID", mock.Anything, uint64(10)).Return(item, nil)
		f.categories.On("FindByID", mock.Anything, 32).Return(category, nil)
		f.users.On("FindByID", mock.Anything, uint64(1)).Return(seller, nil)
		f.users.On("FindByID", mock.Anything, uint64(2)).Return(buyer, nil)
		return f
	}

	t.Run("buyer sees trade fields", func(t *testing.T) {
		f := setup()
		f.evidences.On("FindByItemID", mock.Anything, uint64(10)).Return(ev, nil)
		f.shippings.On("FindByTransactionEvidenceID", mock.Anything, uint64(70)).Return(shipping, nil)

		detail, err := f.svc.ItemDetail(context.Background(), buyer, 10)
		require.NoError(t, err)
		assert.Equal(t, uint64(70), detail.TransactionEvidenceID)
		assert.Equal(t, "wait_shipping", detail.TransactionEvidenceStatus)
		assert.Equal(t, "wait_pickup", detail.ShippingStatus)
		require.NotNil(t, detail.Buyer)
		assert.Equal(t, uint64(2), detail.Buyer.ID)
	})

	t.Run("third party does not see trade fields or the buyer", func(t *testing.T) {
		f := setup()

		detail, err := f.svc.ItemDetail(context.Background(), stranger, 10)
		require.NoError(t, err)
		assert.Zero(t, detail.TransactionEvidenceID)
		assert.Empty(t, detail.ShippingStatus)
		assert.Nil(t, detail.Buyer)
		assert.Zero(t, detail.BuyerID)
		f.evidences.AssertNotCalled(t, "FindByItemID", mock.Anything, mock.Anything)
	})

	t.Run("seller sees the buyer", func(t *testing.T) {
		f := setup()
		f.evidences.On("FindByItemID", mock.Anything, uint64(10)).Return(ev, nil)
		f.shippings.On("FindByTransactionEvidenceID", mock.Anything, uint64(70)).Return(shipping, nil)

		detail, err := f.svc.ItemDetail(context.Background(), seller, 10)
		require.NoError(t, err)
		require.NotNil(t, detail.Buyer)
		assert.Equal(t, uint64(2), detail.BuyerID)
	})
}

func TestQueryServiceTransactions(t *testing.T) {
	seller := &model.User{ID: 1, AccountName: "seller"}
	category := &model.Category{ID: 32, ParentID: 30}

	t.Run("live courier status overrides the stored one", func(t *testing.T) {
		f := newQueryFixture()
		item := model.Item{ID: 10, SellerID: 1, BuyerID: 2, Status: model.ItemStatusTrading, ImageName: "img.jpg", CategoryID: 32, CreatedAt: time.Now()}
		ev := &model.TransactionEvidence{ID: 70, SellerID: 1, BuyerID: 2, Status: model.TransactionEvidenceStatusWaitShipping, ItemID: 10}
		shipping := &model.Shipping{TransactionEvidenceID: 70, Status: model.ShippingStatusWaitPickup, ReserveID: "res-1"}

		f.items.On("ListInvolving", mock.Anything, mock.Anything, uint64(2), repository.Cursor{}, TransactionsPerPage+1).
			Return([]model.Item{item}, nil)
		f.categories.On("FindByID", mock.Anything, 32).Return(category, nil)
		f.users.On("FindByID", mock.Anything, uint64(1)).Return(seller, nil)
		f.users.On("FindByID", mock.Anything, uint64(2)).Return(&model.User{ID: 2, AccountName: "buyer"}, nil)
		f.evidences.On("FindByItemIDTx", mock.Anything, mock.Anything, uint64(10)).Return(ev, nil)
		f.shippings.On("FindByTransactionEvidenceIDTx", mock.Anything, mock.Anything, uint64(70)).Return(shipping, nil)
		f.shipment.On("Status", mock.Anything, "http://shipment.test", "res-1").
			Return(&gateway.ShipmentStatusResult{Status: "shipping"}, nil)

		page, err := f.svc.Transactions(context.Background(), 2, repository.Cursor{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "shipping", page.Items[0].ShippingStatus)
		assert.Equal(t, uint64(2), page.Items[0].BuyerID)
	})

	t.Run("items without a trade skip the courier", func(t *testing.T) {
		f := newQueryFixture()
		item := model.Item{ID: 11, SellerID: 1, Status: model.ItemStatusOnSale, ImageName: "img.jpg", CategoryID: 32, CreatedAt: time.Now()}
		f.items.On("ListInvolving", mock.Anything, mock.Anything, uint64(1), repository.Cursor{}, TransactionsPerPage+1).
			Return([]model.Item{item}, nil)
		f.categories.On("FindByID", mock.Anything, 32).Return(category, nil)
		f.users.On("FindByID", mock.Anything, uint64(1)).Return(seller, nil)
		f.evidences.On("FindByItemIDTx", mock.Anything, mock.Anything, uint64(11)).Return(nil, gorm.ErrRecordNotFound)

		page, err := f.svc.Transactions(context.Background(), 1, repository.Cursor{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Empty(t, page.Items[0].ShippingStatus)
		f.shipment.AssertNotCalled(t, "Status", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestQueryServiceQRCode(t *testing.T) {
	ev := &model.TransactionEvidence{ID: 70, SellerID: 1, BuyerID: 2}

	t.Run("returns the stored label", func(t *testing.T) {
		f := newQueryFixture()
		f.evidences.On("FindByID", mock.Anything, uint64(70)).Return(ev, nil)
		f.shippings.On("FindByTransactionEvidenceID", mock.Anything, uint64(70)).
			Return(&model.Shipping{TransactionEvidenceID: 70, Status: model.ShippingStatusWaitPickup, ImgBinary: []byte("png-bytes")}, nil)

		img, err := f.svc.QRCode(context.Background(), 1, 70)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), img)
	})

	t.Run("only the seller may fetch it", func(t *testing.T) {
		f := newQueryFixture()
		f.evidences.On("FindByID", mock.Anything, uint64(70)).Return(ev, nil)

		_, err := f.svc.QRCode(context.Background(), 2, 70)
		svcErr := serviceError(t, err)
		assert.Equal(t, http.StatusForbidden, svcErr.Status)
		assert.Equal(t, "権限がありません", svcErr.Message)
	})

	t.Run("unavailable once delivered", func(t *testing.T) {
		f := newQueryFixture()
		f.evidences.On("FindByID", mock.Anything, uint64(70)).Return(ev, nil)
		f.shippings.On("FindByTransactionEvidenceID", mock.Anything, uint64(70)).
			Return(&model.Shipping{TransactionEvidenceID: 70, Status: model.ShippingStatusDone, ImgBinary: []byte("png-bytes")}, nil)

		_, err := f.svc.QRCode(context.Background(), 1, 70)
		svcErr := serviceError(t, err)
		assert.Equal(t, "qrcode not available", svcErr.Message)
	})

	t.Run("empty label is an internal error", func(t *testing.T) {
		f := newQueryFixture()
		f.evidences.On("FindByID", mock.Anything, uint64(70)).Return(ev, nil)
		f.shippings.On("FindByTransactionEvidenceID", mock.Anything, uint64(70)).
			Return(&model.Shipping{TransactionEvidenceID: 70, Status: model.ShippingStatusWaitPickup, ImgBinary: []byte{}}, nil)

		_, err := f.svc.QRCode(context.Background(), 1, 70)
		svcErr := serviceError(t, err)
		assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
	})
}
