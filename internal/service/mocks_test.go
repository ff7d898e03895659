package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/yshino/fleamarket-backend/internal/gateway"
	"github.com/yshino/fleamarket-backend/internal/model"
	"github.com/yshino/fleamarket-backend/internal/repository"
	"gorm.io/gorm"
)

// fakeTxManager runs the callback directly with a nil handle. The
// repository mocks below ignore the handle, so service logic can be
// exercised without a database.
type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type mockUserRepository struct{ mock.Mock }

func (m *mockUserRepository) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) FindByAccountName(ctx context.Context, accountName string) (*model.User, error) {
	args := m.Called(ctx, accountName)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, id uint64) (*model.User, error) {
	args := m.Called(ctx, tx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) UpdateSellStats(ctx context.Context, tx *gorm.DB, id uint64, numSellItems int, lastBump time.Time) error {
	return m.Called(ctx, tx, id, numSellItems, lastBump).Error(0)
}

func (m *mockUserRepository) UpdateLastBump(ctx context.Context, tx *gorm.DB, id uint64, at time.Time) error {
	return m.Called(ctx, tx, id, at).Error(0)
}

type mockItemRepository struct{ mock.Mock }

func (m *mockItemRepository) FindByID(ctx context.Context, id uint64) (*model.Item, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(*model.Item)
	return it, args.Error(1)
}

func (m *mockItemRepository) Create(ctx context.Context, tx *gorm.DB, item *model.Item) error {
	return m.Called(ctx, tx, item).Error(0)
}

func (m *mockItemRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, id uint64) (*model.Item, error) {
	args := m.Called(ctx, tx, id)
	it, _ := args.Get(0).(*model.Item)
	return it, args.Error(1)
}

func (m *mockItemRepository) UpdateTrading(ctx context.Context, tx *gorm.DB, id, buyerID uint64, at time.Time) error {
	return m.Called(ctx, tx, id, buyerID, at).Error(0)
}

func (m *mockItemRepository) UpdateSoldOut(ctx context.Context, tx *gorm.DB, id uint64, at time.Time) error {
	return m.Called(ctx, tx, id, at).Error(0)
}

func (m *mockItemRepository) UpdatePrice(ctx context.Context, tx *gorm.DB, id uint64, price int, at time.Time) error {
	return m.Called(ctx, tx, id, price, at).Error(0)
}

func (m *mockItemRepository) ResetCreatedAt(ctx context.Context, tx *gorm.DB, id uint64, at time.Time) error {
	return m.Called(ctx, tx, id, at).Error(0)
}

func (m *mockItemRepository) FindByIDTx(ctx context.Context, tx *gorm.DB, id uint64) (*model.Item, error) {
	args := m.Called(ctx, tx, id)
	it, _ := args.Get(0).(*model.Item)
	return it, args.Error(1)
}

func (m *mockItemRepository) ListNewest(ctx context.Context, statuses []model.ItemStatus, cursor repository.Cursor, limit int) ([]model.Item, error) {
	args := m.Called(ctx, statuses, cursor, limit)
	items, _ := args.Get(0).([]model.Item)
	return items, args.Error(1)
}

func (m *mockItemRepository) ListNewestByCategories(ctx context.Context, statuses []model.ItemStatus, categoryIDs []int, cursor repository.Cursor, limit int) ([]model.Item, error) {
	args := m.Called(ctx, statuses, categoryIDs, cursor, limit)
	items, _ := args.Get(0).([]model.Item)
	return items, args.Error(1)
}

func (m *mockItemRepository) ListBySeller(ctx context.Context, sellerID uint64, statuses []model.ItemStatus, cursor repository.Cursor, limit int) ([]model.Item, error) {
	args := m.Called(ctx, sellerID, statuses, cursor, limit)
	items, _ := args.Get(0).([]model.Item)
	return items, args.Error(1)
}

func (m *mockItemRepository) ListInvolving(ctx context.Context, tx *gorm.DB, userID uint64, cursor repository.Cursor, limit int) ([]model.Item, error) {
	args := m.Called(ctx, tx, userID, cursor, limit)
	items, _ := args.Get(0).([]model.Item)
	return items, args.Error(1)
}

type mockCategoryRepository struct{ mock.Mock }

func (m *mockCategoryRepository) FindByID(ctx context.Context, id int) (*model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Category)
	return c, args.Error(1)
}

func (m *mockCategoryRepository) ListAll(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]model.Category)
	return cs, args.Error(1)
}

func (m *mockCategoryRepository) ListChildIDs(ctx context.Context, rootID int) ([]int, error) {
	args := m.Called(ctx, rootID)
	ids, _ := args.Get(0).([]int)
	return ids, args.Error(1)
}

type mockTransactionEvidenceRepository struct{ mock.Mock }

func (m *mockTransactionEvidenceRepository) Create(ctx context.Context, tx *gorm.DB, ev *model.TransactionEvidence) error {
	return m.Called(ctx, tx, ev).Error(0)
}

func (m *mockTransactionEvidenceRepository) FindByID(ctx context.Context, id uint64) (*model.TransactionEvidence, error) {
	args := m.Called(ctx, id)
	ev, _ := args.Get(0).(*model.TransactionEvidence)
	return ev, args.Error(1)
}

func (m *mockTransactionEvidenceRepository) FindByItemID(ctx context.Context, itemID uint64) (*model.TransactionEvidence, error) {
	args := m.Called(ctx, itemID)
	ev, _ := args.Get(0).(*model.TransactionEvidence)
	return ev, args.Error(1)
}

func (m *mockTransactionEvidenceRepository) FindByItemIDTx(ctx context.Context, tx *gorm.DB, itemID uint64) (*model.TransactionEvidence, error) {
	args := m.Called(ctx, tx, itemID)
	ev, _ := args.Get(0).(*model.TransactionEvidence)
	return ev, args.Error(1)
}

func (m *mockTransactionEvidenceRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint64) (*model.TransactionEvidence, error) {
	args := m.Called(ctx, tx, id)
	ev, _ := args.Get(0).(*model.TransactionEvidence)
	return ev, args.Error(1)
}

func (m *mockTransactionEvidenceRepository) FindByItemIDForUpdate(ctx context.Context, tx *gorm.DB, itemID uint64) (*model.TransactionEvidence, error) {
	args := m.Called(ctx, tx, itemID)
	ev, _ := args.Get(0).(*model.TransactionEvidence)
	return ev, args.Error(1)
}

func (m *mockTransactionEvidenceRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint64, status model.TransactionEvidenceStatus, at time.Time) error {
	return m.Called(ctx, tx, id, status, at).Error(0)
}

type mockShippingRepository struct{ mock.Mock }

func (m *mockShippingRepository) Create(ctx context.Context, tx *gorm.DB, s *model.Shipping) error {
	return m.Called(ctx, tx, s).Error(0)
}

func (m *mockShippingRepository) FindByTransactionEvidenceID(ctx context.Context, evidenceID uint64) (*model.Shipping, error) {
	args := m.Called(ctx, evidenceID)
	sh, _ := args.Get(0).(*model.Shipping)
	return sh, args.Error(1)
}

func (m *mockShippingRepository) FindByTransactionEvidenceIDTx(ctx context.Context, tx *gorm.DB, evidenceID uint64) (*model.Shipping, error) {
	args := m.Called(ctx, tx, evidenceID)
	sh, _ := args.Get(0).(*model.Shipping)
	return sh, args.Error(1)
}

func (m *mockShippingRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, evidenceID uint64) (*model.Shipping, error) {
	args := m.Called(ctx, tx, evidenceID)
	sh, _ := args.Get(0).(*model.Shipping)
	return sh, args.Error(1)
}

func (m *mockShippingRepository) UpdateLabel(ctx context.Context, tx *gorm.DB, evidenceID uint64, status model.ShippingStatus, img []byte, at time.Time) error {
	return m.Called(ctx, tx, evidenceID, status, img, at).Error(0)
}

func (m *mockShippingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, evidenceID uint64, status model.ShippingStatus, at time.Time) error {
	return m.Called(ctx, tx, evidenceID, status, at).Error(0)
}

type mockConfigRepository struct{ mock.Mock }

func (m *mockConfigRepository) Upsert(ctx context.Context, name, val string) error {
	return m.Called(ctx, name, val).Error(0)
}

func (m *mockConfigRepository) PaymentServiceURL(ctx context.Context) string {
	return m.Called(ctx).String(0)
}

func (m *mockConfigRepository) ShipmentServiceURL(ctx context.Context) string {
	return m.Called(ctx).String(0)
}

type mockPaymentGateway struct{ mock.Mock }

func (m *mockPaymentGateway) Token(ctx context.Context, baseURL string, req gateway.PaymentTokenRequest) (*gateway.PaymentTokenResult, error) {
	args := m.Called(ctx, baseURL, req)
	res, _ := args.Get(0).(*gateway.PaymentTokenResult)
	return res, args.Error(1)
}

type mockShipmentGateway struct{ mock.Mock }

func (m *mockShipmentGateway) Create(ctx context.Context, baseURL string, req gateway.ShipmentCreateRequest) (*gateway.ShipmentCreateResult, error) {
	args := m.Called(ctx, baseURL, req)
	res, _ := args.Get(0).(*gateway.ShipmentCreateResult)
	return res, args.Error(1)
}

func (m *mockShipmentGateway) Request(ctx context.Context, baseURL string, reserveID string) ([]byte, error) {
	args := m.Called(ctx, baseURL, reserveID)
	img, _ := args.Get(0).([]byte)
	return img, args.Error(1)
}

func (m *mockShipmentGateway) Status(ctx context.Context, baseURL string, reserveID string) (*gateway.ShipmentStatusResult, error) {
	args := m.Called(ctx, baseURL, reserveID)
	res, _ := args.Get(0).(*gateway.ShipmentStatusResult)
	return res, args.Error(1)
}

type mockImageStore struct{ mock.Mock }

func (m *mockImageStore) Save(ctx context.Context, name string, data []byte) error {
	return m.Called(ctx, name, data).Error(0)
}

func (m *mockImageStore) URL(name string) string {
	return "/upload/" + name
}
