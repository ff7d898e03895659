package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yshino/fleamarket-backend/internal/gateway"
	"github.com/yshino/fleamarket-backend/internal/model"
	"github.com/yshino/fleamarket-backend/internal/repository"
	"gorm.io/gorm"
)

// TradeService drives the buy → ship → ship_done → complete state
// machine. Every transition locks the item row (and, where present, the
// evidence and shipping rows) before trusting any state, calls the
// external service between the lock and the commit, and rolls the whole
// transaction back on any external failure so no partial state is ever
// persisted.
type TradeService interface {
	Buy(ctx context.Context, buyer *model.User, itemID uint64, token string) (uint64, error)
	Ship(ctx context.Context, sellerID, itemID uint64) (*ShipResult, error)
	ShipDone(ctx context.Context, sellerID, itemID uint64) (uint64, error)
	Complete(ctx context.Context, buyerID, itemID uint64) (uint64, error)
}

type ShipResult struct {
	Path      string
	ReserveID string
}

type tradeService struct {
	tm         repository.TxManager
	items      repository.ItemRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	evidences  repository.TransactionEvidenceRepository
	shippings  repository.ShippingRepository
	configs    repository.ConfigRepository
	payment    gateway.PaymentGateway
	shipment   gateway.ShipmentGateway
}

func NewTradeService(
	tm repository.TxManager,
	items repository.ItemRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	evidences repository.TransactionEvidenceRepository,
	shippings repository.ShippingRepository,
	configs repository.ConfigRepository,
	payment gateway.PaymentGateway,
	shipment gateway.ShipmentGateway,
) TradeService {
	return &tradeService{
		tm:         tm,
		items:      items,
		users:      users,
		categories: categories,
		evidences:  evidences,
		shippings:  shippings,
		configs:    configs,
		payment:    payment,
		shipment:   shipment,
	}
}

func (s *tradeService) Buy(ctx context.Context, buyer *model.User, itemID uint64, token string) (uint64, error) {
	var evidenceID uint64
	err := s.tm.Do(ctx, func(tx *gorm.DB) error {
		// Lock order: item, then seller. All flows take locks in the
		// same order to keep concurrent buyers/sellers deadlock free.
		target, err := s.items.FindForUpdate(ctx, tx, itemID)
		if err != nil {
			if isNotFound(err) {
				return NewError(http.StatusNotFound, "item not found")
			}
			return err
		}
		if target.Status != model.ItemStatusOnSale {
			return NewError(http.StatusForbidden, "item is not for sale")
		}
		if target.SellerID == buyer.ID {
			return NewError(http.StatusForbidden, "自分の商品は買えません")
		}

		seller, err := s.users.FindForUpdate(ctx, tx, target.SellerID)
		if err != nil {
			if isNotFound(err) {
				return NewError(http.StatusNotFound, "seller not found")
			}
			return err
		}

		category, err := s.categories.FindByID(ctx, target.CategoryID)
		if err != nil {
			return NewError(http.StatusInternalServerError, "category id error")
		}

		ev := &model.TransactionEvidence{
			SellerID:           target.SellerID,
			BuyerID:            buyer.ID,
			Status:             model.TransactionEvidenceStatusWaitShipping,
			ItemID:             target.ID,
			ItemName:           target.Name,
			ItemPrice:          target.Price,
			ItemDescription:    target.Description,
			ItemCategoryID:     category.ID,
			ItemRootCategoryID: category.ParentID,
		}
		if err := s.evidences.Create(ctx, tx, ev); err != nil {
			return err
		}
		evidenceID = ev.ID

		if err := s.items.UpdateTrading(ctx, tx, target.ID, buyer.ID, time.Now()); err != nil {
			return err
		}

		scr, err := s.shipment.Create(ctx, s.configs.ShipmentServiceURL(ctx), gateway.ShipmentCreateRequest{
			ToAddress:   buyer.Address,
			ToName:      buyer.AccountName,
			FromAddress: seller.Address,
			FromName:    seller.AccountName,
		})
		if err != nil {
			return NewError(http.StatusInternalServerError, "failed to request to shipment service")
		}

		pstr, err := s.payment.Token(ctx, s.configs.PaymentServiceURL(ctx), gateway.PaymentTokenRequest{
			ShopID: gateway.PaymentShopID,
			Token:  token,
			APIKey: gateway.PaymentAPIKey,
			Price:  target.Price,
		})
		if err != nil {
			return NewError(http.StatusInternalServerError, "payment service is failed")
		}
		switch pstr.Status {
		case gateway.PaymentStatusOK:
		case gateway.PaymentStatusInvalid:
			return NewError(http.StatusBadRequest, "カード情報に誤りがあります")
		case gateway.PaymentStatusFail:
			return NewError(http.StatusBadRequest, "カードの残高が足りません")
		default:
			return NewError(http.StatusBadRequest, "想定外のエラー")
		}

		return s.shippings.Create(ctx, tx, &model.Shipping{
			TransactionEvidenceID: ev.ID,
			Status:                model.ShippingStatusInitial,
			ItemName:              target.Name,
			ItemID:                target.ID,
			ReserveID:             scr.ReserveID,
			ReserveTime:           scr.ReserveTime,
			ToAddress:             buyer.Address,
			ToName:                buyer.AccountName,
			FromAddress:           seller.Address,
			FromName:              seller.AccountName,
			ImgBinary:             []byte{},
		})
	})
	if err != nil {
		return 0, err
	}
	return evidenceID, nil
}

func (s *tradeService) Ship(ctx context.Context, sellerID, itemID uint64) (*ShipResult, error) {
	ev, err := s.precheckSeller(ctx, sellerID, itemID, "transaction_evidences not found")
	if err != nil {
		return nil, err
	}

	var result *ShipResult
	err = s.tm.Do(ctx, func(tx *gorm.DB) error {
		shipping, err := s.lockTradingRows(ctx, tx, itemID, ev.ID, model.TransactionEvidenceStatusWaitShipping, "アイテムが取引中ではありません")
		if err != nil {
			return err
		}

		img, err := s.shipment.Request(ctx, s.configs.ShipmentServiceURL(ctx), shipping.ReserveID)
		if err != nil {
			return NewError(http.StatusInternalServerError, "failed to request to shipment service")
		}

		if err := s.shippings.UpdateLabel(ctx, tx, ev.ID, model.ShippingStatusWaitPickup, img, time.Now()); err != nil {
			return err
		}

		result = &ShipResult{
			Path:      fmt.Sprintf("/transactions/%d.png", ev.ID),
			ReserveID: shipping.ReserveID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *tradeService) ShipDone(ctx context.Context, sellerID, itemID uint64) (uint64, error) {
	ev, err := s.precheckSeller(ctx, sellerID, itemID, "transaction_evidence not found")
	if err != nil {
		return 0, err
	}

	err = s.tm.Do(ctx, func(tx *gorm.DB) error {
		shipping, err := s.lockTradingRows(ctx, tx, itemID, ev.ID, model.TransactionEvidenceStatusWaitShipping, "商品が取引中ではありません")
		if err != nil {
			return err
		}

		res, err := s.shipment.Status(ctx, s.configs.ShipmentServiceURL(ctx), shipping.ReserveID)
		if err != nil {
			return NewError(http.StatusInternalServerError, "failed to request to shipment service")
		}
		remote := model.ShippingStatus(res.Status)
		if remote != model.ShippingStatusShipping && remote != model.ShippingStatusDone {
			return NewError(http.StatusForbidden, "shipment service側で配送中か配送完了になっていません")
		}

		if err := s.shippings.UpdateStatus(ctx, tx, ev.ID, remote, time.Now()); err != nil {
			return err
		}
		return s.evidences.UpdateStatus(ctx, tx, ev.ID, model.TransactionEvidenceStatusWaitDone, time.Now())
	})
	if err != nil {
		return 0, err
	}
	return ev.ID, nil
}

func (s *tradeService) Complete(ctx context.Context, buyerID, itemID uint64) (uint64, error) {
	ev, err := s.evidences.FindByItemID(ctx, itemID)
	if err != nil {
		if isNotFound(err) {
			return 0, NewError(http.StatusNotFound, "transaction_evidence not found")
		}
		return 0, err
	}
	if ev.BuyerID != buyerID {
		return 0, NewError(http.StatusForbidden, "権限がありません")
	}

	err = s.tm.Do(ctx, func(tx *gorm.DB) error {
		shipping, err := s.lockTradingRows(ctx, tx, itemID, ev.ID, model.TransactionEvidenceStatusWaitDone, "商品が取引中ではありません")
		if err != nil {
			return err
		}

		res, err := s.shipment.Status(ctx, s.configs.ShipmentServiceURL(ctx), shipping.ReserveID)
		if err != nil {
			return NewError(http.StatusInternalServerError, "failed to request to shipment service")
		}
		if model.ShippingStatus(res.Status) != model.ShippingStatusDone {
			return NewError(http.StatusBadRequest, "shipment service側で配送完了になっていません")
		}

		now := time.Now()
		if err := s.shippings.UpdateStatus(ctx, tx, ev.ID, model.ShippingStatusDone, now); err != nil {
			return err
		}
		if err := s.evidences.UpdateStatus(ctx, tx, ev.ID, model.TransactionEvidenceStatusDone, now); err != nil {
			return err
		}
		return s.items.UpdateSoldOut(ctx, tx, itemID, now)
	})
	if err != nil {
		return 0, err
	}
	return ev.ID, nil
}

// precheckSeller is the lock-free phase: it fails fast on obviously
// wrong requests but never gates a mutation.
func (s *tradeService) precheckSeller(ctx context.Context, sellerID, itemID uint64, notFoundMsg string) (*model.TransactionEvidence, error) {
	ev, err := s.evidences.FindByItemID(ctx, itemID)
	if err != nil {
		if isNotFound(err) {
			return nil, NewError(http.StatusNotFound, notFoundMsg)
		}
		return nil, err
	}
	if ev.SellerID != sellerID {
		return nil, NewError(http.StatusForbidden, "権限がありません")
	}
	return ev, nil
}

// lockTradingRows is the authoritative phase: it re-reads the item, the
// evidence and the shipping row under exclusive locks, in that order,
// and validates the state machine position before any mutation.
func (s *tradeService) lockTradingRows(ctx context.Context, tx *gorm.DB, itemID, evidenceID uint64, wantEvidence model.TransactionEvidenceStatus, notTradingMsg string) (*model.Shipping, error) {
	item, err := s.items.FindForUpdate(ctx, tx, itemID)
	if err != nil {
		if isNotFound(err) {
			return nil, NewError(http.StatusNotFound, "items not found")
		}
		return nil, err
	}
	if item.Status != model.ItemStatusTrading {
		return nil, NewError(http.StatusForbidden, notTradingMsg)
	}

	ev, err := s.evidences.FindByIDForUpdate(ctx, tx, evidenceID)
	if err != nil {
		if isNotFound(err) {
			return nil, NewError(http.StatusNotFound, "transaction_evidences not found")
		}
		return nil, err
	}
	if ev.Status != wantEvidence {
		return nil, NewError(http.StatusForbidden, "準備ができていません")
	}

	shipping, err := s.shippings.FindForUpdate(ctx, tx, evidenceID)
	if err != nil {
		if isNotFound(err) {
			return nil, NewError(http.StatusNotFound, "shippings not found")
		}
		return nil, err
	}
	return shipping, nil
}
