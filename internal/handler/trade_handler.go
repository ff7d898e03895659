package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	appmw "github.com/yshino/fleamarket-backend/internal/middleware"
	"github.com/yshino/fleamarket-backend/internal/service"
)

type TradeHandler struct {
	trade service.TradeService
	query service.QueryService
}

func NewTradeHandler(trade service.TradeService, query service.QueryService) *TradeHandler {
	return &TradeHandler{trade: trade, query: query}
}

type buyRequest struct {
	CSRFToken string `json:"csrf_token" form:"csrf_token"`
	ItemID    uint64 `json:"item_id" form:"item_id"`
	Token     string `json:"token" form:"token"`
}

type tradeRequest struct {
	CSRFToken string `json:"csrf_token" form:"csrf_token"`
	ItemID    uint64 `json:"item_id" form:"item_id"`
}

type evidenceResponse struct {
	TransactionEvidenceID uint64 `json:"transaction_evidence_id"`
}

func (h *TradeHandler) Buy(c echo.Context) error {
	var req buyRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "json decode error")
	}
	if !appmw.VerifyCSRF(c, req.CSRFToken) {
		return errorJSON(c, http.StatusUnprocessableEntity, "csrf token error")
	}

	buyer := appmw.CurrentUser(c)
	evidenceID, err := h.trade.Buy(c.Request().Context(), buyer, req.ItemID, req.Token)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, evidenceResponse{TransactionEvidenceID: evidenceID})
}

func (h *TradeHandler) Ship(c echo.Context) error {
	var req tradeRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "json decode error")
	}
	if !appmw.VerifyCSRF(c, req.CSRFToken) {
		return errorJSON(c, http.StatusUnprocessableEntity, "csrf token error")
	}

	seller := appmw.CurrentUser(c)
	result, err := h.trade.Ship(c.Request().Context(), seller.ID, req.ItemID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"path":       result.Path,
		"reserve_id": result.ReserveID,
	})
}

func (h *TradeHandler) ShipDone(c echo.Context) error {
	var req tradeRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "json decode error")
	}
	if !appmw.VerifyCSRF(c, req.CSRFToken) {
		return errorJSON(c, http.StatusUnprocessableEntity, "csrf token error")
	}

	seller := appmw.CurrentUser(c)
	evidenceID, err := h.trade.ShipDone(c.Request().Context(), seller.ID, req.ItemID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, evidenceResponse{TransactionEvidenceID: evidenceID})
}

func (h *TradeHandler) Complete(c echo.Context) error {
	var req tradeRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "json decode error")
	}
	if !appmw.VerifyCSRF(c, req.CSRFToken) {
		return errorJSON(c, http.StatusUnprocessableEntity, "csrf token error")
	}

	buyer := appmw.CurrentUser(c)
	evidenceID, err := h.trade.Complete(c.Request().Context(), buyer.ID, req.ItemID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, evidenceResponse{TransactionEvidenceID: evidenceID})
}

// QRCode serves the pickup label for /transactions/:id.png, gated to
// the seller while the shipment can still be picked up.
func (h *TradeHandler) QRCode(c echo.Context) error {
	evidenceID, err := strconv.ParseUint(trimmedParam(c, "transaction_evidence_id", ".png"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "incorrect transaction_evidence id")
	}

	seller := appmw.CurrentUser(c)
	img, err := h.query.QRCode(c.Request().Context(), seller.ID, evidenceID)
	if err != nil {
		return fail(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", img)
}
