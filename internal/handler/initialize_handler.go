package handler

import (
	"net/http"
	"os/exec"

	"github.com/labstack/echo/v4"
	"github.com/yshino/fleamarket-backend/internal/model"
	"github.com/yshino/fleamarket-backend/internal/repository"
)

type InitializeHandler struct {
	configs    repository.ConfigRepository
	initScript string
}

func NewInitializeHandler(configs repository.ConfigRepository, initScript string) *InitializeHandler {
	return &InitializeHandler{configs: configs, initScript: initScript}
}

type initializeRequest struct {
	PaymentServiceURL  string `json:"payment_service_url"`
	ShipmentServiceURL string `json:"shipment_service_url"`
}

// Initialize resets the dataset via the operator-provided script and
// records the external service base URLs for this run.
func (h *InitializeHandler) Initialize(c echo.Context) error {
	var req initializeRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "json decode error")
	}

	if h.initScript != "" {
		cmd := exec.CommandContext(c.Request().Context(), h.initScript)
		if out, err := cmd.CombinedOutput(); err != nil {
			c.Logger().Errorf("init script failed: %v: %s", err, out)
			return errorJSON(c, http.StatusInternalServerError, "exec init.sh error")
		}
	}

	ctx := c.Request().Context()
	if err := h.configs.Upsert(ctx, model.ConfigPaymentServiceURL, req.PaymentServiceURL); err != nil {
		return fail(c, err)
	}
	if err := h.configs.Upsert(ctx, model.ConfigShipmentServiceURL, req.ShipmentServiceURL); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"campaign": 0,
		"language": "go",
	})
}
