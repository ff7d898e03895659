package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/yshino/fleamarket-backend/internal/model"
	"github.com/yshino/fleamarket-backend/internal/service"
)

type UserHandler struct {
	svc service.AccountService
}

func NewUserHandler(svc service.AccountService) *UserHandler {
	return &UserHandler{svc: svc}
}

type registerRequest struct {
	AccountName string `json:"account_name"`
	Address     string `json:"address"`
	Password    string `json:"password"`
}

type loginRequest struct {
	AccountName string `json:"account_name"`
	Password    string `json:"password"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "all parameters are required")
	}

	user, err := h.svc.Register(c.Request().Context(), req.AccountName, req.Address, req.Password)
	if err != nil {
		return fail(c, err)
	}

	if err := startSession(c, user); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "session error")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "all parameters are required")
	}

	user, err := h.svc.Login(c.Request().Context(), req.AccountName, req.Password)
	if err != nil {
		return fail(c, err)
	}

	if err := startSession(c, user); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "session error")
	}
	return c.JSON(http.StatusOK, user)
}

func startSession(c echo.Context, user *model.User) error {
	token, err := secureRandomHex(128)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:  "user_id",
		Value: formatUint(user.ID),
		Path:  "/",
	})
	c.SetCookie(&http.Cookie{
		Name:  "csrf_token",
		Value: token,
		Path:  "/",
	})
	return nil
}

func secureRandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
