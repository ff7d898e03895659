package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	appmw "github.com/yshino/fleamarket-backend/internal/middleware"
	"github.com/yshino/fleamarket-backend/internal/service"
)

type SettingsHandler struct {
	query   service.QueryService
	session *appmw.Session
}

func NewSettingsHandler(query service.QueryService, session *appmw.Session) *SettingsHandler {
	return &SettingsHandler{query: query, session: session}
}

// Settings is login-optional: it echoes the csrf token and the current
// user when a session exists.
func (h *SettingsHandler) Settings(c echo.Context) error {
	csrfToken := ""
	if cookie, err := c.Cookie("csrf_token"); err == nil {
		csrfToken = cookie.Value
	}

	view, err := h.query.Settings(c.Request().Context(), h.session.Lookup(c), csrfToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
