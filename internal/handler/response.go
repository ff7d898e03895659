package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/yshino/fleamarket-backend/internal/service"
)

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// fail maps a service rejection to its status and message; anything
// else is an internal failure.
func fail(c echo.Context, err error) error {
	var se *service.Error
	if errors.As(err, &se) {
		return errorJSON(c, se.Status, se.Message)
	}
	c.Logger().Errorf("internal error: %v", err)
	return errorJSON(c, http.StatusInternalServerError, "db error")
}
