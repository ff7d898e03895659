package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/yshino/fleamarket-backend/internal/model"
	"github.com/yshino/fleamarket-backend/internal/repository"
)

const userContextKey = "login_user"

type Session struct {
	users repository.UserRepository
}

func NewSession(users repository.UserRepository) *Session {
	return &Session{users: users}
}

// RequireLogin resolves the user_id session cookie to a user row and
// stores it on the request context. Authorization runs before any lock
// is taken.
func (m *Session) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := m.Lookup(c)
		if user == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no session"})
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

// Lookup returns the session user, or nil when there is no valid
// session. Used directly by endpoints where login is optional.
func (m *Session) Lookup(c echo.Context) *model.User {
	cookie, err := c.Cookie("user_id")
	if err != nil || cookie.Value == "" {
		return nil
	}
	id, err := strconv.ParseUint(cookie.Value, 10, 64)
	if err != nil {
		return nil
	}
	user, err := m.users.FindByID(c.Request().Context(), id)
	if err != nil {
		return nil
	}
	return user
}

func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

// VerifyCSRF compares a submitted token against the csrf_token cookie.
// The check is independent of any other validation.
func VerifyCSRF(c echo.Context, token string) bool {
	cookie, err := c.Cookie("csrf_token")
	if err != nil {
		return false
	}
	return token != "" && cookie.Value == token
}
