package service

import (
	"errors"

	"gorm.io/gorm"
)

// Error is a user-visible rejection: a stable HTTP status plus a short
// message. Anything else escaping a service is treated as an internal
// failure by the handlers.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
