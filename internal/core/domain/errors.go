package domain

import "errors"

var (
	ErrValidation             = errors.New("validation failed")
	ErrInvalidRole            = errors.New("userType must be student or shopkeeper")
	ErrUserNotFound           = errors.New("user not found")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("access forbidden")
	ErrInvalidState           = errors.New("event not allowed in current session state")
	ErrDuplicateMessage       = errors.New("duplicate message")
)
