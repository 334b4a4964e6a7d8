package ports

import (
	"context"

	"github.com/campus-chat/chat-service/internal/core/domain"
)

// LoginInput carries the fields posted to /users/login.
type LoginInput struct {
	UserID string
	Name   string
	Role   string
	Email  string
}

// LoginResult is returned by UserService.Login. Token is empty when the
// service runs without a signing secret.
type LoginResult struct {
	User  *domain.User
	Token string
}

// Claims is the identity recovered from a session token.
type Claims struct {
	UserID string
	Role   domain.Role
}

// UserService is the user directory.
type UserService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]*domain.User, error)
	GetSoleShopkeeper(ctx context.Context) (*domain.User, error)
}

// TokenVerifier validates session tokens issued at login.
type TokenVerifier interface {
	// Enabled reports whether tokens are issued and must be checked.
	Enabled() bool
	Verify(token string) (*Claims, error)
}
