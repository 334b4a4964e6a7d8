package ports

import (
	"context"

	"github.com/campus-chat/chat-service/internal/core/domain"
)

// UserRepository defines persistence operations for chat users.
type UserRepository interface {
	// UpsertLogin atomically creates the user identified by u.ID or, when it
	// already exists, sets lastSeen to max(u.LastSeen, stored lastSeen + 1ms)
	// so that concurrent logins never share a value. Non-empty Name, Role and
	// Email on u overwrite the stored values.
	UpsertLogin(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// ListByRole returns users with the given role ordered by name ascending.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	// FindFirstByRole returns the first stored user with the given role.
	FindFirstByRole(ctx context.Context, role domain.Role) (*domain.User, error)
}
