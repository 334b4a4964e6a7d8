package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campus-chat/chat-service/internal/core/domain"
	"github.com/campus-chat/chat-service/internal/core/ports"
)

// UserService implements the user directory: login upsert and lookups.
type UserService struct {
	repo   ports.UserRepository
	tokens *TokenIssuer
	log    zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, tokens *TokenIssuer, log zerolog.Logger) *UserService {
	if tokens == nil {
		tokens = NewTokenIssuer("", 0)
	}
	return &UserService{repo: repo, tokens: tokens, log: log, now: time.Now}
}

// Login creates the user on first sight and refreshes lastSeen otherwise.
// Repeated logins with the same id never create a second record. Name and
// role are only required when the user does not exist yet.
func (s *UserService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	id := strings.TrimSpace(in.UserID)
	if id == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}

	var role domain.Role
	if strings.TrimSpace(in.Role) != "" {
		r, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		role = r
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("login: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	if existing == nil {
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
		}
		if role == "" {
			return nil, fmt.Errorf("%w: userType is required", domain.ErrValidation)
		}
	} else if role != "" && role != existing.Role {
		s.log.Warn().
			Str("user_id", id).
			Str("stored_role", string(existing.Role)).
			Str("login_role", string(role)).
			Msg("role changed on login")
	}

	// The repository keeps lastSeen strictly increasing per user, so two
	// logins in the same millisecond still get distinct values.
	now := s.now().UTC().Truncate(time.Millisecond)
	user, err := s.repo.UpsertLogin(ctx, &domain.User{
		ID:        id,
		Name:      name,
		Role:      role,
		Email:     strings.TrimSpace(in.Email),
		LastSeen:  now,
		CreatedAt: now,
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", id).Msg("login upsert failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Bool("created", existing == nil).Msg("user logged in")
	return &ports.LoginResult{User: user, Token: token}, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}
	return s.repo.FindByID(ctx, id)
}

// ListByRole returns every user with the given role ordered by name.
func (s *UserService) ListByRole(ctx context.Context, role string) ([]*domain.User, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	users, err := s.repo.ListByRole(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetSoleShopkeeper returns the shopkeeper. The system assumes exactly one;
// when several records exist the first stored one is returned.
func (s *UserService) GetSoleShopkeeper(ctx context.Context) (*domain.User, error) {
	return s.repo.FindFirstByRole(ctx, domain.RoleShopkeeper)
}
