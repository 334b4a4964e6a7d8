package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campus-chat/chat-service/internal/core/domain"
	"github.com/campus-chat/chat-service/internal/core/ports"
	"github.com/campus-chat/chat-service/internal/pkg/validation"
	"github.com/campus-chat/chat-service/internal/realtime"
)

type stubUserService struct {
	loginFn      func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
	getFn        func(ctx context.Context, id string) (*domain.User, error)
	listFn       func(ctx context.Context, role string) ([]*domain.User, error)
	shopkeeperFn func(ctx context.Context) (*domain.User, error)
}

func (s *stubUserService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) ListByRole(ctx context.Context, role string) ([]*domain.User, error) {
	return s.listFn(ctx, role)
}

func (s *stubUserService) GetSoleShopkeeper(ctx context.Context) (*domain.User, error) {
	return s.shopkeeperFn(ctx)
}

type stubMessageService struct {
	appendFn       func(ctx context.Context, in ports.SendMessageInput) (*domain.Message, error)
	conversationFn func(ctx context.Context, a, b string) ([]*domain.Message, error)
	markReadFn     func(ctx context.Context, sender, recipient string) (int64, error)
	unreadFn       func(ctx context.Context, recipient string) (map[string]int64, error)
	summariesFn    func(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
}

func (s *stubMessageService) Append(ctx context.Context, in ports.SendMessageInput) (*domain.Message, error) {
	return s.appendFn(ctx, in)
}

func (s *stubMessageService) Conversation(ctx context.Context, a, b string) ([]*domain.Message, error) {
	return s.conversationFn(ctx, a, b)
}

func (s *stubMessageService) MarkRead(ctx context.Context, sender, recipient string) (int64, error) {
	return s.markReadFn(ctx, sender, recipient)
}

func (s *stubMessageService) UnreadCounts(ctx context.Context, recipient string) (map[string]int64, error) {
	return s.unreadFn(ctx, recipient)
}

func (s *stubMessageService) Summaries(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	return s.summariesFn(ctx, userID)
}

type stubPresence struct {
	online     []realtime.Entry
	shopkeeper bool
}

func (p stubPresence) Online() []realtime.Entry { return p.online }
func (p stubPresence) ShopkeeperOnline() bool   { return p.shopkeeper }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	return e
}

// newContext builds a context for method/target with an optional JSON body.
func newContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req = httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
