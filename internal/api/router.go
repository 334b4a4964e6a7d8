package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/campus-chat/chat-service/docs"
	"github.com/campus-chat/chat-service/internal/api/handler"
	"github.com/campus-chat/chat-service/internal/api/middleware"
	"github.com/campus-chat/chat-service/internal/core/domain"
	"github.com/campus-chat/chat-service/internal/core/ports"
	"github.com/campus-chat/chat-service/internal/infrastructure/http/handlers"
	"github.com/campus-chat/chat-service/internal/pkg/validation"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Users       ports.UserService
	Messages    ports.MessageService
	Tokens      ports.TokenVerifier
	Presence    handler.PresenceReader
	Realtime    http.Handler
	Readiness   *handlers.HealthDependenciesHandler
	CORSOrigins []string
	Log         zerolog.Logger
	// Metrics receives the HTTP collectors and backs /metrics. Nil means the
	// prometheus default registry, where the chat collectors live.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: corsOrigins(d.CORSOrigins)}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsConfig(d.Metrics)))

	// --- Operations (no auth required) ---
	e.GET("/metrics", metricsHandler(d.Metrics))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if d.Readiness != nil {
		e.GET("/health/ready", d.Readiness.Readiness)
	}

	// --- Realtime channel ---
	if d.Realtime != nil {
		e.GET("/ws", echo.WrapHandler(d.Realtime))
	}
	if d.Presence != nil {
		e.GET("/presence", handler.NewPresenceHandler(d.Presence).List)
	}

	// --- Users ---
	users := handler.NewUserHandler(d.Users)
	e.POST("/users/login", users.Login)
	e.GET("/users/type/:role", users.ListByRole)
	e.GET("/users/:id", users.Get)

	// --- Messages (bearer auth when a signing secret is configured) ---
	msgs := handler.NewMessageHandler(d.Messages)
	mg := e.Group("/messages")
	shopOnly := []echo.MiddlewareFunc{}
	if d.Tokens != nil && d.Tokens.Enabled() {
		mg.Use(middleware.Auth(d.Tokens))
		shopOnly = append(shopOnly, middleware.RBAC(domain.RoleShopkeeper))
	}
	mg.GET("/between/:a/:b", msgs.Between)
	mg.GET("/conversation", msgs.Conversation)
	mg.GET("/unread/:userId", msgs.Unread)
	mg.PUT("/read", msgs.MarkRead)
	mg.POST("/markRead", msgs.MarkRead)
	mg.GET("/shopkeeper/:id", msgs.Summaries, shopOnly...)
	mg.GET("/summaries/:id", msgs.Summaries)

	return e
}

func metricsConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: "chat"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// requestLogger feeds echo's request logger into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
