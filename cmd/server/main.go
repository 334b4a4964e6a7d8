package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-chat/chat-service/internal/api"
	"github.com/campus-chat/chat-service/internal/core/service"
	"github.com/campus-chat/chat-service/internal/infrastructure/db/mongo"
	"github.com/campus-chat/chat-service/internal/infrastructure/db/redis"
	"github.com/campus-chat/chat-service/internal/infrastructure/http/handlers"
	"github.com/campus-chat/chat-service/internal/pkg/config"
	"github.com/campus-chat/chat-service/internal/realtime"
	"github.com/campus-chat/chat-service/pkg/logger"
)

const (
	serviceName     = "chat-service"
	shutdownTimeout = 10 * time.Second
)

// @title                       Campus Chat API
// @version                     1.0
// @description                 Student and shopkeeper direct messaging. Realtime events are served on /ws.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Bearer token returned by POST /users/login.
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
		AppName:  serviceName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	rdb := redis.ConnectOptional(ctx, redis.Config{
		Enabled:  cfg.Redis.Enabled,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger.Component("redis"))

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if !tokens.Enabled() {
		log.Warn().Msg("JWT_SECRET not set, running without session tokens")
	}
	users := service.NewUserService(mongo.NewUserRepository(db), tokens, logger.Component("users"))
	messages := service.NewMessageService(mongo.NewMessageRepository(db), logger.Component("messages"))

	rtLog := logger.Component("realtime")
	registry := realtime.NewRegistry()
	presence := realtime.NewPresence(registry, rtLog)
	opts := []realtime.Option{realtime.WithTokens(tokens)}
	if rdb != nil {
		opts = append(opts, realtime.WithDeduper(redis.NewDedupChecker(rdb, cfg.Redis.DedupTTL)))
	}
	hub := realtime.NewHub(registry, presence, messages, rtLog, opts...)
	transport := realtime.NewTransport(hub, realtime.TransportConfig{
		ReadLimit:      cfg.Websocket.ReadLimit,
		PongWait:       cfg.Websocket.PongWait,
		PingPeriod:     cfg.Websocket.PingPeriod,
		WriteWait:      cfg.Websocket.WriteWait,
		SendBuffer:     cfg.Websocket.SendBuffer,
		AllowedOrigins: cfg.CORSOrigins,
	}, rtLog)

	router := api.NewRouter(api.Deps{
		Users:       users,
		Messages:    messages,
		Tokens:      tokens,
		Presence:    hub.Presence(),
		Realtime:    transport,
		Readiness:   handlers.NewHealthDependenciesHandler(db, rdb),
		CORSOrigins: cfg.CORSOrigins,
		Log:         logger.Component("http"),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("http listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}

	// Hijacked websocket connections are not covered by Shutdown.
	hub.Shutdown()
	done := make(chan struct{})
	go func() {
		transport.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn().Msg("websocket connections still open at shutdown deadline")
	}

	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect error")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	}
	log.Info().Msg("stopped")
}
