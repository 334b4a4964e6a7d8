package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Mongo.Database != "campus_chat" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Redis.Enabled || cfg.Redis.DedupTTL != 10*time.Minute {
		t.Errorf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.Websocket.ReadLimit != 8192 || cfg.Websocket.SendBuffer != 64 {
		t.Errorf("unexpected websocket defaults: %+v", cfg.Websocket)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":            "production",
		"JWT_SECRET":     "s3cret",
		"REDIS_ENABLED":  "false",
		"CORS_ORIGINS":   "https://a.example,https://b.example",
		"WS_PONG_WAIT":   "20s",
		"WS_PING_PERIOD": "15s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IsDevelopment() || cfg.JWTSecret != "s3cret" || cfg.Redis.Enabled {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
	if cfg.Websocket.PongWait != 20*time.Second {
		t.Errorf("unexpected pong wait %s", cfg.Websocket.PongWait)
	}
}

func TestLoadWith_RejectsPingSlowerThanPong(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"WS_PONG_WAIT":   "10s",
		"WS_PING_PERIOD": "30s",
	}))
	if err == nil {
		t.Fatal("expected error")
	}
}
