package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string        `env:"PORT,         default=8080"`
	Env         string        `env:"ENV,          default=development"`
	LogLevel    string        `env:"LOG_LEVEL,    default=info"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=24h"`
	CORSOrigins []string      `env:"CORS_ORIGINS, default=*"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Websocket WebsocketConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=campus_chat"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED,  default=true"`
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	DedupTTL time.Duration `env:"DEDUP_TTL,      default=10m"`
}

type WebsocketConfig struct {
	ReadLimit  int64         `env:"WS_READ_LIMIT,  default=8192"`
	PongWait   time.Duration `env:"WS_PONG_WAIT,   default=60s"`
	PingPeriod time.Duration `env:"WS_PING_PERIOD, default=30s"`
	WriteWait  time.Duration `env:"WS_WRITE_WAIT,  default=10s"`
	SendBuffer int           `env:"WS_SEND_BUFFER, default=64"`
}

// IsDevelopment reports whether the service runs locally; it enables pretty
// console logs.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l. Tests pass an envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.Websocket.PingPeriod >= cfg.Websocket.PongWait {
		return nil, fmt.Errorf("WS_PING_PERIOD (%s) must be shorter than WS_PONG_WAIT (%s)", cfg.Websocket.PingPeriod, cfg.Websocket.PongWait)
	}
	return &cfg, nil
}
