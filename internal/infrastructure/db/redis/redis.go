package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings of the Redis instance backing message dedup.
type Config struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

func (c Config) options() *redis.Options {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
}

// Connect opens a client and pings it once.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := cfg.options()
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// ConnectOptional returns nil when Redis is disabled or unreachable. Dedup is
// the only consumer, and the chat keeps working without it.
func ConnectOptional(ctx context.Context, cfg Config, log zerolog.Logger) *redis.Client {
	if !cfg.Enabled {
		log.Info().Msg("redis disabled, message dedup off")
		return nil
	}
	client, err := Connect(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, message dedup off")
		return nil
	}
	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("redis connected")
	return client
}
