package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupTTL = 10 * time.Minute

// DedupChecker remembers client-generated message ids so a client resending
// the same sendDirectMessage after a timeout does not store it twice.
// Key format: dedup:msg:<sender>:<client_message_id>
type DedupChecker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client, ttl time.Duration) *DedupChecker {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &DedupChecker{client: client, ttl: ttl}
}

// Claim atomically records the id and reports whether this is its first use.
func (d *DedupChecker) Claim(ctx context.Context, sender, clientMessageID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(sender, clientMessageID), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

// Release forgets a claimed id, letting the client retry it after a failed
// delivery.
func (d *DedupChecker) Release(ctx context.Context, sender, clientMessageID string) error {
	if err := d.client.Del(ctx, d.key(sender, clientMessageID)).Err(); err != nil {
		return fmt.Errorf("dedup release: %w", err)
	}
	return nil
}

func (d *DedupChecker) key(sender, clientMessageID string) string {
	return fmt.Sprintf("dedup:msg:%s:%s", sender, clientMessageID)
}
