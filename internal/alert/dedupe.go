package alert

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultDedupeTTL bounds how often the same alert can fire.
const DefaultDedupeTTL = time.Hour

// setNXer is the slice of the redis client the deduper needs.
type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Deduper wraps a Notifier and suppresses repeat deliveries of the same alert
// within the TTL. Suppression is keyed on the message content, so retries of
// a flagged application do not page twice. When redis errors, the alert is
// delivered anyway: a duplicate page beats a missed one.
type Deduper struct {
	next   Notifier
	client setNXer
	ttl    time.Duration
	logger *slog.Logger
}

func NewDeduper(next Notifier, client setNXer, ttl time.Duration, logger *slog.Logger) *Deduper {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduper{next: next, client: client, ttl: ttl, logger: logger}
}

func (d *Deduper) Notify(ctx context.Context, recipients []string, message string) error {
	if d.client == nil {
		return d.next.Notify(ctx, recipients, message)
	}

	sum := sha256.Sum256([]byte(message))
	key := "fides:alert:" + hex.EncodeToString(sum[:])

	set, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.WarnContext(ctx, "alert dedupe check failed, delivering anyway",
			"error", err,
		)
		return d.next.Notify(ctx, recipients, message)
	}
	if !set {
		alertsTotal.WithLabelValues("suppressed").Inc()
		return nil
	}
	return d.next.Notify(ctx, recipients, message)
}
