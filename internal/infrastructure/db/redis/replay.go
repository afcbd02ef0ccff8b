package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayTTL = 24 * time.Hour

// ReplayGuard provides a fast-path idempotency check for payment
// confirmations, keyed by the gateway session reference. It is advisory:
// the durable replay check is the session reference on the payment record,
// so an expired or missing key only costs one extra ledger read.
type ReplayGuard struct {
	client *redis.Client
}

func NewReplayGuard(client *redis.Client) *ReplayGuard {
	return &ReplayGuard{client: client}
}

// Seen reports whether this session reference was already reconciled.
func (g *ReplayGuard) Seen(ctx context.Context, sessionRef string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(sessionRef)).Result()
	if err != nil {
		return false, fmt.Errorf("replay check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this session reference has been reconciled.
func (g *ReplayGuard) Mark(ctx context.Context, sessionRef string) error {
	return g.client.Set(ctx, g.key(sessionRef), "1", replayTTL).Err()
}

func (g *ReplayGuard) key(sessionRef string) string {
	return "payment:session:" + sessionRef
}
