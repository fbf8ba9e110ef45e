// Package revocation tracks revoked access-token IDs. Sign-out adds the
// token's JTI here with a TTL matching its remaining lifetime; validation
// consults the list so a signed-out token stops working before it expires.
package revocation

import (
	"context"
	"time"
)

type Store interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
