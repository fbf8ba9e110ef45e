// Package user stores account records. The memory implementation backs tests
// and the default dev server; the postgres implementation is selected when
// DATABASE_URL is configured.
package user

import (
	"context"

	"educonnect/internal/devbackend"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested record does not exist
// - Return sentinel.ErrConflict when a unique constraint would be violated
// - Return wrapped errors with context for infrastructure failures
type Store interface {
	Create(ctx context.Context, u *devbackend.User) error
	FindByEmail(ctx context.Context, email string) (*devbackend.User, error)
	FindByID(ctx context.Context, id string) (*devbackend.User, error)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
