package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	clock time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.clock = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.store.now = func() time.Time { return s.clock }
}

func (s *MemoryStoreSuite) TestRevokeAndCheck() {
	ctx := context.Background()
	s.Require().NoError(s.store.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := s.store.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.store.IsRevoked(ctx, "jti-2")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *MemoryStoreSuite) TestExpiryLapses() {
	ctx := context.Background()
	s.Require().NoError(s.store.Revoke(ctx, "jti-1", time.Minute))

	s.clock = s.clock.Add(2 * time.Minute)

	revoked, err := s.store.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *MemoryStoreSuite) TestEmptyJTIIsNoop() {
	ctx := context.Background()
	s.Require().NoError(s.store.Revoke(ctx, "", time.Hour))

	revoked, err := s.store.IsRevoked(ctx, "")
	s.Require().NoError(err)
	s.False(revoked)
}
