// Package sentinel holds infrastructure-level sentinel errors. Stores return
// these (optionally wrapped) so services can translate them into coded domain
// errors at the boundary.
//
// These represent factual states about resources, not validation failures:
//   - ErrNotFound: entity does not exist in the store
//   - ErrConflict: unique constraint violated (e.g. email already registered)
//   - ErrExpired: token or authorization code past its deadline
//   - ErrAlreadyUsed: one-time resource (authorization code) already consumed
//   - ErrRevoked: token has been revoked by a sign-out
//
// For validation errors use pkg/domain-errors directly.
package sentinel

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrAlreadyUsed = errors.New("already used")
	ErrRevoked     = errors.New("revoked")
)
