package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"educonnect/internal/devbackend"
	"educonnect/internal/profile"
	"educonnect/pkg/platform/sentinel"
)

// schema creates the users table. The dev server applies it on startup so a
// fresh database needs no external migration step. Statements are separate
// because pgx's extended protocol runs one command per Exec.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL,
    password_hash BYTEA NOT NULL,
    role          TEXT NOT NULL,
    first_name    TEXT NOT NULL DEFAULT '',
    last_name     TEXT NOT NULL DEFAULT '',
    nationality   TEXT NOT NULL DEFAULT '',
    study_level   TEXT NOT NULL DEFAULT '',
    institution   TEXT NOT NULL DEFAULT '',
    country       TEXT NOT NULL DEFAULT '',
    website       TEXT NOT NULL DEFAULT '',
    agency_name   TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,
}

// PostgresStore persists users in PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply users schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, u *devbackend.User) error {
	const q = `
INSERT INTO users (id, email, password_hash, role, first_name, last_name,
                   nationality, study_level, institution, country, website, agency_name, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := s.pool.Exec(ctx, q,
		u.ID, normalizeEmail(u.Email), u.PasswordHash, string(u.Role), u.FirstName, u.LastName,
		u.Nationality, u.StudyLevel, u.Institution, u.Country, u.Website, u.AgencyName, u.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s already registered: %w", u.Email, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*devbackend.User, error) {
	const q = selectUser + ` WHERE lower(email) = $1`
	return s.scanOne(s.pool.QueryRow(ctx, q, normalizeEmail(email)))
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*devbackend.User, error) {
	const q = selectUser + ` WHERE id = $1`
	return s.scanOne(s.pool.QueryRow(ctx, q, id))
}

const selectUser = `
SELECT id, email, password_hash, role, first_name, last_name,
       nationality, study_level, institution, country, website, agency_name, created_at
FROM users`

func (s *PostgresStore) scanOne(row pgx.Row) (*devbackend.User, error) {
	var u devbackend.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.FirstName, &u.LastName,
		&u.Nationality, &u.StudyLevel, &u.Institution, &u.Country, &u.Website, &u.AgencyName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	// Stored roles come from our own writes, so no parse round-trip here.
	u.Role = profile.Role(role)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
