package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/soleracask/solera-cask-sub000/internal/models"
)

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT id::text, username, password_hash, role, last_login, created_at
		FROM users WHERE username = $1`
	var u models.User
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.LastLogin,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, username string) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login = now() WHERE username = $1`, username); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// SeedAdmin inserts the bootstrap admin account when no user with that name
// exists yet. The hash is produced by the caller.
func (s *Store) SeedAdmin(ctx context.Context, username, passwordHash string) error {
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO users (username, password_hash, role)
		 VALUES ($1, $2, 'admin')
		 ON CONFLICT (username) DO NOTHING`,
		username, passwordHash); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}
