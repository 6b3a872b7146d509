// internal/database/user.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whatcard/server/internal/models"
)

// UserStore holds the device-token records the push pipeline resolves
// recipients against.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// UpsertUser registers or refreshes a user's device token.
func (s *UserStore) UpsertUser(ctx context.Context, u models.User) error {
	const q = `
		INSERT INTO users (uid, phone_number, fcm_token)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO UPDATE SET phone_number = $2, fcm_token = $3
	`
	if _, err := s.pool.Exec(ctx, q, u.UID, u.PhoneNumber, u.FCMToken); err != nil {
		return fmt.Errorf("upsert user %s: %w", u.UID, err)
	}
	return nil
}

// FetchFCMTokens resolves uids to their stored device tokens. Users without
// a token are silently skipped; they simply don't get pushes.
func (s *UserStore) FetchFCMTokens(ctx context.Context, uids []uuid.UUID) ([]string, error) {
	const q = `SELECT fcm_token FROM users WHERE uid = ANY($1) AND fcm_token <> ''`

	rows, err := s.pool.Query(ctx, q, uids)
	if err != nil {
		return nil, fmt.Errorf("fetch fcm tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan fcm token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
