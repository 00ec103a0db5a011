package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/unalone/unalone-api/internal/domain"
)

// SessionRepo provides typed Postgres operations for the sessions table.
// One row per active session; rows are deleted at logout or when an
// expired session is looked up.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (session_id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, s.SessionID, s.UserID, s.ExpiresAt, s.CreatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `SELECT session_id, user_id, expires_at, created_at FROM sessions WHERE session_id = $1`
	var s domain.Session
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&s.SessionID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &s, nil
}

// Delete removes a session row. Deleting an absent row is not an error,
// which keeps logout idempotent.
func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
