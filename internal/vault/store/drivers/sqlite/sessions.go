package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vaultcraft/vaultcraft/internal/vault/store"
)

type sessionsRepo struct {
	db *sql.DB
}

func (r *sessionsRepo) SaveSession(ctx context.Context, s store.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (profile, base_url, user, token, vault, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (profile) DO UPDATE SET
			base_url   = excluded.base_url,
			user       = excluded.user,
			token      = excluded.token,
			vault      = excluded.vault,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP`,
		s.Profile, s.BaseURL, s.User, s.Token, s.Vault, mapTimeNull(s.ExpiresAt),
	)
	return err
}

func (r *sessionsRepo) GetSession(ctx context.Context, profile string) (store.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT profile, base_url, user, token, vault, expires_at, created_at, updated_at
		FROM sessions WHERE profile = ?`, profile)
	return scanSession(row)
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, profile string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE profile = ?`, profile)
	return err
}

func (r *sessionsRepo) ListSessions(ctx context.Context) ([]store.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT profile, base_url, user, token, vault, expires_at, created_at, updated_at
		FROM sessions ORDER BY profile`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= ?`, now)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (store.Session, error) {
	var (
		s         store.Session
		expiresAt sql.NullTime
	)
	err := row.Scan(&s.Profile, &s.BaseURL, &s.User, &s.Token, &s.Vault,
		&expiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return store.Session{}, mapNotFound(err)
	}
	s.ExpiresAt = mapNullTime(expiresAt)
	return s, nil
}
