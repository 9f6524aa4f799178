package tokens

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/levelquest/sessiongate/internal/client/models"
	"github.com/levelquest/sessiongate/internal/dbx"
)

// Keys of the session key/value table.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyExpiresAt    = "expires_at"
	keyRememberMe   = "remember_me"
)

// SQLiteRepository stores the session token record in the local client
// database as key/value rows.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) get(ctx context.Context, q dbx.DBTX, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get session[%s]: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) set(ctx context.Context, q dbx.DBTX, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set session[%s]: %w", key, err)
	}
	return nil
}

// Load reads the stored token record. A record missing its access token is
// treated as absent.
func (r *SQLiteRepository) Load(ctx context.Context) (*models.SessionToken, error) {
	access, ok, err := r.get(ctx, r.db, keyAccessToken)
	if err != nil {
		return nil, err
	}
	if !ok || access == "" {
		return nil, nil
	}

	refresh, _, err := r.get(ctx, r.db, keyRefreshToken)
	if err != nil {
		return nil, err
	}

	expiresRaw, _, err := r.get(ctx, r.db, keyExpiresAt)
	if err != nil {
		return nil, err
	}
	expiresMillis, err := strconv.ParseInt(expiresRaw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session expiry %q: %w", expiresRaw, err)
	}

	rememberRaw, _, err := r.get(ctx, r.db, keyRememberMe)
	if err != nil {
		return nil, err
	}

	return &models.SessionToken{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.UnixMilli(expiresMillis),
		RememberMe:   rememberRaw == "1",
	}, nil
}

// Save writes all four fields of the record in a single transaction, so a
// reader never observes a half-replaced session.
func (r *SQLiteRepository) Save(ctx context.Context, token *models.SessionToken) error {
	remember := "0"
	if token.RememberMe {
		remember = "1"
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := r.set(ctx, tx, keyAccessToken, token.AccessToken); err != nil {
			return err
		}
		if err := r.set(ctx, tx, keyRefreshToken, token.RefreshToken); err != nil {
			return err
		}
		if err := r.set(ctx, tx, keyExpiresAt, strconv.FormatInt(token.ExpiresAt.UnixMilli(), 10)); err != nil {
			return err
		}
		return r.set(ctx, tx, keyRememberMe, remember)
	})
}

// Clear removes the stored record. Clearing an empty table is a no-op.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session`)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
