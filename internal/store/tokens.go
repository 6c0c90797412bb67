package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Revocations are kept as Unix seconds until the session would have expired
// on its own; after that the token fails validation anyway.

// RevokeSession ends the session with token id jti, which would otherwise be
// valid until expiresAt. Revoking the same session twice is a no-op.
func RevokeSession(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	if jti == "" {
		return fmt.Errorf("revoking session: empty token id")
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)
		 ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("revoking session %s: %w", jti, err)
	}

	if _, err := PurgeRevokedSessions(ctx, db, time.Now()); err != nil {
		return err
	}
	return nil
}

// PurgeRevokedSessions drops revocations whose session expired before now and
// reports how many went.
func PurgeRevokedSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging revoked sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purging revoked sessions: %w", err)
	}
	return n, nil
}

// IsSessionRevoked reports whether the session with token id jti was ended.
func IsSessionRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("checking session %s: %w", jti, err)
	}
	return true, nil
}
