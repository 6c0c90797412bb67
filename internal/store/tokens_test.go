package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/foodrescue/internal/db"
)

func TestRevokeAndCheckSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsSessionRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsSessionRevoked: %v", err)
	}
	if revoked {
		t.Error("expected session not to be revoked")
	}

	if err := RevokeSession(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	// Revoking twice is harmless.
	if err := RevokeSession(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeSession again: %v", err)
	}

	revoked, _ = IsSessionRevoked(ctx, database, "jti-1")
	if !revoked {
		t.Error("expected session to be revoked")
	}

	revoked, _ = IsSessionRevoked(ctx, database, "jti-2")
	if revoked {
		t.Error("expected other session not to be revoked")
	}

	if err := RevokeSession(ctx, database, "", time.Now()); err == nil {
		t.Error("expected error for empty token id")
	}
}

func TestRevokeSessionPurgesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	RevokeSession(ctx, database, "old", time.Now().Add(-time.Hour))
	RevokeSession(ctx, database, "new", time.Now().Add(time.Hour))

	if revoked, _ := IsSessionRevoked(ctx, database, "old"); revoked {
		t.Error("expected expired revocation to be purged")
	}
	if revoked, _ := IsSessionRevoked(ctx, database, "new"); !revoked {
		t.Error("expected live revocation to remain")
	}
}

func TestPurgeRevokedSessions(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	for jti, exp := range map[string]time.Time{
		"a": now.Add(-2 * time.Hour),
		"b": now.Add(-time.Minute),
		"c": now.Add(time.Minute),
	} {
		if _, err := database.ExecContext(ctx,
			`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`, jti, exp.Unix(),
		); err != nil {
			t.Fatalf("seeding %s: %v", jti, err)
		}
	}

	n, err := PurgeRevokedSessions(ctx, database, now)
	if err != nil {
		t.Fatalf("PurgeRevokedSessions: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 purged, got %d", n)
	}
	if revoked, _ := IsSessionRevoked(ctx, database, "c"); !revoked {
		t.Error("expected unexpired revocation to remain")
	}

	n, _ = PurgeRevokedSessions(ctx, database, now)
	if n != 0 {
		t.Errorf("expected second purge to be a no-op, got %d", n)
	}
}
