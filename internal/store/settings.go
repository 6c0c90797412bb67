package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	settingSessionSecret = "session_secret"
	settingExportKeyHash = "export_key_hash"
)

// GetSessionSecret returns the key that signs session tokens, generating and
// storing one on first use.
func GetSessionSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return getOrInsertSetting(ctx, db, settingSessionSecret, hex.EncodeToString(buf))
}

// getOrInsertSetting stores candidate under key unless a value already exists,
// then returns whichever value is stored. INSERT OR IGNORE + re-SELECT keeps
// two processes starting together from seeing different values.
func getOrInsertSetting(ctx context.Context, db *sql.DB, key, candidate string) (string, error) {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}

	var value string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", key, err)
	}
	return value, nil
}

// RotateExportKey generates a new export key, stores its bcrypt hash and
// returns the plaintext. The plaintext is not recoverable afterwards.
func RotateExportKey(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating export key: %w", err)
	}
	key := hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing export key: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		settingExportKeyHash, string(hash),
	)
	if err != nil {
		return "", fmt.Errorf("storing export key: %w", err)
	}
	return key, nil
}

// CheckExportKey reports whether key matches the stored export key. With no
// key configured every key is rejected.
func CheckExportKey(ctx context.Context, db *sql.DB, key string) (bool, error) {
	if key == "" {
		return false, nil
	}

	var hash string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, settingExportKeyHash,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying export key: %w", err)
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil, nil
}
