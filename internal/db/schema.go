package db

import (
	"database/sql"
	"fmt"
)

// PostColumns are the persisted post attributes, in table and export order.
var PostColumns = []string{
	"id", "created_at_iso", "donor_name", "donor_phone", "food_desc", "qty_meals",
	"veg_type", "allergens", "address", "ready_until_iso", "ready_until_hhmm",
	"status", "claimer_name", "claimer_phone", "donor_code", "volunteer_code",
	"completed_at_iso",
}

// schema is the full database schema.
//
// Post attributes are stored as text in their serialized form; the store
// parses them leniently on load. seq only preserves insertion order.
const schema = `
CREATE TABLE IF NOT EXISTS posts (
    seq              INTEGER PRIMARY KEY,
    id               TEXT NOT NULL UNIQUE,
    created_at_iso   TEXT NOT NULL DEFAULT '',
    donor_name       TEXT NOT NULL DEFAULT '',
    donor_phone      TEXT NOT NULL DEFAULT '',
    food_desc        TEXT NOT NULL DEFAULT '',
    qty_meals        TEXT NOT NULL DEFAULT '',
    veg_type         TEXT NOT NULL DEFAULT '',
    allergens        TEXT NOT NULL DEFAULT '',
    address          TEXT NOT NULL DEFAULT '',
    ready_until_iso  TEXT NOT NULL DEFAULT '',
    ready_until_hhmm TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT '',
    claimer_name     TEXT NOT NULL DEFAULT '',
    claimer_phone    TEXT NOT NULL DEFAULT '',
    donor_code       TEXT NOT NULL DEFAULT '',
    volunteer_code   TEXT NOT NULL DEFAULT '',
    completed_at_iso TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at INTEGER NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
