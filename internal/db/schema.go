package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS books (
    isbn           TEXT PRIMARY KEY,
    title          TEXT NOT NULL,
    author         TEXT NOT NULL,
    genre          TEXT,
    condition      TEXT NOT NULL DEFAULT 'good' CHECK (condition IN ('excellent', 'good', 'fair')),
    shelf_location TEXT,
    shelf_row      TEXT,
    in_stock       INTEGER NOT NULL DEFAULT 1 CHECK (in_stock IN (0, 1)),
    cover          BLOB,
    cover_mime     TEXT,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS friends (
    id         INTEGER PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name  TEXT NOT NULL,
    max_loans  INTEGER NOT NULL DEFAULT 3 CHECK (max_loans >= 0),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS contacts (
    id        INTEGER PRIMARY KEY,
    friend_id INTEGER NOT NULL REFERENCES friends(id),
    type      TEXT NOT NULL,
    value     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS loans (
    id            INTEGER PRIMARY KEY,
    isbn          TEXT NOT NULL REFERENCES books(isbn),
    friend_id     INTEGER NOT NULL REFERENCES friends(id),
    borrow_date   TEXT NOT NULL,
    due_date      TEXT NOT NULL,
    reminder_date TEXT,
    returned_at   DATETIME,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_loans_open_isbn
    ON loans(isbn) WHERE returned_at IS NULL;

CREATE INDEX IF NOT EXISTS idx_loans_friend ON loans(friend_id);
CREATE INDEX IF NOT EXISTS idx_contacts_friend ON contacts(friend_id);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
// Loan dates (borrow_date, due_date, reminder_date) are date-only and stored
// as ISO YYYY-MM-DD text, so lexicographic comparison is date comparison.
// The partial unique index guarantees at most one open loan per ISBN.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
