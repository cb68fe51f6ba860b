package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// migrationsSQL creates the deck schema. Statements are ';'-separated and
// idempotent so InitDB can run on every start.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    character TEXT NOT NULL,
    keyword TEXT DEFAULT '',
    reading TEXT DEFAULT '',
    decomposition TEXT DEFAULT '',
    spatial TEXT DEFAULT '',
    asset_id TEXT DEFAULT '',
    tags TEXT DEFAULT '',
    updated_at TIMESTAMP,
    UNIQUE(character)
);

CREATE TABLE IF NOT EXISTS keyword_overrides (
    character TEXT PRIMARY KEY,
    keyword TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cards_keyword ON cards(keyword)
`

// InitDB applies the deck schema to an open connection.
func InitDB(conn *sql.DB) error {
	for _, stmt := range strings.Split(migrationsSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("apply deck schema: %w", err)
		}
	}
	return nil
}
