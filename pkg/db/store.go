package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// UpsertCard inserts or updates the card for a character and returns its id.
// Non-empty incoming fields win; empty incoming fields keep what the row
// already has, so a re-ingest never blanks a hand-edited card.
func UpsertCard(db DBExecutor, c Card) (int64, error) {
	char := strings.TrimSpace(c.Character)
	if char == "" {
		return 0, fmt.Errorf("card character must be non-empty")
	}

	var id int64
	query := `INSERT INTO cards (character, keyword, reading, decomposition, spatial, asset_id, tags, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(character)
			  DO UPDATE SET
			    keyword = COALESCE(NULLIF(excluded.keyword, ''), cards.keyword),
			    reading = COALESCE(NULLIF(excluded.reading, ''), cards.reading),
			    decomposition = COALESCE(NULLIF(excluded.decomposition, ''), cards.decomposition),
			    spatial = COALESCE(NULLIF(excluded.spatial, ''), cards.spatial),
			    asset_id = COALESCE(NULLIF(excluded.asset_id, ''), cards.asset_id),
			    tags = COALESCE(NULLIF(excluded.tags, ''), cards.tags),
			    updated_at = excluded.updated_at
			  RETURNING id`

	err := db.QueryRow(query, char, c.Keyword, c.Reading, c.Decomposition,
		c.Spatial, c.AssetID, c.Tags, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert card: %w", err)
	}
	return id, nil
}

// GetCard returns the card for a character, or sql.ErrNoRows.
func GetCard(db DBExecutor, character string) (Card, error) {
	var c Card
	var keyword, reading, decomp, spatial, asset, tags sql.NullString
	err := db.QueryRow(
		`SELECT id, character, keyword, reading, decomposition, spatial, asset_id, tags
		 FROM cards WHERE character = ?`, character,
	).Scan(&c.ID, &c.Character, &keyword, &reading, &decomp, &spatial, &asset, &tags)
	if err != nil {
		return Card{}, err
	}
	c.Keyword = keyword.String
	c.Reading = reading.String
	c.Decomposition = decomp.String
	c.Spatial = spatial.String
	c.AssetID = asset.String
	c.Tags = tags.String
	return c, nil
}

// SetOverride records the deck author's preferred keyword for a character.
func SetOverride(db DBExecutor, character, keyword string) error {
	char := strings.TrimSpace(character)
	if char == "" {
		return fmt.Errorf("override character must be non-empty")
	}
	_, err := db.Exec(
		`INSERT INTO keyword_overrides (character, keyword) VALUES (?, ?)
		 ON CONFLICT(character) DO UPDATE SET keyword = excluded.keyword`,
		char, keyword)
	return err
}

// LoadOverrides returns the caller's keyword preferences: every card the
// deck already names, with explicit keyword_overrides rows winning over
// card keywords.
func LoadOverrides(db DBExecutor) (map[string]string, error) {
	overrides := make(map[string]string)

	rows, err := db.Query(`SELECT character, keyword FROM cards WHERE keyword != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var char, kw string
		if err := rows.Scan(&char, &kw); err != nil {
			return nil, err
		}
		overrides[char] = kw
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orows, err := db.Query(`SELECT character, keyword FROM keyword_overrides`)
	if err != nil {
		return nil, err
	}
	defer orows.Close()
	for orows.Next() {
		var char, kw string
		if err := orows.Scan(&char, &kw); err != nil {
			return nil, err
		}
		overrides[char] = kw
	}
	return overrides, orows.Err()
}

// CountCards returns the number of cards in the deck.
func CountCards(db DBExecutor) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&n)
	return n, err
}
