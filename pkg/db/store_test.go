package db

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := InitDB(conn); err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	return conn
}

func TestInitDBIdempotent(t *testing.T) {
	conn := setupTestDB(t)
	// Schema application runs on every start; a second pass must be a no-op.
	if err := InitDB(conn); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}
}

func TestUpsertCardInsert(t *testing.T) {
	conn := setupTestDB(t)

	id, err := UpsertCard(conn, Card{
		Character:     "明",
		Keyword:       "bright",
		Reading:       "めい",
		Decomposition: "sun + moon",
		Spatial:       "left-right",
	})
	if err != nil {
		t.Fatalf("UpsertCard failed: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero id")
	}

	got, err := GetCard(conn, "明")
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if got.Keyword != "bright" || got.Reading != "めい" || got.Spatial != "left-right" {
		t.Errorf("unexpected card: %+v", got)
	}
}

func TestUpsertCardPreservesFields(t *testing.T) {
	conn := setupTestDB(t)

	first, err := UpsertCard(conn, Card{Character: "日", Keyword: "day", Reading: "にち"})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// Re-ingest with a new keyword but no reading: the keyword updates, the
	// stored reading survives.
	second, err := UpsertCard(conn, Card{Character: "日", Keyword: "sun"})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if first != second {
		t.Errorf("upsert created a new row: %d != %d", first, second)
	}

	got, err := GetCard(conn, "日")
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if got.Keyword != "sun" {
		t.Errorf("keyword = %q, want sun", got.Keyword)
	}
	if got.Reading != "にち" {
		t.Errorf("reading = %q, want にち (must survive empty re-ingest)", got.Reading)
	}
}

func TestUpsertCardEmptyCharacter(t *testing.T) {
	conn := setupTestDB(t)
	if _, err := UpsertCard(conn, Card{Character: "  "}); err == nil {
		t.Error("expected error for blank character")
	}
}

func TestGetCardNotFound(t *testing.T) {
	conn := setupTestDB(t)
	_, err := GetCard(conn, "謎")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestLoadOverridesPrecedence(t *testing.T) {
	conn := setupTestDB(t)

	if _, err := UpsertCard(conn, Card{Character: "日", Keyword: "day"}); err != nil {
		t.Fatal(err)
	}
	if _, err := UpsertCard(conn, Card{Character: "月", Keyword: "moon"}); err != nil {
		t.Fatal(err)
	}
	// An explicit override beats the card's own keyword.
	if err := SetOverride(conn, "日", "sun"); err != nil {
		t.Fatalf("SetOverride failed: %v", err)
	}
	// An override may name a character with no card yet.
	if err := SetOverride(conn, "木", "tree"); err != nil {
		t.Fatalf("SetOverride failed: %v", err)
	}

	overrides, err := LoadOverrides(conn)
	if err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}
	want := map[string]string{"日": "sun", "月": "moon", "木": "tree"}
	for char, kw := range want {
		if overrides[char] != kw {
			t.Errorf("overrides[%q] = %q, want %q", char, overrides[char], kw)
		}
	}
	if len(overrides) != len(want) {
		t.Errorf("got %d overrides, want %d: %v", len(overrides), len(want), overrides)
	}
}

func TestSetOverrideReplaces(t *testing.T) {
	conn := setupTestDB(t)

	if err := SetOverride(conn, "日", "day"); err != nil {
		t.Fatal(err)
	}
	if err := SetOverride(conn, "日", "sun"); err != nil {
		t.Fatal(err)
	}
	overrides, err := LoadOverrides(conn)
	if err != nil {
		t.Fatal(err)
	}
	if overrides["日"] != "sun" {
		t.Errorf("override = %q, want sun", overrides["日"])
	}
}

func TestCountCards(t *testing.T) {
	conn := setupTestDB(t)

	n, err := CountCards(conn)
	if err != nil || n != 0 {
		t.Fatalf("CountCards on empty deck = %d, %v", n, err)
	}
	for _, char := range []string{"日", "月", "明"} {
		if _, err := UpsertCard(conn, Card{Character: char, Keyword: "x"}); err != nil {
			t.Fatal(err)
		}
	}
	n, err = CountCards(conn)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("CountCards = %d, want 3", n)
	}
}

func TestUpsertWithinTransaction(t *testing.T) {
	conn := setupTestDB(t)

	tx, err := conn.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UpsertCard(tx, Card{Character: "休", Keyword: "rest"}); err != nil {
		tx.Rollback()
		t.Fatalf("upsert in tx failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	got, err := GetCard(conn, "休")
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if got.Keyword != "rest" {
		t.Errorf("keyword = %q, want rest", got.Keyword)
	}
}
