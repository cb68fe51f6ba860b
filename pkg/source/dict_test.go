package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const dictSample = `
{
  "words": [
    {
      "id": "1",
      "kanji": [{"text": "犬", "common": true}],
      "kana": [{"text": "いぬ", "common": true}],
      "sense": [{"gloss": [{"text": "dog"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "2",
      "kanji": [{"text": "走る", "common": true}],
      "kana": [{"text": "はしる", "common": true}],
      "sense": [{"gloss": [{"text": "to run"}], "partOfSpeech": ["v5r"]}]
    },
    {
      "id": "3",
      "kanji": [{"text": "月", "common": true}],
      "kana": [{"text": "げつ", "common": false}, {"text": "つき", "common": true}],
      "sense": [{"gloss": [{"text": "moon"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "4",
      "kanji": [{"text": "謎", "common": false}],
      "kana": [{"text": "なぞ", "common": true}],
      "sense": [{"gloss": [], "partOfSpeech": ["n"]}]
    }
  ]
}
`

func writeDict(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dict: %v", err)
	}
	return path
}

func TestLoadDictionary(t *testing.T) {
	records, skipped, err := LoadDictionary(writeDict(t, dictSample))
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	// 走る is multi-character, 謎 has no gloss.
	if skipped != 1 {
		t.Errorf("expected 1 skipped entry, got %d", skipped)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	dog := records[0]
	if dog.Character != "犬" || dog.Keyword != "dog" || dog.Reading != "いぬ" {
		t.Errorf("unexpected dog record: %+v", dog)
	}
	if dog.Tier != TierTertiary {
		t.Errorf("expected tertiary tier, got %v", dog.Tier)
	}
	if len(dog.Components) != 0 {
		t.Errorf("dictionary records never carry components, got %v", dog.Components)
	}

	// The common kana wins over an earlier uncommon one.
	moon := records[1]
	if moon.Reading != "つき" {
		t.Errorf("月 reading = %q, want つき", moon.Reading)
	}
}

func TestLoadDictionaryBareArray(t *testing.T) {
	content := `[
	  {"id": "1", "kanji": [{"text": "山"}], "kana": [{"text": "やま"}],
	   "sense": [{"gloss": [{"text": "mountain"}]}]}
	]`
	records, _, err := LoadDictionary(writeDict(t, content))
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	if len(records) != 1 || records[0].Keyword != "mountain" || records[0].Reading != "やま" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestLoadDictionaryGarbage(t *testing.T) {
	if _, _, err := LoadDictionary(writeDict(t, "not json at all")); err == nil {
		t.Fatal("expected error for unparseable dictionary")
	}
}

func TestLoadDictionaryMissingFile(t *testing.T) {
	_, _, err := LoadDictionary(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
}
