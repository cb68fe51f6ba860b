package source

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"
)

// JMdictEntry matches the structure of jmdict-simplified entries.
type JMdictEntry struct {
	Id    string          `json:"id"`
	Kanji []JMdictElement `json:"kanji"`
	Kana  []JMdictElement `json:"kana"`
	Sense []JMdictSense   `json:"sense"`
}

type JMdictElement struct {
	Text   string   `json:"text"`
	Common bool     `json:"common"`
	Tags   []string `json:"tags"`
}

type JMdictSense struct {
	PartOfSpeech []string      `json:"partOfSpeech"`
	Gloss        []JMdictGloss `json:"gloss"`
}

type JMdictGloss struct {
	Text string `json:"text"`
	Lang string `json:"lang"` // defaults to 'eng' if missing
}

// LoadDictionary reads a jmdict-simplified JSON file (either the
// {"words": [...]} wrapper or a bare array) and returns tertiary-tier
// records for its single-character kanji headwords. Dictionary entries
// carry a gloss and a reading but never a decomposition. Entries without a
// usable gloss are skipped and counted.
func LoadDictionary(path string) ([]Record, int, error) {
	entries, err := loadJMdictSimplified(path)
	if err != nil {
		return nil, 0, err
	}

	var records []Record
	skipped := 0
	for _, e := range entries {
		gloss := firstGloss(e)
		reading := primaryReading(e)
		for _, k := range e.Kanji {
			if utf8.RuneCountInString(k.Text) != 1 {
				continue
			}
			if gloss == "" {
				skipped++
				continue
			}
			records = append(records, Record{
				Character: k.Text,
				Keyword:   gloss,
				Reading:   reading,
				Tier:      TierTertiary,
			})
		}
	}
	return records, skipped, nil
}

func firstGloss(e JMdictEntry) string {
	for _, s := range e.Sense {
		for _, g := range s.Gloss {
			if g.Text != "" {
				return g.Text
			}
		}
	}
	return ""
}

// primaryReading prefers a kana element marked common over the first
// listed one.
func primaryReading(e JMdictEntry) string {
	for _, k := range e.Kana {
		if k.Common && k.Text != "" {
			return k.Text
		}
	}
	if len(e.Kana) > 0 {
		return e.Kana[0].Text
	}
	return ""
}

func loadJMdictSimplified(path string) ([]JMdictEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary source: %w: %w", ErrMissingSource, err)
	}
	defer f.Close()

	var wrapper struct {
		Words []JMdictEntry `json:"words"`
	}
	// Try parsing as full object wrapper first { "words": [...] }
	dec := json.NewDecoder(f)
	if err := dec.Decode(&wrapper); err == nil && len(wrapper.Words) > 0 {
		return wrapper.Words, nil
	}

	// Reset and try as array [...]
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	var entries []JMdictEntry
	dec = json.NewDecoder(f)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse dictionary source: %w: %w", ErrMissingSource, err)
	}
	return entries, nil
}
