// Package reading supplies kana readings for characters the dictionary
// tier misses, and extracts Han characters from running text for batch
// decomposition.
package reading

import (
	"regexp"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Analyzer wraps the morphological tokenizer.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer creates a new tokenizer instance.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// ReadingFor returns the hiragana reading of a character or short word, or
// "" when the tokenizer has none.
//
// Kagome IPA features usually:
// 0-3: POS hierarchy, 4-5: conjugation, 6: base form, 7: reading.
func (a *Analyzer) ReadingFor(text string) string {
	for _, token := range a.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		features := token.Features()
		if len(features) > 7 && features[7] != "*" {
			return ToHiragana(features[7])
		}
	}
	return ""
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// ExtractHan returns the unique Han characters of text in first-seen order.
func ExtractHan(text string) []string {
	seen := make(map[rune]bool)
	var out []string
	for _, r := range text {
		if !unicode.Is(unicode.Han, r) || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, string(r))
	}
	return out
}

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses
// (<rp>...</rp>) from HTML content. Readability extracts all text including
// furigana, which would otherwise duplicate every reading next to its
// character and pollute Han extraction.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}
