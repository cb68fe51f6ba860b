// Package source loads the three character data sources (Heisig XML, IDS
// decomposition table, dictionary JSON) into a common record shape.
// Loaders never merge across characters or resolve conflicts; that is the
// mapping builder's job.
package source

import (
	"errors"
	"unicode/utf8"
)

// ErrMissingSource marks a source file that is absent or not valid for its
// format. Individual malformed records are skipped and counted instead.
var ErrMissingSource = errors.New("missing or unreadable source")

// Tier is the trust level of a data source. Lower values win conflicts.
type Tier int

const (
	// TierPrimary is the Heisig-curated XML.
	TierPrimary Tier = iota
	// TierSecondary is the generic IDS decomposition table.
	TierSecondary
	// TierTertiary is the dictionary fallback (gloss/reading only).
	TierTertiary
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	}
	return "unknown"
}

// PlaceholderMarker prefixes source characters that have no Unicode
// representation (e.g. "囧高" for the Eiffel Tower primitive).
const PlaceholderMarker = '囧'

// IsPlaceholder reports whether s is a placeholder token rather than a
// renderable character. The marker rune on its own is a real character.
func IsPlaceholder(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return r == PlaceholderMarker && size < len(s)
}

// Record is one entry for a (character, tier) pair. Records are created by
// a loader run and immutable thereafter.
type Record struct {
	// Character is a single grapheme, or a placeholder token.
	Character string
	// Keyword is the gloss for the character; may be empty.
	Keyword string
	// Reading is a kana/pinyin style reading, when the source has one.
	Reading string
	// Components is the ordered component sequence. For the primary tier
	// these are keyword names, resolved to characters by the mapping
	// builder; for the secondary tier they are characters or placeholder
	// tokens. Empty for primitives.
	Components []string
	// LayoutCode is the source-specific spatial code (an IDS operator for
	// the secondary tier), or empty when absent.
	LayoutCode string
	// Aliases are alternate primitive names (primary tier only).
	Aliases []string
	Tier    Tier
}
