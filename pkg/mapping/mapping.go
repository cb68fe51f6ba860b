// Package mapping merges loader records into the single authoritative
// character table consulted by the decomposition engine. The table is built
// once and read-only afterwards, so it can be shared across concurrent
// decomposition calls without synchronization.
package mapping

import (
	"github.com/japaniel/hanzikit/pkg/source"
)

// Entry is the merged, authoritative record for one character.
type Entry struct {
	Character string
	Keyword   string
	Reading   string
	// Aliases are alternate primitive names from the primary tier.
	Aliases []string
	// Components is the ordered component sequence; empty for primitives.
	Components []string
	// LayoutCode is the raw spatial code from the tier that supplied the
	// decomposition.
	LayoutCode string
	// Tier records which tier supplied the decomposition, for provenance.
	Tier source.Tier
}

// PrimitiveName is the name used when the character appears as a component
// of another: the first primitive alias when one exists, else the keyword.
func (e Entry) PrimitiveName() string {
	if len(e.Aliases) > 0 {
		return e.Aliases[0]
	}
	return e.Keyword
}

// Table is the authoritative character table. Immutable once built.
type Table struct {
	entries  map[string]Entry
	maxDepth int
}

// Lookup returns the entry for a character, if any.
func (t *Table) Lookup(char string) (Entry, bool) {
	e, ok := t.entries[char]
	return e, ok
}

// Len returns the number of characters in the table.
func (t *Table) Len() int { return len(t.entries) }

// DefaultMaxDepth is the maximum natural decomposition depth observed in
// the table (clamped to 10), used as the engine's depth-guard default.
func (t *Table) DefaultMaxDepth() int { return t.maxDepth }

// Stats summarizes one build.
type Stats struct {
	Characters           int
	SelfReferential      int
	UnresolvedComponents int
	RadicalVariants      int
}

// depthClamp bounds the computed default depth; real Heisig/IDS data stays
// well under this.
const depthClamp = 10
