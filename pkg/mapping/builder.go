package mapping

import (
	"log"
	"sort"

	"github.com/japaniel/hanzikit/pkg/source"
)

// DefaultRadicalVariants maps bare radical forms to the parent character
// whose keyword they inherit (e.g. the water radical 氵 to 水). Variants are
// seeded as leaf entries only when the source data does not already name
// them.
var DefaultRadicalVariants = map[string]string{
	"訁": "言", "糹": "糸", "釒": "金", "刂": "刀", "彳": "行",
	"飠": "食", "爫": "爪", "虍": "虎", "覀": "西", "罒": "网",
	"亻": "人", "氵": "水", "扌": "手", "忄": "心", "犭": "犬",
	"礻": "示", "衤": "衣", "灬": "火", "⺌": "小", "⺊": "卜",
	"讠": "言", "钅": "金", "饣": "食", "纟": "糸", "贝": "貝",
	"车": "車", "见": "見", "门": "門", "鱼": "魚", "马": "馬",
	"鸟": "鳥", "页": "頁", "风": "風", "⺝": "月", "⺼": "月",
	"⺶": "羊", "⺀": "八", "⺄": "乙", "⺆": "冂", "⺈": "刀",
}

// Builder accumulates loader output and produces a Table. Loaders are added
// in a fixed order (primary, secondary, tertiary); ties within a tier go to
// the record added first.
type Builder struct {
	// Logger receives data-anomaly notices (self-referential records,
	// unresolved component names). nil disables logging.
	Logger *log.Logger
	// RadicalVariants overrides DefaultRadicalVariants; set to an empty map
	// to disable variant seeding.
	RadicalVariants map[string]string

	order   []string
	grouped map[string][]source.Record
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{grouped: make(map[string][]source.Record)}
}

// Add appends one loader's records. Call order defines tie-breaking within
// a tier.
func (b *Builder) Add(records []source.Record) {
	for _, r := range records {
		if r.Character == "" {
			continue
		}
		if _, seen := b.grouped[r.Character]; !seen {
			b.order = append(b.order, r.Character)
		}
		b.grouped[r.Character] = append(b.grouped[r.Character], r)
	}
}

// Build merges all added records into an immutable Table.
//
// Per character, the decomposition (components + layout code) comes from
// the highest-priority tier present. The keyword is selected independently:
// it falls back to the highest tier with a non-empty keyword, so a primary
// record with components but no keyword still gets its gloss from the
// dictionary tier. Readings and layout codes follow the same fallback.
func (b *Builder) Build() (*Table, Stats) {
	var stats Stats

	// Keyword/alias index over primary records: primary components are
	// keyword names and must be resolved to characters. Two passes, so a
	// primitive alias overrides a plain keyword of the same name.
	nameIndex := make(map[string]string)
	for _, char := range b.order {
		for _, r := range b.grouped[char] {
			if r.Tier == source.TierPrimary && r.Keyword != "" {
				if _, ok := nameIndex[r.Keyword]; !ok {
					nameIndex[r.Keyword] = r.Character
				}
			}
		}
	}
	for _, char := range b.order {
		for _, r := range b.grouped[char] {
			if r.Tier != source.TierPrimary {
				continue
			}
			for _, a := range r.Aliases {
				nameIndex[a] = r.Character
			}
		}
	}

	entries := make(map[string]Entry, len(b.order))
	for _, char := range b.order {
		recs := b.grouped[char]

		decomp := recs[0]
		for _, r := range recs[1:] {
			if r.Tier < decomp.Tier {
				decomp = r
			}
		}

		e := Entry{
			Character:  char,
			Components: decomp.Components,
			LayoutCode: decomp.LayoutCode,
			Tier:       decomp.Tier,
		}

		// Two-axis fallback: keyword, reading and layout code are chosen by
		// tier priority on their own, independent of the decomposition tier.
		// The layout fallback matters for Heisig-sourced decompositions: the
		// XML carries no spatial data, so the IDS operator supplies it. An
		// operand-count mismatch between the borrowed code and the components
		// degrades in layout.Interpret.
		for t := source.TierPrimary; t <= source.TierTertiary; t++ {
			for _, r := range recs {
				if r.Tier != t {
					continue
				}
				if e.Keyword == "" && r.Keyword != "" {
					e.Keyword = r.Keyword
				}
				if e.Reading == "" && r.Reading != "" {
					e.Reading = r.Reading
				}
				if e.LayoutCode == "" && r.LayoutCode != "" {
					e.LayoutCode = r.LayoutCode
				}
				if len(e.Aliases) == 0 && len(r.Aliases) > 0 {
					e.Aliases = r.Aliases
				}
			}
		}

		if decomp.Tier == source.TierPrimary {
			e.Components = b.resolveNames(decomp.Components, nameIndex, char, &stats)
		}

		if len(e.Components) == 1 && e.Components[0] == char {
			// Self-referential record; normalize to a leaf.
			stats.SelfReferential++
			b.logf("mapping: self-referential decomposition for %q normalized to leaf", char)
			e.Components = nil
			e.LayoutCode = ""
		}

		entries[char] = e
		stats.Characters++
	}

	variants := b.RadicalVariants
	if variants == nil {
		variants = DefaultRadicalVariants
	}
	// Deterministic seeding order, for stable logs only.
	varKeys := make([]string, 0, len(variants))
	for v := range variants {
		varKeys = append(varKeys, v)
	}
	sort.Strings(varKeys)
	for _, v := range varKeys {
		parent := variants[v]
		if _, exists := entries[v]; exists {
			continue
		}
		pe, ok := entries[parent]
		if !ok {
			continue
		}
		entries[v] = Entry{
			Character: v,
			Keyword:   pe.Keyword,
			Aliases:   pe.Aliases,
			Tier:      pe.Tier,
		}
		stats.Characters++
		stats.RadicalVariants++
	}

	t := &Table{entries: entries}
	t.maxDepth = naturalMaxDepth(entries)
	return t, stats
}

// resolveNames maps primary-tier component keyword names to characters.
// Names with no character stay as-is and decompose as leaves downstream.
func (b *Builder) resolveNames(names []string, nameIndex map[string]string, char string, stats *Stats) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if c, ok := nameIndex[name]; ok {
			out = append(out, c)
			continue
		}
		stats.UnresolvedComponents++
		b.logf("mapping: component %q of %q has no character, kept as name", name, char)
		out = append(out, name)
	}
	return out
}

func (b *Builder) logf(format string, args ...interface{}) {
	if b.Logger != nil {
		b.Logger.Printf(format, args...)
	}
}

// naturalMaxDepth computes the deepest decomposition chain in the table,
// treating on-path repeats as leaves so cyclic data terminates. A depth
// computed while an ancestor was on the path depends on that path, so only
// cycle-free results are memoized.
func naturalMaxDepth(entries map[string]Entry) int {
	memo := make(map[string]int, len(entries))
	onPath := make(map[string]bool)

	var depth func(char string) (int, bool)
	depth = func(char string) (int, bool) {
		if d, ok := memo[char]; ok {
			return d, true
		}
		e, ok := entries[char]
		if !ok || len(e.Components) == 0 {
			return 0, true
		}
		if onPath[char] {
			return 0, false
		}
		onPath[char] = true
		max, pure := 0, true
		for _, c := range e.Components {
			d, p := depth(c)
			if d > max {
				max = d
			}
			pure = pure && p
		}
		delete(onPath, char)
		if pure {
			memo[char] = max + 1
		}
		return max + 1, pure
	}

	max := 0
	for char := range entries {
		if d, _ := depth(char); d > max {
			max = d
		}
	}
	if max > depthClamp {
		max = depthClamp
	}
	if max == 0 {
		max = 1
	}
	return max
}
