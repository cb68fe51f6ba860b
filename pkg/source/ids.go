package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// idsOperators are the Ideographic Description Characters plus the variant
// mark 〾. Arity is 3 for ⿲/⿳, 1 for 〾, 2 for everything else.
const idsOperators = "⿰⿱⿲⿳⿴⿵⿶⿷⿸⿹⿺⿻⿼⿽⿾⿿〾"

func isIDSOperator(r rune) bool { return strings.ContainsRune(idsOperators, r) }

func operatorArity(r rune) int {
	switch r {
	case '⿲', '⿳':
		return 3
	case '〾':
		return 1
	}
	return 2
}

var (
	reSourceTag = regexp.MustCompile(`\$\([^)]*\)`)
	reNumbered  = regexp.MustCompile(`^#\s+\{(\d+)\}\s+(.+)`)
)

// idsNode is a parsed IDS expression: either an operator with operands, a
// character leaf, or an unexpanded numbered component.
type idsNode struct {
	op       rune
	char     string
	numbered int
	children []*idsNode
}

type idsToken struct {
	char     string
	numbered int // 0 means a char token
}

func tokenizeIDS(expr string) []idsToken {
	cleaned := reSourceTag.ReplaceAllString(expr, "")
	cleaned = strings.ReplaceAll(cleaned, "^", "")
	cleaned = strings.TrimSpace(cleaned)

	var tokens []idsToken
	runes := []rune(cleaned)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '{':
			j := i + 1
			for j < len(runes) && runes[j] != '}' {
				j++
			}
			if n, err := strconv.Atoi(string(runes[i+1 : j])); err == nil {
				tokens = append(tokens, idsToken{numbered: n})
			}
			i = j
		case strings.ContainsRune(" \t\r\n()0123456789", r):
			// formatting noise
		default:
			tokens = append(tokens, idsToken{char: string(r)})
		}
	}
	return tokens
}

// parseIDS parses an IDS expression into a tree. numbered maps component
// numbers to their expansion expressions; components without an expansion
// stay as opaque "{n}" leaves.
func parseIDS(expr string, numbered map[int]string) *idsNode {
	tokens := tokenizeIDS(expr)
	pos := 0

	var next func() *idsNode
	next = func() *idsNode {
		if pos >= len(tokens) {
			return nil
		}
		tok := tokens[pos]
		pos++

		if tok.numbered != 0 {
			if exp, ok := numbered[tok.numbered]; ok {
				return parseIDS(exp, numbered)
			}
			return &idsNode{numbered: tok.numbered, char: fmt.Sprintf("{%d}", tok.numbered)}
		}
		r := []rune(tok.char)[0]
		if !isIDSOperator(r) {
			return &idsNode{char: tok.char}
		}
		n := &idsNode{op: r}
		for i := 0; i < operatorArity(r); i++ {
			if child := next(); child != nil {
				n.children = append(n.children, child)
			}
		}
		return n
	}

	return next()
}

// leaves returns the in-order leaf tokens of a parsed IDS tree, flattening
// through nested operators.
func (n *idsNode) leaves() []string {
	if n == nil {
		return nil
	}
	if len(n.children) == 0 {
		if n.char == "" {
			return nil
		}
		return []string{n.char}
	}
	var out []string
	for _, c := range n.children {
		out = append(out, c.leaves()...)
	}
	return out
}

// LoadIDS parses a line-oriented IDS table ("U+XXXX<TAB>char<TAB>ids...")
// into secondary-tier records. Comment lines of the form "# {n} desc<TAB>exp"
// define numbered components used inside expressions. Malformed lines are
// skipped and counted.
func LoadIDS(path string) ([]Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open ids source: %w: %w", ErrMissingSource, err)
	}
	defer f.Close()
	return parseIDSTable(f)
}

func parseIDSTable(r io.Reader) ([]Record, int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	numbered := make(map[int]string)
	type rawLine struct {
		char string
		expr string
	}
	var raw []rawLine
	skipped := 0
	first := true

	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		if m := reNumbered.FindStringSubmatch(line); m != nil {
			parts := strings.Split(m[2], "\t")
			exp := strings.TrimSpace(parts[len(parts)-1])
			if exp != "" && exp != "？" {
				if n, err := strconv.Atoi(m[1]); err == nil {
					numbered[n] = exp
				}
			}
			continue
		}
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) < 3 || parts[1] == "" {
			skipped++
			continue
		}
		raw = append(raw, rawLine{char: parts[1], expr: parts[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read ids source: %w", err)
	}

	// Numbered definitions may appear anywhere in the file, so expressions
	// are parsed only after the full scan.
	var records []Record
	for _, l := range raw {
		tree := parseIDS(l.expr, numbered)
		if tree == nil {
			skipped++
			continue
		}
		rec := Record{
			Character: l.char,
			Tier:      TierSecondary,
		}
		if tree.op != 0 {
			rec.LayoutCode = string(tree.op)
			rec.Components = tree.leaves()
		} else {
			// The expression is a bare character. If it names the entry
			// itself the table is recording an atomic character; the
			// mapping builder normalizes the self-reference.
			rec.Components = tree.leaves()
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}
