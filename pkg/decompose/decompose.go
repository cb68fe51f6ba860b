// Package decompose turns characters into layout-annotated component trees
// using the authoritative mapping table. Trees are strict trees: children
// are owned by their parent, never shared, even when the underlying source
// data is cyclic.
package decompose

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/japaniel/hanzikit/pkg/layout"
	"github.com/japaniel/hanzikit/pkg/mapping"
	"github.com/japaniel/hanzikit/pkg/source"
)

// Node is one node of a decomposition tree. A tree is built per request and
// owned exclusively by its caller.
type Node struct {
	Character string
	Keyword   string
	Reading   string
	Layout    layout.Descriptor
	Depth     int
	// IsPlaceholder marks characters with no Unicode glyph; rendering
	// substitutes an asset from the primitive manifest.
	IsPlaceholder bool
	// CycleBroken marks a leaf that was truncated because the character
	// already appears on the path above it.
	CycleBroken bool
	// DepthLimited marks a leaf truncated by the depth guard even though
	// the table records further components.
	DepthLimited bool
	// AssetID is filled at rendering time for placeholder leaves.
	AssetID  string
	Children []*Node
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// Walk visits n and all descendants depth-first in child order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// String renders the tree in indented form, one node per line.
func (n *Node) String() string {
	var sb strings.Builder
	n.format(&sb, 0)
	return sb.String()
}

func (n *Node) format(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	kw := n.Keyword
	if kw == "" {
		kw = "???"
	}
	fmt.Fprintf(sb, "%s [%s]", n.Character, kw)
	if n.Layout.Tag != layout.Single && n.Layout.Tag != layout.Unknown {
		fmt.Fprintf(sb, " %s", n.Layout.Tag.Label())
	}
	if n.CycleBroken {
		sb.WriteString(" (cycle)")
	}
	if n.DepthLimited {
		sb.WriteString(" (depth)")
	}
	sb.WriteByte('\n')
	for _, c := range n.Children {
		c.format(sb, indent+1)
	}
}

// Engine resolves characters against a shared read-only table. It is safe
// for concurrent use; each call keeps its own ancestor state and the memo
// cache holds immutable trees that are cloned before being returned.
type Engine struct {
	table *mapping.Table
	// Logger receives cycle/depth truncation notices. nil disables logging.
	Logger *log.Logger

	mu   sync.Mutex
	memo map[string]memoEntry
}

type memoEntry struct {
	maxDepth int
	node     *Node
}

// NewEngine creates an engine over a built table.
func NewEngine(t *mapping.Table) *Engine {
	return &Engine{table: t, memo: make(map[string]memoEntry)}
}

// Decompose expands a character into its component tree. maxDepth bounds
// the depth of any path; values <= 0 select the table's natural default.
// For a fixed table and maxDepth the result is structurally identical
// across calls. The returned tree is the caller's to mutate.
func (e *Engine) Decompose(char string, maxDepth int) *Node {
	if maxDepth <= 0 {
		maxDepth = e.table.DefaultMaxDepth()
	}

	e.mu.Lock()
	if m, ok := e.memo[char]; ok && m.maxDepth == maxDepth {
		e.mu.Unlock()
		return m.node.Clone()
	}
	e.mu.Unlock()

	n := e.expand(char, 0, maxDepth, make(map[string]bool))

	e.mu.Lock()
	e.memo[char] = memoEntry{maxDepth: maxDepth, node: n}
	e.mu.Unlock()
	return n.Clone()
}

func (e *Engine) expand(char string, depth, maxDepth int, ancestors map[string]bool) *Node {
	n := &Node{
		Character:     char,
		Depth:         depth,
		IsPlaceholder: source.IsPlaceholder(char),
	}

	entry, known := e.table.Lookup(char)
	if known {
		n.Keyword = entry.Keyword
		n.Reading = entry.Reading
	}

	if !known || len(entry.Components) == 0 {
		n.Layout = layout.Interpret("", 0)
		return n
	}
	if ancestors[char] {
		n.CycleBroken = true
		n.Layout = layout.Interpret("", 0)
		e.logf("decompose: cycle broken at %q (depth %d)", char, depth)
		return n
	}
	if depth >= maxDepth {
		n.DepthLimited = true
		n.Layout = layout.Interpret("", 0)
		e.logf("decompose: depth limit %d reached at %q", maxDepth, char)
		return n
	}

	ancestors[char] = true
	n.Children = make([]*Node, 0, len(entry.Components))
	for _, comp := range entry.Components {
		n.Children = append(n.Children, e.expand(comp, depth+1, maxDepth, ancestors))
	}
	delete(ancestors, char)

	n.Layout = layout.Interpret(entry.LayoutCode, len(n.Children))
	return n
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}
