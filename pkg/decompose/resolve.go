package decompose

// ResolveKeywords overlays caller-supplied keyword overrides onto a tree.
// The input tree and the authoritative table are left untouched; the
// returned clone has, for every node at every depth, the override for its
// character if one exists, the node's own keyword otherwise, and the
// character itself as a last resort so no card renders blank.
func ResolveKeywords(n *Node, overrides map[string]string) *Node {
	c := n.Clone()
	applyOverrides(c, overrides)
	return c
}

func applyOverrides(n *Node, overrides map[string]string) {
	if n == nil {
		return
	}
	n.Walk(func(node *Node) {
		if kw, ok := overrides[node.Character]; ok && kw != "" {
			node.Keyword = kw
		} else if node.Keyword == "" {
			node.Keyword = node.Character
		}
	})
}

// DecomposeAndResolve is the one operation downstream consumers use: it
// decomposes a character and applies keyword overrides in a single call.
func (e *Engine) DecomposeAndResolve(char string, overrides map[string]string, maxDepth int) *Node {
	n := e.Decompose(char, maxDepth)
	// n is already a private clone; overlay in place.
	applyOverrides(n, overrides)
	return n
}
