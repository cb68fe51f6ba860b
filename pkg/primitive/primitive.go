// Package primitive maps placeholder characters (primitives with no
// Unicode glyph) to stand-in visual asset identifiers.
package primitive

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/japaniel/hanzikit/pkg/decompose"
	"github.com/japaniel/hanzikit/pkg/source"
)

// MissingAssetError reports a placeholder character with no manifest entry.
// This is a data-integrity failure: without an asset the primitive would
// render as a broken glyph, so it is surfaced instead of ignored.
type MissingAssetError struct {
	Character string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("no asset mapped for placeholder %q", e.Character)
}

// Manifest is the static placeholder-character → asset-id mapping.
type Manifest struct {
	assets map[string]string
}

// NewManifest wraps an in-memory mapping.
func NewManifest(assets map[string]string) *Manifest {
	m := &Manifest{assets: make(map[string]string, len(assets))}
	for k, v := range assets {
		m.assets[k] = v
	}
	return m
}

// Load reads a manifest JSON file ({"囧高": "primitive_001", ...}).
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open primitive manifest: %w", err)
	}
	var assets map[string]string
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("parse primitive manifest: %w", err)
	}
	return NewManifest(assets), nil
}

// Len returns the number of manifest entries.
func (m *Manifest) Len() int { return len(m.assets) }

// Resolve returns the asset id for a placeholder character. Non-placeholder
// characters resolve to the empty id; a placeholder with no entry is a
// MissingAssetError.
func (m *Manifest) Resolve(char string) (string, error) {
	if !source.IsPlaceholder(char) {
		return "", nil
	}
	id, ok := m.assets[char]
	if !ok {
		return "", &MissingAssetError{Character: char}
	}
	return id, nil
}

// Apply fills AssetID on every placeholder node in the tree. The first
// placeholder without a manifest entry aborts with its error.
func (m *Manifest) Apply(root *decompose.Node) error {
	var firstErr error
	root.Walk(func(n *decompose.Node) {
		if firstErr != nil || !n.IsPlaceholder {
			return
		}
		id, err := m.Resolve(n.Character)
		if err != nil {
			firstErr = err
			return
		}
		n.AssetID = id
	})
	return firstErr
}
