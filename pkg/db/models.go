package db

import "time"

// Card is one flashcard row in the deck being built or edited.
type Card struct {
	ID        int64
	Character string
	Keyword   string
	Reading   string
	// Decomposition is the rendered component summary ("sun + moon").
	Decomposition string
	// Spatial is the layout label ("left-right").
	Spatial string
	// AssetID points at a stand-in image for placeholder primitives.
	AssetID   string
	Tags      string
	UpdatedAt time.Time
}
