// Package store provides SQLite-based lexicon storage for hangulkey.
package store

import "time"

// Entry is a user shortcut: typing UserInput followed by a word boundary
// replaces it with DocumentText.
type Entry struct {
	UserInput    string
	DocumentText string
	CreatedAt    time.Time

	// Hits counts successful lookups.
	Hits int64

	// LastUsedAt is zero until the first hit.
	LastUsedAt time.Time
}
