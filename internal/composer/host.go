package composer

// Host is the lookback capability of the text buffer the composer renders
// into. The composer never writes to it; writes go through returned Edits.
type Host interface {
	// PreviousCharacter returns the character two positions before the
	// cursor.
	PreviousCharacter() (rune, bool)

	// JustPreviousCharacter returns the character immediately before the
	// cursor.
	JustPreviousCharacter() (rune, bool)
}

// EditSession carries per-call facts the host knows and the composer does
// not.
type EditSession struct {
	// Decomposable is true when the syllable before the cursor was produced
	// in this session and nothing has touched the buffer since, so it can be
	// pulled back into composition.
	Decomposable bool
}
