// Package ime connects the Hangul composer to the text fields of real input
// method frameworks.
//
// # Architecture Overview
//
// Every platform delivers the same three things: a key, a way to change the
// text before the cursor, and some view of that text. The Engine turns a key
// into a composer.Edit and applies it to a Buffer:
//
//	Key Event → Layout → Engine.Commit → composer.Edit → Buffer
//	                         ↓
//	           correction on word boundaries
//
// The composer renders the syllable under construction directly into the
// document. An Edit says how many characters before the cursor to delete and
// what to insert in their place; there is no preedit.
//
// # Platform Support
//
//	┌──────────┬─────────────────────────────────────────────────────────┐
//	│ Platform │ Front end                                               │
//	├──────────┼─────────────────────────────────────────────────────────┤
//	│ Linux    │ IBus engine over D-Bus (IBusService)                    │
//	│ Android  │ InputMethodService via gomobile (MobileEngine)          │
//	│ iOS      │ Keyboard extension via gomobile (MobileEngine)          │
//	│ Terminal │ cmd/hangulctl on a document.Document                    │
//	└──────────┴─────────────────────────────────────────────────────────┘
//
// # Session Reset
//
// The Engine remembers the text it last left before the cursor. When the
// host reports something different, the user moved the cursor or edited the
// text by other means, and the composer is reset before the next key. Only
// syllables produced since the last reset can be decomposed again by
// backspace or extended by a following consonant.
//
// # Key Repeat
//
// Holding backspace deletes one character every 70 ms; holding the word
// delete key deletes a word every 300 ms. Each tick is one complete Engine
// call, so repeats never interleave with a half-applied Edit.
package ime
