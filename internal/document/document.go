// Package document provides an in-memory host text buffer for the composer.
//
// A Document behaves like the text proxy a keyboard extension sees: text can
// be appended or removed at the cursor, and everything before the cursor can
// be read back. Deletion works in user-perceived characters (grapheme
// clusters), not bytes or runes.
package document

import (
	"sync"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// tailWindow bounds how many trailing bytes are segmented when looking back
// from the cursor. It comfortably holds several of the longest clusters.
const tailWindow = 256

// Document is a cursor-at-end text buffer. It is safe for concurrent use.
type Document struct {
	mu   sync.RWMutex
	text string
}

// New creates a document holding initial, normalized to NFC.
func New(initial string) *Document {
	return &Document{text: norm.NFC.String(initial)}
}

// InsertText appends s at the cursor.
func (d *Document) InsertText(s string) {
	if s == "" {
		return
	}
	d.mu.Lock()
	d.text += s
	d.mu.Unlock()
}

// DeleteBackward removes the character before the cursor. It is a no-op on an
// empty document.
func (d *Document) DeleteBackward() {
	d.mu.Lock()
	defer d.mu.Unlock()

	clusters, offset := lastClusters(d.text, 1)
	if len(clusters) == 0 {
		return
	}
	d.text = d.text[:offset]
}

// ContextBeforeInput returns the text before the cursor.
func (d *Document) ContextBeforeInput() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// SetContext replaces the document with text reported by the host, e.g. an
// IBus surrounding-text update. Conjoining jamo sequences are normalized to
// precomposed syllables so lookback sees what the user sees.
func (d *Document) SetContext(s string) {
	s = norm.NFC.String(s)
	d.mu.Lock()
	d.text = s
	d.mu.Unlock()
}

// Len returns the number of characters before the cursor.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return uniseg.GraphemeClusterCount(d.text)
}

// PreviousCharacter returns the character two positions before the cursor.
func (d *Document) PreviousCharacter() (rune, bool) {
	return Lookback(d.ContextBeforeInput(), 2)
}

// JustPreviousCharacter returns the character immediately before the cursor.
func (d *Document) JustPreviousCharacter() (rune, bool) {
	return Lookback(d.ContextBeforeInput(), 1)
}

func (d *Document) String() string {
	return d.ContextBeforeInput()
}

// Lookback returns the n-th character before the end of s, counting from 1.
// A multi-rune cluster is reported by its first rune after NFC composition.
func Lookback(s string, n int) (rune, bool) {
	if n <= 0 {
		return 0, false
	}
	clusters, _ := lastClusters(s, n)
	if len(clusters) < n {
		return 0, false
	}
	cluster := norm.NFC.String(clusters[0])
	r, _ := utf8.DecodeRuneInString(cluster)
	if r == utf8.RuneError {
		return 0, false
	}
	return r, true
}

// TrimLast removes the last n characters of s.
func TrimLast(s string, n int) string {
	if n <= 0 {
		return s
	}
	_, offset := lastClusters(s, n)
	return s[:offset]
}

// lastClusters returns up to n trailing grapheme clusters of s, oldest first,
// and the byte offset where the first of them starts.
func lastClusters(s string, n int) ([]string, int) {
	if s == "" || n <= 0 {
		return nil, len(s)
	}

	window := tailWindow
	for {
		start := len(s) - window
		if start < 0 {
			start = 0
		}
		for start > 0 && !utf8.RuneStart(s[start]) {
			start--
		}

		var (
			clusters []string
			offsets  []int
			state    = -1
			rest     = s[start:]
			pos      = start
		)
		for len(rest) > 0 {
			var cluster string
			cluster, rest, _, state = uniseg.StepString(rest, state)
			clusters = append(clusters, cluster)
			offsets = append(offsets, pos)
			pos += len(cluster)
		}

		// The first cluster of a cut window may be a fragment; only trust
		// it when the window reached the start of s.
		usable := len(clusters)
		if start > 0 {
			usable--
		}
		if usable >= n || start == 0 {
			if n > usable {
				n = usable
			}
			i := len(clusters) - n
			return clusters[i:], offsets[i]
		}
		window *= 2
	}
}
