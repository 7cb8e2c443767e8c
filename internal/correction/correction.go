// Package correction replaces shortcut words with their expansions when the
// user finishes a word.
package correction

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"hangulkey/internal/store"
)

// Lexicon looks up stored shortcuts. It returns nil, nil for unknown input.
type Lexicon interface {
	Lookup(userInput string) (*store.Entry, error)
}

// Source names where a correction came from.
type Source string

const (
	SourceCustom  Source = "custom"
	SourceLexicon Source = "lexicon"
)

// Correction describes the edit that applies a replacement: delete Deletes
// characters before the cursor, then insert Text.
type Correction struct {
	Word        string
	Replacement string
	Source      Source

	Deletes int
	Text    string
}

// Corrector checks the word before a boundary against a fixed custom table
// first and the lexicon second.
type Corrector struct {
	custom  map[string]string
	lexicon Lexicon
}

// New creates a Corrector. Either argument may be nil.
func New(custom map[string]string, lexicon Lexicon) *Corrector {
	c := &Corrector{
		custom:  make(map[string]string, len(custom)),
		lexicon: lexicon,
	}
	for k, v := range custom {
		if k = strings.TrimSpace(k); k != "" && v != "" {
			c.custom[k] = v
		}
	}
	return c
}

// IsBoundary reports whether r ends a word.
func IsBoundary(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// Correct inspects context, the text before the cursor ending with the
// boundary character just typed. It reports false when the preceding word
// has no replacement.
func (c *Corrector) Correct(context string) (Correction, bool, error) {
	boundary, size := utf8.DecodeLastRuneInString(context)
	if size == 0 || !IsBoundary(boundary) {
		return Correction{}, false, nil
	}

	head := context[:len(context)-size]
	word := head[strings.LastIndexFunc(head, unicode.IsSpace)+1:]
	if word == "" {
		return Correction{}, false, nil
	}

	replacement, source, err := c.lookup(word)
	if err != nil {
		return Correction{}, false, err
	}
	if source == "" || replacement == word {
		return Correction{}, false, nil
	}

	return Correction{
		Word:        word,
		Replacement: replacement,
		Source:      source,
		Deletes:     uniseg.GraphemeClusterCount(word) + 1,
		Text:        replacement + string(boundary),
	}, true, nil
}

func (c *Corrector) lookup(word string) (string, Source, error) {
	if r, ok := c.custom[word]; ok {
		return r, SourceCustom, nil
	}
	if c.lexicon == nil {
		return "", "", nil
	}
	e, err := c.lexicon.Lookup(word)
	if err != nil {
		return "", "", fmt.Errorf("lexicon lookup: %w", err)
	}
	if e == nil {
		return "", "", nil
	}
	return e.DocumentText, SourceLexicon, nil
}
