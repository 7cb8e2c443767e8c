// Package textedit computes how many characters the bulk deletion keys remove
// from the text before the cursor. Counts are grapheme clusters, which is the
// unit a host's delete-backward operates on.
package textedit

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"hangulkey/internal/jamo"
)

type runClass int

const (
	classNone runClass = iota
	classSyllable
	classConsonant
	classVowel
	classDigit
	classLatin
	classPunct
)

func classify(r rune) runClass {
	switch {
	case jamo.IsSyllable(r):
		return classSyllable
	case r >= 'ㄱ' && r <= 'ㅎ':
		return classConsonant
	case r >= 'ㅏ' && r <= 'ㅣ':
		return classVowel
	case unicode.IsDigit(r):
		return classDigit
	case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		return classLatin
	case unicode.IsPunct(r):
		return classPunct
	default:
		return classNone
	}
}

// clusters splits s into grapheme clusters and returns the first rune of each.
func clusters(s string) []rune {
	var out []rune
	state := -1
	for len(s) > 0 {
		var c string
		c, s, _, state = uniseg.StepString(s, state)
		r, _ := utf8.DecodeRuneInString(c)
		out = append(out, r)
	}
	return out
}

// WordLength returns the number of characters "delete word" removes from the
// end of context.
//
// A word is the trailing run of one class: Hangul syllables, compatibility
// consonants, compatibility vowels, digits, or ASCII letters. Punctuation
// only groups with repeats of the same mark, so "!!" is one word and "?!" two.
// One trailing space or newline goes with the word. When the character before
// the cursor belongs to no class, a single character is removed.
func WordLength(context string) int {
	cs := clusters(context)
	if len(cs) == 0 {
		return 0
	}

	n := 0
	if last := cs[len(cs)-1]; last == ' ' || last == '\n' {
		n = 1
		cs = cs[:len(cs)-1]
		if len(cs) == 0 {
			return n
		}
	}

	last := cs[len(cs)-1]
	class := classify(last)
	if class == classNone {
		return n + 1
	}

	run := 0
	for i := len(cs) - 1; i >= 0; i-- {
		r := cs[i]
		if classify(r) != class {
			break
		}
		if class == classPunct && r != last {
			break
		}
		run++
	}
	return n + run
}

// LineLength returns the number of characters "delete line" removes: the
// characters after the last newline, or the newline itself when the cursor
// sits at the start of a line.
func LineLength(context string) int {
	cs := clusters(context)
	if len(cs) == 0 {
		return 0
	}

	n := 0
	for i := len(cs) - 1; i >= 0 && cs[i] != '\n'; i-- {
		n++
	}
	if n == 0 {
		return 1
	}
	return n
}

// AllLength returns the number of characters in context.
func AllLength(context string) int {
	return uniseg.GraphemeClusterCount(context)
}
