package jamo

import (
	"errors"
	"fmt"
)

// Unicode layout of the precomposed Hangul Syllables block.
const (
	SyllableBase = 0xAC00
	SyllableLast = SyllableBase + syllableCount - 1 // 0xD7A3

	vowelCount    = 21
	trailCount    = 28
	leadStride    = vowelCount * trailCount // 588
	syllableCount = 19 * leadStride
)

// Composition errors.
var (
	ErrMissingLead  = errors.New("jamo: trail or vowel without lead")
	ErrMissingVowel = errors.New("jamo: trail without vowel")
	ErrNotLead      = errors.New("jamo: not a leading consonant")
	ErrNotVowel     = errors.New("jamo: not a vowel")
	ErrNotTrail     = errors.New("jamo: not a trailing consonant")
)

// Syllable is a precomposed syllable split into its jamo. A zero field means
// the slot is empty.
type Syllable struct {
	Lead  rune
	Vowel rune
	Trail rune
}

// IsZero reports whether s holds no jamo at all.
func (s Syllable) IsZero() bool {
	return s == Syllable{}
}

// HasTrail reports whether s carries a trailing consonant.
func (s Syllable) HasTrail() bool {
	return s.Trail != 0
}

// toRune composes s back into a single rune.
func (s Syllable) toRune() (rune, error) {
	return Compose(s.Lead, s.Vowel, s.Trail)
}

func (s Syllable) String() string {
	r, err := s.toRune()
	if err != nil {
		return fmt.Sprintf("{%q %q %q}", s.Lead, s.Vowel, s.Trail)
	}
	if r == 0 {
		return ""
	}
	return string(r)
}

// IsSyllable reports whether r lies in the precomposed syllable block.
func IsSyllable(r rune) bool {
	return r >= SyllableBase && r <= SyllableLast
}

// Decompose splits a precomposed syllable into lead, vowel and trail. Runes
// outside the syllable block yield the zero Syllable.
func Decompose(r rune) Syllable {
	if !IsSyllable(r) {
		return Syllable{}
	}
	base := int(r - SyllableBase)
	return Syllable{
		Lead:  Leads[base/leadStride],
		Vowel: Vowels[(base%leadStride)/trailCount],
		Trail: Trails[base%trailCount],
	}
}

// Compose builds the rune for the given jamo. With only a lead (or only a
// vowel) the bare jamo itself is returned; with nothing at all it returns 0.
// A trail requires both lead and vowel.
func Compose(lead, vowel, trail rune) (rune, error) {
	if trail != 0 {
		if lead == 0 {
			return 0, ErrMissingLead
		}
		if vowel == 0 {
			return 0, ErrMissingVowel
		}
	}

	switch {
	case lead == 0 && vowel == 0:
		return 0, nil
	case vowel == 0:
		if !IsLead(lead) {
			return 0, fmt.Errorf("%w: %q", ErrNotLead, lead)
		}
		return lead, nil
	case lead == 0:
		if !IsVowel(vowel) {
			return 0, fmt.Errorf("%w: %q", ErrNotVowel, vowel)
		}
		return vowel, nil
	}

	li, ok := leadIndex[lead]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotLead, lead)
	}
	vi, ok := vowelIndex[vowel]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotVowel, vowel)
	}
	ti := 0
	if trail != 0 {
		if ti, ok = trailIndex[trail]; !ok {
			return 0, fmt.Errorf("%w: %q", ErrNotTrail, trail)
		}
	}

	return rune(SyllableBase + li*leadStride + vi*trailCount + ti), nil
}

// MustCompose is Compose for callers that already hold valid jamo. It panics
// on error, which indicates a broken invariant in the caller.
func MustCompose(lead, vowel, trail rune) rune {
	r, err := Compose(lead, vowel, trail)
	if err != nil {
		panic(err)
	}
	return r
}
