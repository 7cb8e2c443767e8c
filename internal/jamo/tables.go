// Package jamo holds the Hangul jamo tables and the pure functions that move
// between individual jamo and precomposed syllable blocks.
//
// All jamo are Hangul Compatibility Jamo (U+3131–U+3163), which is what
// keyboards emit and what text fields display for a bare consonant or vowel.
// The same glyph may serve as a lead and as a trail (ㄱ), only as a lead (ㄸ)
// or only as a trail (ㄳ); membership is decided by table lookup.
package jamo

// Class is the role a rune can play in syllable composition.
type Class int

const (
	// Other is any rune that is not a compatibility jamo.
	Other Class = iota
	// Lead is a consonant that can begin a syllable.
	Lead
	// Vowel is a medial vowel.
	Vowel
	// Trail is a consonant that can only close a syllable (compound trails).
	Trail
)

func (c Class) String() string {
	switch c {
	case Lead:
		return "lead"
	case Vowel:
		return "vowel"
	case Trail:
		return "trail"
	default:
		return "other"
	}
}

// Leads lists the 19 leading consonants in Unicode syllable order.
var Leads = [...]rune{
	'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
	'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

// Vowels lists the 21 medial vowels in Unicode syllable order.
var Vowels = [...]rune{
	'ㅏ', 'ㅐ', 'ㅑ', 'ㅒ', 'ㅓ', 'ㅔ', 'ㅕ', 'ㅖ', 'ㅗ', 'ㅘ', 'ㅙ',
	'ㅚ', 'ㅛ', 'ㅜ', 'ㅝ', 'ㅞ', 'ㅟ', 'ㅠ', 'ㅡ', 'ㅢ', 'ㅣ',
}

// Trails lists the 28 trailing slots in Unicode syllable order. Index 0 is
// the empty trail.
var Trails = [...]rune{
	0, 'ㄱ', 'ㄲ', 'ㄳ', 'ㄴ', 'ㄵ', 'ㄶ', 'ㄷ', 'ㄹ', 'ㄺ', 'ㄻ', 'ㄼ', 'ㄽ', 'ㄾ',
	'ㄿ', 'ㅀ', 'ㅁ', 'ㅂ', 'ㅄ', 'ㅅ', 'ㅆ', 'ㅇ', 'ㅈ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

var (
	leadIndex  = indexOf(Leads[:], false)
	vowelIndex = indexOf(Vowels[:], false)
	trailIndex = indexOf(Trails[:], true)
)

func indexOf(table []rune, skipZero bool) map[rune]int {
	idx := make(map[rune]int, len(table))
	for i, r := range table {
		if skipZero && r == 0 {
			continue
		}
		idx[r] = i
	}
	return idx
}

// IsLead reports whether r can begin a syllable.
func IsLead(r rune) bool {
	_, ok := leadIndex[r]
	return ok
}

// IsVowel reports whether r is a medial vowel.
func IsVowel(r rune) bool {
	_, ok := vowelIndex[r]
	return ok
}

// IsTrail reports whether r can close a syllable. The empty trail is not a
// trail.
func IsTrail(r rune) bool {
	_, ok := trailIndex[r]
	return ok
}

// IsJamo reports whether r appears in any of the tables.
func IsJamo(r rune) bool {
	return IsLead(r) || IsVowel(r) || IsTrail(r)
}

// Classify returns the primary class of r. Consonants that can both begin
// and close a syllable classify as Lead; callers that care about the trailing
// role ask IsTrail directly.
func Classify(r rune) Class {
	switch {
	case IsVowel(r):
		return Vowel
	case IsLead(r):
		return Lead
	case IsTrail(r):
		return Trail
	default:
		return Other
	}
}
