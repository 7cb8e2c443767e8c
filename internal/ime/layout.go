package ime

import (
	"fmt"
	"unicode"

	"hangulkey/internal/config"
)

// Layout maps the characters a physical keyboard produces to the runes fed
// to the composer.
type Layout struct {
	name string
	keys map[rune]rune
}

// Dubeolsik is the standard two-set Korean layout on a QWERTY keyboard.
var Dubeolsik = &Layout{
	name: config.LayoutDubeolsik,
	keys: map[rune]rune{
		'r': 'ㄱ', 'R': 'ㄲ',
		's': 'ㄴ',
		'e': 'ㄷ', 'E': 'ㄸ',
		'f': 'ㄹ',
		'a': 'ㅁ',
		'q': 'ㅂ', 'Q': 'ㅃ',
		't': 'ㅅ', 'T': 'ㅆ',
		'd': 'ㅇ',
		'w': 'ㅈ', 'W': 'ㅉ',
		'c': 'ㅊ',
		'z': 'ㅋ',
		'x': 'ㅌ',
		'v': 'ㅍ',
		'g': 'ㅎ',

		'k': 'ㅏ',
		'o': 'ㅐ', 'O': 'ㅒ',
		'i': 'ㅑ',
		'j': 'ㅓ',
		'p': 'ㅔ', 'P': 'ㅖ',
		'u': 'ㅕ',
		'h': 'ㅗ',
		'y': 'ㅛ',
		'n': 'ㅜ',
		'b': 'ㅠ',
		'm': 'ㅡ',
		'l': 'ㅣ',
	},
}

// Direct passes every character through unchanged, for hosts that already
// deliver compatibility jamo.
var Direct = &Layout{name: config.LayoutDirect}

// LayoutByName returns the named layout.
func LayoutByName(name string) (*Layout, error) {
	switch name {
	case config.LayoutDubeolsik:
		return Dubeolsik, nil
	case config.LayoutDirect:
		return Direct, nil
	default:
		return nil, fmt.Errorf("unknown layout: %s", name)
	}
}

// Name returns the layout name.
func (l *Layout) Name() string {
	return l.name
}

// Translate maps r to the rune to type. Shifted letters without a shifted
// jamo type the unshifted one; anything unmapped passes through.
func (l *Layout) Translate(r rune) rune {
	if l.keys == nil {
		return r
	}
	if j, ok := l.keys[r]; ok {
		return j
	}
	if unicode.IsUpper(r) && r < unicode.MaxASCII {
		if j, ok := l.keys[unicode.ToLower(r)]; ok {
			return j
		}
	}
	return r
}
