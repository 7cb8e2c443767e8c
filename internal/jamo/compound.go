package jamo

// compoundTrails is the single source for both directions of the compound
// trailing consonant table.
var compoundTrails = [...]struct {
	first, second, compound rune
}{
	{'ㄱ', 'ㅅ', 'ㄳ'},
	{'ㄴ', 'ㅈ', 'ㄵ'},
	{'ㄴ', 'ㅎ', 'ㄶ'},
	{'ㄹ', 'ㄱ', 'ㄺ'},
	{'ㄹ', 'ㅁ', 'ㄻ'},
	{'ㄹ', 'ㅂ', 'ㄼ'},
	{'ㄹ', 'ㅅ', 'ㄽ'},
	{'ㄹ', 'ㅌ', 'ㄾ'},
	{'ㄹ', 'ㅍ', 'ㄿ'},
	{'ㄹ', 'ㅎ', 'ㅀ'},
	{'ㅂ', 'ㅅ', 'ㅄ'},
}

var (
	trailJoin  = make(map[[2]rune]rune, len(compoundTrails))
	trailSplit = make(map[rune][2]rune, len(compoundTrails))
)

func init() {
	for _, c := range compoundTrails {
		trailJoin[[2]rune{c.first, c.second}] = c.compound
		trailSplit[c.compound] = [2]rune{c.first, c.second}
	}
}

// JoinTrail returns the compound trail formed by first followed by second.
func JoinTrail(first, second rune) (rune, bool) {
	c, ok := trailJoin[[2]rune{first, second}]
	return c, ok
}

// SplitTrail returns the two halves of a compound trail.
func SplitTrail(compound rune) (first, second rune, ok bool) {
	pair, ok := trailSplit[compound]
	if !ok {
		return 0, 0, false
	}
	return pair[0], pair[1], true
}

// IsCompoundTrail reports whether r is one of the eleven compound trails.
func IsCompoundTrail(r rune) bool {
	_, ok := trailSplit[r]
	return ok
}
