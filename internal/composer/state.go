package composer

// State is the position of the composer inside the current syllable.
type State int

const (
	// Empty holds no jamo.
	Empty State = iota
	// HasLead holds a bare leading consonant.
	HasLead
	// HasLeadVowel holds an open syllable without a trailing consonant.
	HasLeadVowel
	// HasLeadVowelTrail holds a full syllable; the trail may be compound.
	HasLeadVowelTrail
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case HasLead:
		return "lead"
	case HasLeadVowel:
		return "lead+vowel"
	case HasLeadVowelTrail:
		return "lead+vowel+trail"
	default:
		return "unknown"
	}
}

// Retract is the number of previously rendered characters an Edit makes
// stale.
type Retract int

const (
	RetractNone Retract = 0
	RetractOne  Retract = 1
	RetractTwo  Retract = 2
)

// Edit is the result of one composer call. The host deletes Deletes()
// characters from the end of its buffer and then inserts Text.
type Edit struct {
	// Text is inserted after the deletions. It may be empty.
	Text string

	// Retract counts stale rendered characters.
	Retract Retract

	// Split is set when a trailing consonant moved to a new syllable and Text
	// holds two blocks that replace the single block previously rendered.
	Split bool
}

// Deletes returns how many characters the host must remove before inserting
// Text. A split replaces one rendered block with two, so only one is removed.
func (e Edit) Deletes() int {
	if e.Split {
		return 1
	}
	return int(e.Retract)
}

// IsNoop reports whether applying e leaves the host buffer untouched.
func (e Edit) IsNoop() bool {
	return e.Text == "" && e.Deletes() == 0
}
