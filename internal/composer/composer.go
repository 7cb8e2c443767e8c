// Package composer implements the Hangul syllable composition state machine.
//
// A Composer consumes jamo one at a time and reports, for each call, the text
// to render and how much previously rendered text it replaces:
//
//	ㄱ  -> "ㄱ"  retract 0   (HasLead)
//	ㅏ  -> "가"  retract 1   (HasLeadVowel)
//	ㄴ  -> "간"  retract 1   (HasLeadVowelTrail)
//	ㅣ  -> "가니" retract 2  (HasLeadVowel, ㄴ now leads 니)
//
// Backspace walks the same graph in reverse and, when the host says the text
// before the cursor is still part of this session, reaches back into the
// previous syllable.
//
// The composer holds no reference to the buffer contents beyond the Host
// lookback; applying Edits is the caller's job.
package composer

import (
	"hangulkey/internal/jamo"
)

// Composer holds the syllable currently being edited.
type Composer struct {
	host  Host
	state State

	lead  rune
	vowel rune
	trail rune

	// double remembers the halves of a compound trail so backspace and a
	// following vowel can take it apart again.
	double [2]rune
}

// Snapshot is a read-only view of the composer.
type Snapshot struct {
	State       State
	Lead        rune
	Vowel       rune
	Trail       rune
	DoubleTrail [2]rune
}

// New creates a composer reading lookback characters from host. host may be
// nil, in which case the composer never reaches into committed text.
func New(host Host) *Composer {
	return &Composer{host: host}
}

// State returns the current state.
func (c *Composer) State() State {
	return c.state
}

// Snapshot returns the held jamo.
func (c *Composer) Snapshot() Snapshot {
	return Snapshot{
		State:       c.state,
		Lead:        c.lead,
		Vowel:       c.vowel,
		Trail:       c.trail,
		DoubleTrail: c.double,
	}
}

// Pending returns the text of the syllable being edited.
func (c *Composer) Pending() string {
	switch c.state {
	case HasLead:
		return string(c.lead)
	case HasLeadVowel:
		return string(jamo.MustCompose(c.lead, c.vowel, 0))
	case HasLeadVowelTrail:
		return string(jamo.MustCompose(c.lead, c.vowel, c.trail))
	default:
		return ""
	}
}

// Reset finalizes the pending syllable and returns to Empty. The returned
// text is what the host already shows; it stays in the buffer as is.
func (c *Composer) Reset() string {
	pending := c.Pending()
	c.clear()
	return pending
}

func (c *Composer) clear() {
	c.state = Empty
	c.lead, c.vowel, c.trail = 0, 0, 0
	c.double = [2]rune{}
}

// Commit feeds one character. Non-jamo characters finalize the pending
// syllable and pass through as plain text.
func (c *Composer) Commit(sess EditSession, r rune) Edit {
	if !jamo.IsJamo(r) {
		c.clear()
		return Edit{Text: string(r)}
	}

	if c.state == Empty && sess.Decomposable {
		c.resume()
	}

	switch c.state {
	case HasLead:
		return c.commitAfterLead(r)
	case HasLeadVowel:
		return c.commitAfterVowel(r)
	case HasLeadVowelTrail:
		return c.commitAfterTrail(r)
	default:
		return c.commitEmpty(r)
	}
}

func (c *Composer) commitEmpty(r rune) Edit {
	if jamo.IsLead(r) {
		return c.startLead(r)
	}
	// Vowels and trail-only consonants cannot start a syllable.
	return Edit{Text: string(r)}
}

func (c *Composer) commitAfterLead(r rune) Edit {
	switch {
	case jamo.IsVowel(r):
		c.vowel = r
		c.state = HasLeadVowel
		return Edit{Text: c.Pending(), Retract: RetractOne}
	case jamo.IsLead(r):
		return c.startLead(r)
	default:
		c.clear()
		return Edit{Text: string(r)}
	}
}

func (c *Composer) commitAfterVowel(r rune) Edit {
	switch {
	case jamo.IsTrail(r):
		c.trail = r
		c.state = HasLeadVowelTrail
		return Edit{Text: c.Pending(), Retract: RetractOne}
	case jamo.IsLead(r):
		return c.startLead(r)
	default:
		c.clear()
		return Edit{Text: string(r)}
	}
}

func (c *Composer) commitAfterTrail(r rune) Edit {
	if compound, ok := jamo.JoinTrail(c.trail, r); ok {
		c.double = [2]rune{c.trail, r}
		c.trail = compound
		return Edit{Text: c.Pending(), Retract: RetractOne}
	}

	switch {
	case jamo.IsVowel(r):
		return c.splitTrail(r)
	case jamo.IsLead(r):
		return c.startLead(r)
	default:
		c.clear()
		return Edit{Text: string(r)}
	}
}

// splitTrail moves the trailing consonant (or the second half of a compound
// trail) to lead a new syllable with vowel v.
func (c *Composer) splitTrail(v rune) Edit {
	keep, next := rune(0), c.trail
	if first, second, ok := c.trailHalves(); ok {
		keep, next = first, second
	}

	head := jamo.MustCompose(c.lead, c.vowel, keep)

	c.lead, c.vowel, c.trail = next, v, 0
	c.double = [2]rune{}
	c.state = HasLeadVowel

	return Edit{
		Text:    string(head) + c.Pending(),
		Retract: RetractTwo,
		Split:   true,
	}
}

func (c *Composer) startLead(r rune) Edit {
	c.clear()
	c.lead = r
	c.state = HasLead
	return Edit{Text: string(r)}
}

// trailHalves returns the halves of the current trail if it is compound.
func (c *Composer) trailHalves() (first, second rune, ok bool) {
	if c.double != [2]rune{} {
		return c.double[0], c.double[1], true
	}
	return jamo.SplitTrail(c.trail)
}

// Backspace removes the most recently added jamo. From Empty it asks the host
// for a plain one-character deletion and touches nothing else.
func (c *Composer) Backspace(sess EditSession) Edit {
	switch c.state {
	case HasLeadVowelTrail:
		if first, _, ok := c.trailHalves(); ok {
			c.trail = first
			c.double = [2]rune{}
			return Edit{Text: c.Pending(), Retract: RetractOne}
		}
		c.trail = 0
		c.state = HasLeadVowel
		return Edit{Text: c.Pending(), Retract: RetractOne}

	case HasLeadVowel:
		if sess.Decomposable {
			if e, ok := c.mergeBack(); ok {
				return e
			}
		}
		c.vowel = 0
		c.state = HasLead
		return Edit{Text: c.Pending(), Retract: RetractOne}

	case HasLead:
		if sess.Decomposable {
			if prev, ok := c.previousSyllable(); ok {
				c.load(prev)
				return Edit{Text: c.Pending(), Retract: RetractTwo}
			}
		}
		c.clear()
		return Edit{Retract: RetractOne}

	default:
		return Edit{Retract: RetractOne}
	}
}

// mergeBack drops the vowel of the current syllable and folds the orphaned
// lead into the previous committed syllable as its trail: "가나" -> "간",
// "갈가" -> "갉".
func (c *Composer) mergeBack() (Edit, bool) {
	prev, ok := c.previousSyllable()
	if !ok {
		return Edit{}, false
	}

	var (
		trail  rune
		double [2]rune
	)
	switch {
	case !prev.HasTrail() && jamo.IsTrail(c.lead):
		trail = c.lead
	case prev.HasTrail():
		compound, ok := jamo.JoinTrail(prev.Trail, c.lead)
		if !ok {
			return Edit{}, false
		}
		trail = compound
		double = [2]rune{prev.Trail, c.lead}
	default:
		return Edit{}, false
	}

	c.lead, c.vowel, c.trail = prev.Lead, prev.Vowel, trail
	c.double = double
	c.state = HasLeadVowelTrail
	return Edit{Text: c.Pending(), Retract: RetractTwo}, true
}

// previousSyllable decomposes the committed character before the one being
// edited.
func (c *Composer) previousSyllable() (jamo.Syllable, bool) {
	if c.host == nil {
		return jamo.Syllable{}, false
	}
	r, ok := c.host.PreviousCharacter()
	if !ok {
		return jamo.Syllable{}, false
	}
	s := jamo.Decompose(r)
	return s, !s.IsZero()
}

// resume re-enters the full syllable directly before the cursor.
func (c *Composer) resume() {
	if c.host == nil {
		return
	}
	r, ok := c.host.JustPreviousCharacter()
	if !ok {
		return
	}
	if s := jamo.Decompose(r); !s.IsZero() {
		c.load(s)
	}
}

func (c *Composer) load(s jamo.Syllable) {
	c.clear()
	c.lead, c.vowel, c.trail = s.Lead, s.Vowel, s.Trail
	c.state = HasLeadVowel
	if s.HasTrail() {
		c.state = HasLeadVowelTrail
		if jamo.IsCompoundTrail(s.Trail) {
			first, second, _ := jamo.SplitTrail(s.Trail)
			c.double = [2]rune{first, second}
		}
	}
}
