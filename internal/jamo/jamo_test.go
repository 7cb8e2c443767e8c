package jamo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSizes(t *testing.T) {
	assert.Len(t, Leads, 19)
	assert.Len(t, Vowels, 21)
	assert.Len(t, Trails, 28)
	assert.Equal(t, rune(0), Trails[0])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		r    rune
		want Class
	}{
		{'ㄱ', Lead},
		{'ㄸ', Lead},
		{'ㅎ', Lead},
		{'ㅏ', Vowel},
		{'ㅢ', Vowel},
		{'ㄳ', Trail},
		{'ㅀ', Trail},
		{'ㅄ', Trail},
		{'a', Other},
		{'!', Other},
		{'가', Other},
		{0, Other},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Classify(tc.r), "Classify(%q)", tc.r)
	}
}

func TestLeadTrailMembershipDiffers(t *testing.T) {
	// Double consonants that only lead.
	for _, r := range []rune{'ㄸ', 'ㅃ', 'ㅉ'} {
		assert.True(t, IsLead(r), "%q lead", r)
		assert.False(t, IsTrail(r), "%q trail", r)
	}
	// Single consonants that do both.
	for _, r := range []rune{'ㄱ', 'ㄴ', 'ㅅ', 'ㅎ', 'ㄲ', 'ㅆ'} {
		assert.True(t, IsLead(r), "%q lead", r)
		assert.True(t, IsTrail(r), "%q trail", r)
	}
	assert.False(t, IsTrail(0))
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		r    rune
		want Syllable
	}{
		{'가', Syllable{'ㄱ', 'ㅏ', 0}},
		{'각', Syllable{'ㄱ', 'ㅏ', 'ㄱ'}},
		{'갃', Syllable{'ㄱ', 'ㅏ', 'ㄳ'}},
		{'닭', Syllable{'ㄷ', 'ㅏ', 'ㄺ'}},
		{'힣', Syllable{'ㅎ', 'ㅣ', 'ㅎ'}},
		{'ㄱ', Syllable{}},
		{'a', Syllable{}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Decompose(tc.r), "Decompose(%q)", tc.r)
	}
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	for r := rune(SyllableBase); r <= SyllableLast; r++ {
		s := Decompose(r)
		got, err := Compose(s.Lead, s.Vowel, s.Trail)
		require.NoError(t, err)
		if got != r {
			t.Fatalf("round trip %U: got %U", r, got)
		}
	}
}

func TestComposePartial(t *testing.T) {
	r, err := Compose('ㄱ', 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 'ㄱ', r)

	r, err = Compose(0, 'ㅏ', 0)
	require.NoError(t, err)
	assert.Equal(t, 'ㅏ', r)

	r, err = Compose(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, rune(0), r)
}

func TestComposeErrors(t *testing.T) {
	_, err := Compose(0, 'ㅏ', 'ㄱ')
	assert.ErrorIs(t, err, ErrMissingLead)

	_, err = Compose('ㄱ', 0, 'ㄱ')
	assert.ErrorIs(t, err, ErrMissingVowel)

	_, err = Compose('ㄳ', 'ㅏ', 0)
	assert.ErrorIs(t, err, ErrNotLead)

	_, err = Compose('ㄱ', 'ㄱ', 0)
	assert.ErrorIs(t, err, ErrNotVowel)

	_, err = Compose('ㄱ', 'ㅏ', 'ㄸ')
	assert.ErrorIs(t, err, ErrNotTrail)

	assert.Panics(t, func() { MustCompose(0, 'ㅏ', 'ㄱ') })
}

func TestSyllableString(t *testing.T) {
	assert.Equal(t, "갃", Syllable{'ㄱ', 'ㅏ', 'ㄳ'}.String())
	assert.Equal(t, "ㄱ", Syllable{Lead: 'ㄱ'}.String())
	assert.Equal(t, "", Syllable{}.String())
	assert.True(t, Syllable{}.IsZero())
	assert.True(t, Decompose('각').HasTrail())
	assert.False(t, Decompose('가').HasTrail())
}

func TestCompoundTrails(t *testing.T) {
	c, ok := JoinTrail('ㄱ', 'ㅅ')
	require.True(t, ok)
	assert.Equal(t, 'ㄳ', c)

	_, ok = JoinTrail('ㄱ', 'ㄱ')
	assert.False(t, ok)

	count := 0
	for _, r := range Trails {
		if !IsCompoundTrail(r) {
			continue
		}
		count++
		first, second, ok := SplitTrail(r)
		require.True(t, ok)
		joined, ok := JoinTrail(first, second)
		require.True(t, ok)
		assert.Equal(t, r, joined)
		assert.True(t, IsTrail(first))
		assert.True(t, IsLead(second), "second half %q must be able to lead", second)
	}
	assert.Equal(t, 11, count)

	_, _, ok = SplitTrail('ㄱ')
	assert.False(t, ok)
}
