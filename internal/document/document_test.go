package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangulkey/internal/composer"
)

var _ composer.Host = (*Document)(nil)

func TestInsertDelete(t *testing.T) {
	d := New("")
	d.InsertText("가나")
	d.InsertText("")
	assert.Equal(t, "가나", d.ContextBeforeInput())
	assert.Equal(t, 2, d.Len())

	d.DeleteBackward()
	assert.Equal(t, "가", d.String())
	d.DeleteBackward()
	d.DeleteBackward()
	assert.Equal(t, "", d.String())
	assert.Equal(t, 0, d.Len())
}

func TestDeleteBackwardGrapheme(t *testing.T) {
	// e + combining acute, then a flag made of two regional indicators.
	d := New("")
	d.InsertText("ae\u0301\U0001F1F0\U0001F1F7")
	require.Equal(t, 3, d.Len())

	d.DeleteBackward()
	assert.Equal(t, "ae\u0301", d.String())
	d.DeleteBackward()
	assert.Equal(t, "a", d.String())
}

func TestLookback(t *testing.T) {
	d := New("abc가나")

	r, ok := d.JustPreviousCharacter()
	require.True(t, ok)
	assert.Equal(t, '나', r)

	r, ok = d.PreviousCharacter()
	require.True(t, ok)
	assert.Equal(t, '가', r)

	_, ok = Lookback("a", 2)
	assert.False(t, ok)
	_, ok = Lookback("", 1)
	assert.False(t, ok)
	_, ok = Lookback("abc", 0)
	assert.False(t, ok)
}

func TestSetContextNormalizes(t *testing.T) {
	d := New("")
	// Conjoining jamo ᄀ ᅡ ᆫ.
	d.SetContext("\u1100\u1161\u11ab")
	assert.Equal(t, "간", d.String())

	r, ok := d.JustPreviousCharacter()
	require.True(t, ok)
	assert.Equal(t, '간', r)
}

func TestLookbackConjoiningCluster(t *testing.T) {
	r, ok := Lookback("x\u1100\u1161", 1)
	require.True(t, ok)
	assert.Equal(t, '가', r)
}

func TestLongContext(t *testing.T) {
	long := strings.Repeat("가", 500) + "나"
	r, ok := Lookback(long, 2)
	require.True(t, ok)
	assert.Equal(t, '가', r)

	assert.Equal(t, strings.Repeat("가", 499), TrimLast(long, 2))
	assert.Equal(t, "", TrimLast("가나", 5))
	assert.Equal(t, "가나", TrimLast("가나", 0))

	// Enough clusters to force the window to grow.
	assert.Equal(t, "", TrimLast(long, 501))
}
