package textedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordLength(t *testing.T) {
	tests := []struct {
		name    string
		context string
		want    int
	}{
		{"empty", "", 0},
		{"syllables", "안녕 하세요", 3},
		{"syllables with trailing space", "안녕 하세요 ", 4},
		{"trailing newline", "hello\n", 6},
		{"only space", " ", 1},
		{"latin after hangul", "한글abc", 3},
		{"hangul after latin", "abc한글", 2},
		{"consonants", "ㅋㅋㅋ", 3},
		{"vowels after consonants", "ㅋㅋㅠㅠ", 2},
		{"digits", "call 0102", 4},
		{"repeated punctuation", "wow!!!", 3},
		{"mixed punctuation", "what?!", 1},
		{"unclassified", "ok ~", 1},
		{"emoji", "hi🙂", 1},
		{"combining mark stays with its letter", "ae\u0301", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WordLength(tc.context))
		})
	}
}

func TestLineLength(t *testing.T) {
	tests := []struct {
		context string
		want    int
	}{
		{"", 0},
		{"한 줄", 3},
		{"first\n둘째 줄", 4},
		{"first\n", 1},
		{"\n\n", 1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, LineLength(tc.context), "LineLength(%q)", tc.context)
	}
}

func TestAllLength(t *testing.T) {
	assert.Equal(t, 0, AllLength(""))
	assert.Equal(t, 5, AllLength("가나 ab"))
	assert.Equal(t, 2, AllLength("a\U0001F1F0\U0001F1F7"))
}
