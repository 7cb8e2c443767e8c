package ime

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangulkey/internal/composer"
	"hangulkey/internal/config"
	"hangulkey/internal/correction"
	"hangulkey/internal/document"
	"hangulkey/internal/logging"
	"hangulkey/internal/store"
)

// plainBuffer offers no lookback of its own.
type plainBuffer struct {
	text string
}

func (b *plainBuffer) InsertText(s string) { b.text += s }

func (b *plainBuffer) DeleteBackward() { b.text = document.TrimLast(b.text, 1) }

func (b *plainBuffer) ContextBeforeInput() string { return b.text }

func newTestEngine(t *testing.T, initial string, opts Options) (*Engine, *document.Document) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	doc := document.New(initial)
	return NewEngine(doc, opts), doc
}

func TestEngineComposes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		state composer.State
	}{
		{"two syllables", "ㅎㅏㄴㄱㅡㄹ", "한글", composer.HasLeadVowelTrail},
		{"trail moves to next syllable", "ㄱㅏㄴㅏ", "가나", composer.HasLeadVowel},
		{"compound trail splits", "ㄷㅏㄹㄱㅏ", "달가", composer.HasLeadVowel},
		{"punctuation ends syllable", "ㄱㅏ.", "가.", composer.Empty},
		{"latin passes through", "abc", "abc", composer.Empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, doc := newTestEngine(t, "", Options{ResumeCommitted: true})
			require.NoError(t, e.CommitString(tt.input))
			assert.Equal(t, tt.want, doc.String())
			assert.Equal(t, tt.state, e.State())
		})
	}
}

func TestEngineBackspaceMergesBack(t *testing.T) {
	e, doc := newTestEngine(t, "", Options{ResumeCommitted: true})
	require.NoError(t, e.CommitString("ㄱㅏㄴㅏ"))

	e.Backspace()
	assert.Equal(t, "간", doc.String())
	assert.Equal(t, composer.HasLeadVowelTrail, e.State())

	e.Backspace()
	assert.Equal(t, "가", doc.String())
}

func TestEngineBackspaceWithoutResume(t *testing.T) {
	e, doc := newTestEngine(t, "", Options{ResumeCommitted: false})
	require.NoError(t, e.CommitString("ㄱㅏㄴㅏ"))

	e.Backspace()
	assert.Equal(t, "가ㄴ", doc.String())
	assert.Equal(t, composer.HasLead, e.State())
}

func TestEngineBackspaceReentersPreviousSyllable(t *testing.T) {
	e, doc := newTestEngine(t, "", Options{ResumeCommitted: true})
	require.NoError(t, e.CommitString("ㄱㅏㄷㄱ"))
	require.Equal(t, "갇ㄱ", doc.String())

	e.Backspace()
	assert.Equal(t, "갇", doc.String())
	assert.Equal(t, composer.HasLeadVowelTrail, e.State())

	e.Backspace()
	assert.Equal(t, "가", doc.String())
}

func TestEngineConfigureDisablesResume(t *testing.T) {
	e, doc := newTestEngine(t, "", Options{ResumeCommitted: true})
	require.NoError(t, e.CommitString("ㄱㅏㄴㅏ"))

	e.Configure(Options{ResumeCommitted: false})
	e.Backspace()
	assert.Equal(t, "가ㄴ", doc.String())
}

func TestEngineContextHost(t *testing.T) {
	buf := &plainBuffer{}
	e := NewEngine(buf, Options{ResumeCommitted: true, Logger: logging.Discard()})

	require.NoError(t, e.CommitString("ㄱㅏㄴㅏ"))
	require.Equal(t, "가나", buf.text)

	e.Backspace()
	assert.Equal(t, "간", buf.text)
}

func TestEngineForeignEditResets(t *testing.T) {
	e, doc := newTestEngine(t, "", Options{ResumeCommitted: true})
	require.NoError(t, e.CommitString("ㄱㅏ"))

	doc.SetContext("다른")
	require.NoError(t, e.Commit('ㄴ'))

	assert.Equal(t, "다른ㄴ", doc.String())
	assert.Equal(t, composer.HasLead, e.State())
}

func TestEngineTextDidChange(t *testing.T) {
	e, doc := newTestEngine(t, "", Options{})
	require.NoError(t, e.CommitString("ㄱㅏ"))

	e.TextDidChange()
	assert.Equal(t, composer.HasLeadVowel, e.State(), "unchanged text keeps composition")

	doc.InsertText("x")
	e.TextDidChange()
	assert.Equal(t, composer.Empty, e.State())
}

func TestEngineReset(t *testing.T) {
	e, doc := newTestEngine(t, "", Options{ResumeCommitted: true})
	require.NoError(t, e.CommitString("ㅎㅏㄴ"))

	assert.Equal(t, "한", e.Reset())
	assert.Equal(t, "한", doc.String())
	assert.Equal(t, composer.Empty, e.State())
	assert.Empty(t, e.Reset())

	require.NoError(t, e.Commit('ㅏ'))
	assert.Equal(t, "한ㅏ", doc.String(), "reset blocks resuming the committed syllable")
}

func TestEngineBulkDelete(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		del     func(*Engine)
		want    string
	}{
		{"word", "안녕 하세요", (*Engine).DeleteWord, "안녕 "},
		{"word with trailing space", "안녕 ", (*Engine).DeleteWord, ""},
		{"line", "첫줄\n둘째", (*Engine).DeleteLine, "첫줄\n"},
		{"all", "첫줄\n둘째", (*Engine).DeleteAll, ""},
		{"empty", "", (*Engine).DeleteWord, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, doc := newTestEngine(t, tt.initial, Options{})
			tt.del(e)
			assert.Equal(t, tt.want, doc.String())
			assert.Equal(t, composer.Empty, e.State())
		})
	}
}

func TestEngineBulkDeleteEndsComposition(t *testing.T) {
	e, doc := newTestEngine(t, "", Options{ResumeCommitted: true})
	require.NoError(t, e.CommitString("ㄱㅏ ㄴㅏ"))

	e.DeleteWord()
	assert.Equal(t, "가 ", doc.String())

	require.NoError(t, e.Commit('ㅏ'))
	assert.Equal(t, "가 ㅏ", doc.String())
}

func TestEngineCorrection(t *testing.T) {
	corrector := correction.New(map[string]string{"과아수쇗": "과일 주스"}, nil)
	e, doc := newTestEngine(t, "맛있는 과아수쇗", Options{Corrector: corrector})

	_, err := e.StartSession()
	require.NoError(t, err)

	require.NoError(t, e.Commit(' '))
	assert.Equal(t, "맛있는 과일 주스 ", doc.String())

	sum, err := e.EndSession()
	require.NoError(t, err)
	assert.EqualValues(t, 1, sum.Corrections)
}

func TestEngineCorrectionOnlyOnBoundary(t *testing.T) {
	corrector := correction.New(map[string]string{"ㄱㅅ": "감사합니다"}, nil)
	e, doc := newTestEngine(t, "", Options{Corrector: corrector})

	require.NoError(t, e.CommitString("ㄱㅅ"))
	assert.Equal(t, "ㄱㅅ", doc.String())

	require.NoError(t, e.Commit('!'))
	assert.Equal(t, "감사합니다!", doc.String())
}

func TestOpenWithLexicon(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Correction.LexiconPath = filepath.Join(t.TempDir(), "lexicon.db")
	cfg.Correction.Custom = nil

	st, err := store.Open(cfg.Correction.LexiconPath)
	require.NoError(t, err)
	require.NoError(t, st.Put(store.Entry{UserInput: "ㄱㅅ", DocumentText: "감사합니다"}))
	require.NoError(t, st.Close())

	doc := document.New("")
	e, err := Open(doc, cfg, logging.Discard())
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.CommitString("ㄱㅅ."))
	assert.Equal(t, "감사합니다.", doc.String())

	require.NoError(t, e.Close())
	require.NoError(t, e.Close(), "second Close is a no-op")
}

func TestOpenWithoutCorrection(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Correction.Enabled = false
	cfg.Correction.LexiconPath = filepath.Join(t.TempDir(), "missing", "lexicon.db")

	doc := document.New("")
	e, err := Open(doc, cfg, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, e.CommitString("과아수쇗 "))
	assert.Equal(t, "과아수쇗 ", doc.String())
	assert.NoFileExists(t, cfg.Correction.LexiconPath)
	require.NoError(t, e.Close())
}

func TestEngineSession(t *testing.T) {
	e, _ := newTestEngine(t, "", Options{ResumeCommitted: true})

	_, err := e.EndSession()
	require.ErrorIs(t, err, ErrNoSession)

	id, err := e.StartSession()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.True(t, e.HasActiveSession())

	require.NoError(t, e.CommitString("ㄱㅏ "))
	e.Backspace()
	e.DeleteWord()
	require.NoError(t, e.CommitString("ㄴ"))

	sum, err := e.EndSession()
	require.NoError(t, err)
	assert.False(t, e.HasActiveSession())

	assert.Equal(t, id, sum.SessionID)
	assert.EqualValues(t, 4, sum.Keystrokes)
	assert.EqualValues(t, 3, sum.Jamo)
	assert.EqualValues(t, 1, sum.Backspaces)
	assert.EqualValues(t, 1, sum.BulkDeletes)
	assert.EqualValues(t, 1, sum.Resets, "ending the session commits the pending lead")
	assert.False(t, sum.EndTime.Before(sum.StartTime))

	out, err := sum.ToJSON()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, id, decoded["session_id"])
}

func TestEngineStartSessionReplaces(t *testing.T) {
	e, _ := newTestEngine(t, "", Options{})

	first, err := e.StartSession()
	require.NoError(t, err)
	require.NoError(t, e.CommitString("ㄱ"))

	second, err := e.StartSession()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, composer.Empty, e.State())

	sum, err := e.EndSession()
	require.NoError(t, err)
	assert.Zero(t, sum.Keystrokes)
	assert.Zero(t, sum.Resets)
}

func TestEngineCountsOnlyInSession(t *testing.T) {
	e, _ := newTestEngine(t, "", Options{})
	require.NoError(t, e.CommitString("ㄱㅏ"))

	_, err := e.StartSession()
	require.NoError(t, err)
	sum, err := e.EndSession()
	require.NoError(t, err)
	assert.Zero(t, sum.Keystrokes)
}

func TestEngineSessionContext(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&logging.Config{Writer: &buf, Format: logging.FormatJSON, Level: logging.LevelInfo})
	require.NoError(t, err)

	e, _ := newTestEngine(t, "", Options{Logger: logger})
	assert.Empty(t, logging.SessionIDFromContext(e.Context()))

	id, err := e.StartSession()
	require.NoError(t, err)

	ctx := e.Context()
	assert.Equal(t, id, logging.SessionIDFromContext(ctx))
	assert.NoError(t, ctx.Err())

	_, err = e.EndSession()
	require.NoError(t, err)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, id, entry["session_id"], "log line %s", line)
	}
}
