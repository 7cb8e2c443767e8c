package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangulkey/internal/document"
	"hangulkey/internal/ime"
	"hangulkey/internal/logging"
)

func newEngine(t *testing.T) (*ime.Engine, *document.Document) {
	t.Helper()
	doc := document.New("")
	return ime.NewEngine(doc, ime.Options{ResumeCommitted: true, Logger: logging.Discard()}), doc
}

func TestCompose(t *testing.T) {
	tests := []struct {
		keys string
		want string
	}{
		{"gksrmf", "한글"},
		{"dkssud<", "안녀"},
		{"rk<<", ""},
		{"rksk<", "간"},
		{"dkssudgktpdy!", "안녕하세요!"},
	}

	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			engine, doc := newEngine(t)
			require.NoError(t, compose(engine, ime.Dubeolsik, tt.keys))
			assert.Equal(t, tt.want, doc.String())
		})
	}
}

func TestInteract(t *testing.T) {
	engine, doc := newEngine(t)
	in := bufio.NewReader(strings.NewReader("gks\x7frk\rdkssud\x17rk\x04"))
	var out bytes.Buffer

	require.NoError(t, interact(in, &out, engine, doc, ime.Dubeolsik))
	assert.Equal(t, "하가\n가", doc.String())
	assert.Contains(t, out.String(), "\r\x1b[K하")
}

func TestReadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shortcuts.json")
	data := `[{"user_input": "ㄱㅅ", "document_text": "감사합니다"}, {"user_input": "ㅇㅋ", "document_text": "오케이"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	entries, err := readEntries(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ㄱㅅ", entries[0].UserInput)
	assert.Equal(t, "오케이", entries[1].DocumentText)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))
	_, err = readEntries(path)
	assert.Error(t, err)
}

func useTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := *configPath
	*configPath = filepath.Join(dir, "config.toml")
	t.Cleanup(func() { *configPath = old })
	t.Setenv("HANGULKEY_LEXICON_PATH", filepath.Join(dir, "lexicon.db"))
	return dir
}

func TestCmdLexiconGet(t *testing.T) {
	useTempConfig(t)

	require.NoError(t, cmdLexicon([]string{"add", "ㄱㅅ", "감사합니다"}))
	require.NoError(t, cmdLexicon([]string{"get", "ㄱㅅ"}))

	err := cmdLexicon([]string{"get", "ㅇㅋ"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no shortcut")

	require.Error(t, cmdLexicon([]string{"get"}))
	require.NoError(t, cmdLexicon([]string{"rm", "ㄱㅅ"}))
	require.Error(t, cmdLexicon([]string{"get", "ㄱㅅ"}))
}

func TestCmdConfigCheck(t *testing.T) {
	useTempConfig(t)
	require.NoError(t, cmdConfig([]string{"check"}))

	require.NoError(t, os.WriteFile(*configPath, []byte("[logging]\nlevel = \"loud\"\n"), 0600))
	require.Error(t, cmdConfig([]string{"check"}))
}
