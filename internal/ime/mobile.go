package ime

import (
	"encoding/json"
	"fmt"
	"time"

	"hangulkey/internal/config"
	"hangulkey/internal/logging"
)

// Mobile platform support via gomobile.
//
// Android: the InputMethodService implements TextDocumentProxy over its
// InputConnection and forwards key presses to MobileEngine.
//
// iOS: the UIInputViewController implements TextDocumentProxy over its
// textDocumentProxy.
//
// Build commands:
//   gomobile bind -target=android -o hangulkey.aar ./internal/ime
//   gomobile bind -target=ios -o Hangulkey.xcframework ./internal/ime

// TextDocumentProxy is the host text field as seen by a mobile keyboard.
type TextDocumentProxy interface {
	InsertText(text string)
	DeleteBackward()
	DocumentContextBeforeInput() string
}

type proxyBuffer struct {
	proxy TextDocumentProxy
}

func (b proxyBuffer) InsertText(text string)     { b.proxy.InsertText(text) }
func (b proxyBuffer) DeleteBackward()            { b.proxy.DeleteBackward() }
func (b proxyBuffer) ContextBeforeInput() string { return b.proxy.DocumentContextBeforeInput() }

// MobileEngine wraps Engine for gomobile export.
// gomobile has limitations on what types can be exported, so we provide
// a simplified interface here.
type MobileEngine struct {
	engine     *Engine
	backspace  *Repeater
	wordDelete *Repeater
}

// NewMobileEngine creates an engine for a keyboard extension. configPath
// may be empty to use the platform default.
func NewMobileEngine(proxy TextDocumentProxy, configPath string) (*MobileEngine, error) {
	cfg, err := config.NewLoader(configPath).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	settings, err := logging.FromSettings(cfg.Logging, "mobile")
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(settings)
	if err != nil {
		return nil, err
	}

	engine, err := Open(proxyBuffer{proxy}, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &MobileEngine{
		engine:     engine,
		backspace:  NewRepeater(cfg.BackspaceRepeat(), engine.Backspace),
		wordDelete: NewRepeater(cfg.WordDeleteRepeat(), engine.DeleteWord),
	}, nil
}

// InsertCharacter types one character given as a Unicode code point.
func (m *MobileEngine) InsertCharacter(char int32) error {
	return m.engine.Commit(rune(char))
}

// Backspace deletes once.
func (m *MobileEngine) Backspace() {
	m.engine.Backspace()
}

// StartBackspaceRepeat begins deleting repeatedly until StopRepeat or the
// end of the session.
func (m *MobileEngine) StartBackspaceRepeat() {
	m.wordDelete.Stop()
	m.backspace.Start(m.engine.Context())
}

// StartWordDeleteRepeat begins deleting words repeatedly until StopRepeat or
// the end of the session.
func (m *MobileEngine) StartWordDeleteRepeat() {
	m.backspace.Stop()
	m.wordDelete.Start(m.engine.Context())
}

// StopRepeat ends any repeat in progress.
func (m *MobileEngine) StopRepeat() {
	m.backspace.Stop()
	m.wordDelete.Stop()
}

// DeleteLine deletes the line before the cursor.
func (m *MobileEngine) DeleteLine() {
	m.engine.DeleteLine()
}

// DeleteAll deletes everything before the cursor.
func (m *MobileEngine) DeleteAll() {
	m.engine.DeleteAll()
}

// TextDidChange must be called when the host reports a text or selection
// change.
func (m *MobileEngine) TextDidChange() {
	m.engine.TextDidChange()
}

// State returns the composition state name.
func (m *MobileEngine) State() string {
	return m.engine.State().String()
}

// StartSession begins an input session and returns its ID.
func (m *MobileEngine) StartSession() (string, error) {
	return m.engine.StartSession()
}

// EndSession ends the session and returns a JSON-encoded summary.
func (m *MobileEngine) EndSession() (string, error) {
	m.StopRepeat()
	sum, err := m.engine.EndSession()
	if err != nil {
		return "", err
	}
	return encodeSummaryJSON(sum)
}

// Close stops repeats and releases the lexicon.
func (m *MobileEngine) Close() error {
	m.StopRepeat()
	return m.engine.Close()
}

// mobileSummary is a JSON-friendly version of Summary for mobile platforms.
type mobileSummary struct {
	SessionID   string `json:"session_id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	DurationMs  int64  `json:"duration_ms"`
	Keystrokes  uint64 `json:"keystrokes"`
	Jamo        uint64 `json:"jamo"`
	Backspaces  uint64 `json:"backspaces"`
	BulkDeletes uint64 `json:"bulk_deletes"`
	Corrections uint64 `json:"corrections"`
}

func encodeSummaryJSON(s *Summary) (string, error) {
	ms := mobileSummary{
		SessionID:   s.SessionID,
		StartTime:   s.StartTime.UTC().Format(time.RFC3339Nano),
		EndTime:     s.EndTime.UTC().Format(time.RFC3339Nano),
		DurationMs:  s.EndTime.Sub(s.StartTime).Milliseconds(),
		Keystrokes:  s.Keystrokes,
		Jamo:        s.Jamo,
		Backspaces:  s.Backspaces,
		BulkDeletes: s.BulkDeletes,
		Corrections: s.Corrections,
	}

	data, err := json.Marshal(ms)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	return string(data), nil
}
