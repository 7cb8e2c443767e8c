package ime

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"hangulkey/internal/composer"
	"hangulkey/internal/config"
	"hangulkey/internal/correction"
	"hangulkey/internal/document"
	"hangulkey/internal/jamo"
	"hangulkey/internal/logging"
	"hangulkey/internal/store"
	"hangulkey/internal/textedit"
)

// ErrNoSession is returned by EndSession when no session is active.
var ErrNoSession = errors.New("no active session")

// Buffer is the host text the engine edits. All positions are relative to
// the cursor; deletion removes one user-perceived character.
type Buffer interface {
	InsertText(text string)
	DeleteBackward()
	ContextBeforeInput() string
}

// Options configures an Engine.
type Options struct {
	// ResumeCommitted allows the syllable before the cursor to be pulled
	// back into composition after a jamo key.
	ResumeCommitted bool

	// Corrector replaces shortcut words on boundaries. Nil disables it.
	Corrector *correction.Corrector

	// Logger receives engine events. Nil means logging.Default().
	Logger *logging.Logger
}

// Summary describes a finished input session.
type Summary struct {
	SessionID   string    `json:"session_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Keystrokes  uint64    `json:"keystrokes"`
	Jamo        uint64    `json:"jamo"`
	Backspaces  uint64    `json:"backspaces"`
	BulkDeletes uint64    `json:"bulk_deletes"`
	Corrections uint64    `json:"corrections"`
	Resets      uint64    `json:"resets"`
}

// ToJSON returns the summary as a JSON string.
func (s *Summary) ToJSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	return string(data), nil
}

type session struct {
	id     string
	start  time.Time
	stats  Summary
	ctx    context.Context
	cancel context.CancelFunc
}

// Engine drives a composer against a Buffer. It is safe for concurrent use;
// every exported method is one atomic step.
type Engine struct {
	mu     sync.Mutex
	buf    Buffer
	comp   *composer.Composer
	opts   Options
	logger *logging.Logger

	decomposable bool
	lastContext  string
	session      *session

	closer func() error
}

// NewEngine creates an engine editing buf.
func NewEngine(buf Buffer, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		buf:         buf,
		comp:        composer.New(hostFor(buf)),
		opts:        opts,
		logger:      logger.WithComponent("ime"),
		lastContext: buf.ContextBeforeInput(),
	}
}

// Open creates an engine configured from cfg. When correction is enabled it
// opens the lexicon store, which Close releases.
func Open(buf Buffer, cfg *config.Config, logger *logging.Logger) (*Engine, error) {
	opts := Options{
		ResumeCommitted: cfg.Composer.ResumeCommitted,
		Logger:          logger,
	}

	var st *store.Store
	if cfg.Correction.Enabled {
		var err error
		st, err = store.Open(cfg.Correction.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("open lexicon: %w", err)
		}
		opts.Corrector = correction.New(cfg.Correction.Custom, st)
	}

	e := NewEngine(buf, opts)
	if st != nil {
		e.closer = st.Close
	}
	return e, nil
}

// Close releases resources opened by Open.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closer == nil {
		return nil
	}
	err := e.closer()
	e.closer = nil
	return err
}

// Configure replaces the engine options. The composition in progress is kept.
func (e *Engine) Configure(opts Options) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if opts.Logger == nil {
		opts.Logger = e.opts.Logger
	}
	e.opts = opts
	if !opts.ResumeCommitted {
		e.decomposable = false
	}
}

// hostFor returns the lookback view of buf.
func hostFor(buf Buffer) composer.Host {
	if h, ok := buf.(composer.Host); ok {
		return h
	}
	return contextHost{buf}
}

// contextHost derives lookback from ContextBeforeInput for buffers that do
// not offer it directly.
type contextHost struct {
	buf Buffer
}

func (h contextHost) PreviousCharacter() (rune, bool) {
	return document.Lookback(h.buf.ContextBeforeInput(), 2)
}

func (h contextHost) JustPreviousCharacter() (rune, bool) {
	return document.Lookback(h.buf.ContextBeforeInput(), 1)
}

// State returns the composer state.
func (e *Engine) State() composer.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.comp.State()
}

// Pending returns the syllable under construction.
func (e *Engine) Pending() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.comp.Pending()
}

// Commit types one character.
func (e *Engine) Commit(r rune) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.syncLocked()

	edit := e.comp.Commit(e.sessionFlags(), r)
	e.apply(edit)
	e.count(func(s *Summary) {
		s.Keystrokes++
		if jamo.IsJamo(r) {
			s.Jamo++
		}
	})

	var err error
	if jamo.IsJamo(r) {
		e.decomposable = e.opts.ResumeCommitted
	} else {
		e.decomposable = false
		if e.opts.Corrector != nil && correction.IsBoundary(r) {
			err = e.correctLocked()
		}
	}

	e.lastContext = e.buf.ContextBeforeInput()
	e.sessionLogger().Debug("commit", "text", string(r), "state", e.comp.State().String(),
		"retract", int(edit.Retract), "split", edit.Split)
	return err
}

// CommitString types each character of s in order.
func (e *Engine) CommitString(s string) error {
	for _, r := range s {
		if err := e.Commit(r); err != nil {
			return err
		}
	}
	return nil
}

// Backspace deletes the most recent jamo of the syllable under construction,
// or one character when nothing is being composed.
func (e *Engine) Backspace() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.syncLocked()
	edit := e.comp.Backspace(e.sessionFlags())
	e.apply(edit)
	e.count(func(s *Summary) { s.Backspaces++ })
	e.lastContext = e.buf.ContextBeforeInput()
}

// DeleteWord deletes the word before the cursor.
func (e *Engine) DeleteWord() {
	e.bulkDelete(textedit.WordLength)
}

// DeleteLine deletes the line before the cursor.
func (e *Engine) DeleteLine() {
	e.bulkDelete(textedit.LineLength)
}

// DeleteAll deletes everything before the cursor.
func (e *Engine) DeleteAll() {
	e.bulkDelete(textedit.AllLength)
}

func (e *Engine) bulkDelete(length func(string) int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.comp.Reset()
	e.decomposable = false

	n := length(e.buf.ContextBeforeInput())
	for i := 0; i < n; i++ {
		e.buf.DeleteBackward()
	}
	e.count(func(s *Summary) { s.BulkDeletes++ })
	e.lastContext = e.buf.ContextBeforeInput()
}

// Reset ends the composition in progress. The pending syllable stays in the
// buffer as committed text and is returned.
func (e *Engine) Reset() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resetLocked()
}

func (e *Engine) resetLocked() string {
	pending := e.comp.Reset()
	e.decomposable = false
	e.lastContext = e.buf.ContextBeforeInput()
	if pending != "" {
		e.count(func(s *Summary) { s.Resets++ })
	}
	return pending
}

// TextDidChange tells the engine the host text may have changed. If the
// text before the cursor is not what the engine last left there, the
// composition is reset.
func (e *Engine) TextDidChange() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
}

func (e *Engine) syncLocked() {
	if ctx := e.buf.ContextBeforeInput(); ctx != e.lastContext {
		e.sessionLogger().Debug("foreign edit, resetting composition")
		e.resetLocked()
	}
}

func (e *Engine) sessionFlags() composer.EditSession {
	return composer.EditSession{Decomposable: e.decomposable}
}

func (e *Engine) apply(edit composer.Edit) {
	if edit.IsNoop() {
		return
	}
	for i := 0; i < edit.Deletes(); i++ {
		e.buf.DeleteBackward()
	}
	if edit.Text != "" {
		e.buf.InsertText(edit.Text)
	}
}

func (e *Engine) correctLocked() error {
	c, ok, err := e.opts.Corrector.Correct(e.buf.ContextBeforeInput())
	if err != nil {
		return fmt.Errorf("correct: %w", err)
	}
	if !ok {
		return nil
	}

	for i := 0; i < c.Deletes; i++ {
		e.buf.DeleteBackward()
	}
	e.buf.InsertText(c.Text)
	e.count(func(s *Summary) { s.Corrections++ })
	e.sessionLogger().Info("replaced word", "source", string(c.Source), "word", c.Word, "replacement", c.Replacement)
	return nil
}

func (e *Engine) count(f func(*Summary)) {
	if e.session != nil {
		f(&e.session.stats)
	}
}

// StartSession begins collecting statistics. A running session is ended
// first and its summary discarded.
func (e *Engine) StartSession() (string, error) {
	id, err := generateSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()
	if e.session != nil {
		e.session.cancel()
	}
	ctx, cancel := context.WithCancel(logging.ContextWithSessionID(context.Background(), id))
	e.session = &session{id: id, start: time.Now(), ctx: ctx, cancel: cancel}
	e.sessionLogger().Info("session started")
	return id, nil
}

// Context returns a context carrying the active session ID. It is cancelled
// when the session ends. Without a session it is context.Background().
func (e *Engine) Context() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return context.Background()
	}
	return e.session.ctx
}

func (e *Engine) sessionLogger() *logging.Logger {
	if e.session == nil {
		return e.logger
	}
	return e.logger.WithContext(e.session.ctx)
}

// HasActiveSession returns true if a session is currently active.
func (e *Engine) HasActiveSession() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// EndSession finalizes the current session and returns its summary.
func (e *Engine) EndSession() (*Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, ErrNoSession
	}

	e.resetLocked()
	sum := e.session.stats
	sum.SessionID = e.session.id
	sum.StartTime = e.session.start
	sum.EndTime = time.Now()

	e.sessionLogger().Info("session ended",
		"keystrokes", sum.Keystrokes, "corrections", sum.Corrections)
	e.session.cancel()
	e.session = nil
	return &sum, nil
}

// generateSessionID creates a unique session identifier.
func generateSessionID() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return time.Now().Format("20060102-150405") + "-" + hex.EncodeToString(b[:]), nil
}
