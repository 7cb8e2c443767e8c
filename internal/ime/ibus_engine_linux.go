//go:build linux

package ime

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/godbus/dbus/v5"

	"hangulkey/internal/config"
	"hangulkey/internal/correction"
	"hangulkey/internal/document"
	"hangulkey/internal/logging"
	"hangulkey/internal/store"
)

// IBus D-Bus constants
const (
	IBusFactoryPath      = "/org/freedesktop/IBus/Factory"
	IBusFactoryInterface = "org.freedesktop.IBus.Factory"
	IBusEngineInterface  = "org.freedesktop.IBus.Engine"
	IBusServiceInterface = "org.freedesktop.IBus.Service"
	ibusEnginePathPrefix = "/org/freedesktop/IBus/Engine/"
)

// IBus key event state masks
const (
	IBusShiftMask   uint32 = 1 << 0
	IBusLockMask    uint32 = 1 << 1
	IBusControlMask uint32 = 1 << 2
	IBusMod1Mask    uint32 = 1 << 3 // Alt
	IBusMod4Mask    uint32 = 1 << 6 // Super/Meta
	IBusReleaseMask uint32 = 1 << 30
)

// IBusCapSurroundingText is set by clients that report and accept edits
// of the text around the cursor.
const IBusCapSurroundingText uint32 = 1 << 5

// Common GDK key symbols
const (
	GDKBackSpace = 0xff08
	GDKDelete    = 0xffff
	GDKReturn    = 0xff0d
	GDKTab       = 0xff09
	GDKEscape    = 0xff1b
	GDKSpace     = 0x0020
)

// IBusService owns the connection to the IBus daemon and creates one
// IBusEngine per input context.
type IBusService struct {
	conn   *dbus.Conn
	logger *logging.Logger
	store  *store.Store

	mu      sync.Mutex
	cfg     *config.Config
	layout  *Layout
	opts    Options
	engines map[dbus.ObjectPath]*IBusEngine
	nextID  uint32
}

// NewIBusService prepares a service from cfg. Start connects it.
func NewIBusService(cfg *config.Config, logger *logging.Logger) (*IBusService, error) {
	s := &IBusService{
		logger:  logger.WithComponent("ibus"),
		engines: make(map[dbus.ObjectPath]*IBusEngine),
	}

	if err := s.ApplyConfig(cfg); err != nil {
		s.Stop()
		return nil, err
	}
	return s, nil
}

// ApplyConfig switches layout and engine options for every live engine.
func (s *IBusService) ApplyConfig(cfg *config.Config) error {
	layout, err := LayoutByName(cfg.Keyboard.Layout)
	if err != nil {
		return err
	}

	opts := Options{
		ResumeCommitted: cfg.Composer.ResumeCommitted,
		Logger:          s.logger,
	}

	s.mu.Lock()
	// The lexicon is opened on first use and kept for the life of the
	// service; a changed lexicon_path takes effect on restart.
	if cfg.Correction.Enabled && s.store == nil {
		st, err := store.Open(cfg.Correction.LexiconPath)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("open lexicon: %w", err)
		}
		s.store = st
	}
	if cfg.Correction.Enabled {
		opts.Corrector = correction.New(cfg.Correction.Custom, s.store)
	}
	s.cfg = cfg
	s.layout = layout
	s.opts = opts
	engines := make([]*IBusEngine, 0, len(s.engines))
	for _, e := range s.engines {
		engines = append(engines, e)
	}
	s.mu.Unlock()

	for _, e := range engines {
		e.configure(layout, opts)
	}
	s.logger.Info("configuration applied", "layout", layout.Name(), "correction", opts.Corrector != nil)
	return nil
}

// Start connects to the IBus bus, exports the factory and claims the
// component bus name.
func (s *IBusService) Start() error {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	addr, err := ibusAddress(cfg.IBus.Address)
	if err != nil {
		return err
	}

	conn, err := dbus.Connect(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to IBus at %s: %w", addr, err)
	}
	s.conn = conn

	if err := conn.Export(&ibusFactory{service: s}, IBusFactoryPath, IBusFactoryInterface); err != nil {
		return fmt.Errorf("export factory: %w", err)
	}

	reply, err := conn.RequestName(cfg.IBus.BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errors.New("bus name already taken")
	}

	s.logger.Info("IBus engine started", "bus_name", cfg.IBus.BusName)
	return nil
}

// Stop closes every engine, the lexicon and the bus connection.
func (s *IBusService) Stop() error {
	s.mu.Lock()
	engines := s.engines
	s.engines = make(map[dbus.ObjectPath]*IBusEngine)
	st := s.store
	s.store = nil
	s.mu.Unlock()

	for _, e := range engines {
		e.endSession()
	}

	errs := []error{s.logger.Sync()}
	if st != nil {
		errs = append(errs, st.Close())
	}
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	return errors.Join(errs...)
}

// ibusAddress resolves the private IBus bus address.
func ibusAddress(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if addr := os.Getenv("IBUS_ADDRESS"); addr != "" {
		return addr, nil
	}
	out, err := exec.Command("ibus", "address").Output()
	if err != nil {
		return "", fmt.Errorf("find IBus address: %w", err)
	}
	addr := strings.TrimSpace(string(out))
	if addr == "" || addr == "(null)" {
		return "", errors.New("IBus daemon is not running")
	}
	return addr, nil
}

func (s *IBusService) createEngine(name string) (*IBusEngine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name != s.cfg.IBus.EngineName {
		return nil, fmt.Errorf("unknown engine: %s", name)
	}

	s.nextID++
	path := dbus.ObjectPath(fmt.Sprintf("%s%d", ibusEnginePathPrefix, s.nextID))
	var emitter signalEmitter
	if s.conn != nil {
		emitter = s.conn
	}
	e := newIBusEngine(path, s.layout, s.opts, emitter, s.logger)
	e.onDestroy = func() { s.removeEngine(path) }
	s.engines[path] = e
	return e, nil
}

func (s *IBusService) removeEngine(path dbus.ObjectPath) {
	s.mu.Lock()
	e, ok := s.engines[path]
	delete(s.engines, path)
	s.mu.Unlock()

	if ok && s.conn != nil {
		s.conn.Export(nil, path, IBusEngineInterface)
		s.conn.Export(nil, path, IBusServiceInterface)
	}
	if ok {
		e.endSession()
	}
}

// ibusFactory implements the IBus Factory D-Bus interface.
type ibusFactory struct {
	service *IBusService
}

// CreateEngine creates a new engine instance for IBus.
func (f *ibusFactory) CreateEngine(engineName string) (dbus.ObjectPath, *dbus.Error) {
	e, err := f.service.createEngine(engineName)
	if err != nil {
		return "", dbus.NewError("org.freedesktop.IBus.NoEngine", []any{err.Error()})
	}

	conn := f.service.conn
	if err := conn.Export(e, e.path, IBusEngineInterface); err != nil {
		return "", dbus.MakeFailedError(err)
	}
	if err := conn.Export(e, e.path, IBusServiceInterface); err != nil {
		return "", dbus.MakeFailedError(err)
	}

	f.service.logger.Info("engine created", "path", string(e.path))
	return e.path, nil
}

// signalEmitter sends engine signals to the input context.
type signalEmitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// IBusEngine is one input context's engine. The client's text is mirrored
// in a Document, fed by SetSurroundingText and by the engine's own edits.
type IBusEngine struct {
	path      dbus.ObjectPath
	emitter   signalEmitter
	logger    *logging.Logger
	onDestroy func()

	doc    *document.Document
	engine *Engine

	mu     sync.Mutex
	layout *Layout
	caps   uint32
}

func newIBusEngine(path dbus.ObjectPath, layout *Layout, opts Options, emitter signalEmitter, logger *logging.Logger) *IBusEngine {
	e := &IBusEngine{
		path:    path,
		emitter: emitter,
		logger:  logger,
		doc:     document.New(""),
		layout:  layout,
	}
	e.engine = NewEngine(ibusBuffer{e}, opts)
	return e
}

func (e *IBusEngine) configure(layout *Layout, opts Options) {
	e.mu.Lock()
	e.layout = layout
	e.mu.Unlock()
	e.engine.Configure(opts)
}

// ibusBuffer applies edits to the client and to the mirror.
type ibusBuffer struct {
	e *IBusEngine
}

func (b ibusBuffer) InsertText(text string) {
	b.e.doc.InsertText(text)
	b.e.emit("CommitText", newIBusText(text))
}

func (b ibusBuffer) DeleteBackward() {
	ctx := b.e.doc.ContextBeforeInput()
	n := utf8.RuneCountInString(ctx[len(document.TrimLast(ctx, 1)):])
	if n == 0 {
		n = 1
	}
	b.e.doc.DeleteBackward()
	b.e.emit("DeleteSurroundingText", int32(-n), uint32(n))
}

func (b ibusBuffer) ContextBeforeInput() string {
	return b.e.doc.ContextBeforeInput()
}

func (b ibusBuffer) PreviousCharacter() (rune, bool) {
	return b.e.doc.PreviousCharacter()
}

func (b ibusBuffer) JustPreviousCharacter() (rune, bool) {
	return b.e.doc.JustPreviousCharacter()
}

func (e *IBusEngine) emit(signal string, values ...any) {
	if e.emitter == nil {
		return
	}
	if err := e.emitter.Emit(e.path, IBusEngineInterface+"."+signal, values...); err != nil {
		e.logger.Warn("emit failed", "path", string(e.path), "signal", signal, "error", err)
	}
}

// ProcessKeyEvent handles key press/release events from IBus.
// Returns true if the key was consumed, false to pass through.
func (e *IBusEngine) ProcessKeyEvent(keyval, keycode, state uint32) (bool, *dbus.Error) {
	if state&IBusReleaseMask != 0 {
		return false, nil
	}

	e.mu.Lock()
	caps, layout := e.caps, e.layout
	e.mu.Unlock()

	// Without surrounding text there is no way to rewrite the syllable
	// before the cursor.
	if caps&IBusCapSurroundingText == 0 {
		return false, nil
	}

	if keyval == GDKBackSpace {
		if state&IBusControlMask != 0 {
			e.engine.DeleteWord()
		} else {
			e.engine.Backspace()
		}
		return true, nil
	}

	if state&(IBusControlMask|IBusMod1Mask|IBusMod4Mask) != 0 {
		e.engine.Reset()
		return false, nil
	}

	r := keyvalToRune(keyval)
	if r == 0 {
		e.engine.Reset()
		return false, nil
	}

	if err := e.engine.Commit(layout.Translate(r)); err != nil {
		e.logger.Warn("commit failed", "error", err)
	}
	return true, nil
}

// SetSurroundingText provides the text around the cursor.
func (e *IBusEngine) SetSurroundingText(text dbus.Variant, cursorPos, anchorPos uint32) *dbus.Error {
	s, ok := ibusTextString(text)
	if !ok {
		return nil
	}
	e.doc.SetContext(runePrefix(s, int(cursorPos)))
	e.engine.TextDidChange()
	return nil
}

// SetCapabilities informs about client capabilities.
func (e *IBusEngine) SetCapabilities(caps uint32) *dbus.Error {
	e.mu.Lock()
	e.caps = caps
	e.mu.Unlock()

	if caps&IBusCapSurroundingText == 0 {
		e.logger.Warn("client does not support surrounding text, passing keys through", "path", string(e.path))
	}
	return nil
}

// FocusIn is called when the engine gains input focus.
func (e *IBusEngine) FocusIn() *dbus.Error {
	e.engine.Reset()
	return nil
}

// FocusOut is called when the engine loses input focus.
func (e *IBusEngine) FocusOut() *dbus.Error {
	e.engine.Reset()
	return nil
}

// Reset resets the engine state.
func (e *IBusEngine) Reset() *dbus.Error {
	e.engine.Reset()
	return nil
}

// Enable is called when the engine is enabled.
func (e *IBusEngine) Enable() *dbus.Error {
	if !e.engine.HasActiveSession() {
		if _, err := e.engine.StartSession(); err != nil {
			e.logger.Warn("start session failed", "error", err)
		}
	}
	return nil
}

// Disable is called when the engine is disabled.
func (e *IBusEngine) Disable() *dbus.Error {
	e.endSession()
	return nil
}

// SetCursorLocation informs about cursor position.
func (e *IBusEngine) SetCursorLocation(x, y, w, h int32) *dbus.Error {
	return nil
}

// SetContentType informs about the type of content being edited.
func (e *IBusEngine) SetContentType(purpose, hints uint32) *dbus.Error {
	return nil
}

// Destroy is called by IBus when the input context goes away.
func (e *IBusEngine) Destroy() *dbus.Error {
	if e.onDestroy != nil {
		e.onDestroy()
	}
	return nil
}

func (e *IBusEngine) endSession() {
	sum, err := e.engine.EndSession()
	if err != nil {
		return
	}
	e.logger.Info("session summary", "keystrokes", sum.Keystrokes, "backspaces", sum.Backspaces,
		"corrections", sum.Corrections, "duration", sum.EndTime.Sub(sum.StartTime).String())
}

// keyvalToRune converts X11 keysym to Unicode rune.
func keyvalToRune(keyval uint32) rune {
	// Latin-1 keysyms equal their code points.
	if keyval >= 0x20 && keyval <= 0x7e {
		return rune(keyval)
	}
	if keyval >= 0xa0 && keyval <= 0xff {
		return rune(keyval)
	}
	if keyval >= 0x01000000 {
		return rune(keyval - 0x01000000)
	}
	return 0
}

// runePrefix returns the first n runes of s.
func runePrefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// ibusText is the D-Bus form of IBusText: (sa{sv}sv).
type ibusText struct {
	Name       string
	Attachment map[string]dbus.Variant
	Text       string
	AttrList   dbus.Variant
}

// ibusAttrList is the D-Bus form of IBusAttrList: (sa{sv}av).
type ibusAttrList struct {
	Name       string
	Attachment map[string]dbus.Variant
	Attributes []dbus.Variant
}

func newIBusText(s string) dbus.Variant {
	return dbus.MakeVariant(ibusText{
		Name:       "IBusText",
		Attachment: map[string]dbus.Variant{},
		Text:       s,
		AttrList: dbus.MakeVariant(ibusAttrList{
			Name:       "IBusAttrList",
			Attachment: map[string]dbus.Variant{},
			Attributes: []dbus.Variant{},
		}),
	})
}

// ibusTextString extracts the string from an IBusText variant.
func ibusTextString(v dbus.Variant) (string, bool) {
	switch t := v.Value().(type) {
	case ibusText:
		return t.Text, true
	case []any:
		if len(t) >= 3 {
			s, ok := t[2].(string)
			return s, ok
		}
	}
	return "", false
}
