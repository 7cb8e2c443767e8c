package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hangulkey/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"invalid", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError && err == nil {
				t.Error("expected error, got nil")
			}
			if !test.hasError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !test.hasError && level != test.expected {
				t.Errorf("expected %v, got %v", test.expected, level)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	for _, want := range []string{"debug", "info", "warn", "error"} {
		level, err := ParseLevel(want)
		if err != nil {
			t.Fatal(err)
		}
		if got := LevelString(level); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

func TestFromSettings(t *testing.T) {
	s := config.DefaultConfig().Logging
	s.Level = "debug"
	s.Format = "json"

	cfg, err := FromSettings(s, "ibus")
	if err != nil {
		t.Fatalf("FromSettings failed: %v", err)
	}
	if cfg.Level != LevelDebug || cfg.Format != FormatJSON {
		t.Errorf("unexpected level/format: %v/%v", cfg.Level, cfg.Format)
	}
	if !cfg.ShowText {
		t.Error("debug level should show typed text")
	}
	if cfg.MaxSizeBytes != int64(s.MaxSizeMB)<<20 {
		t.Errorf("unexpected max size %d", cfg.MaxSizeBytes)
	}

	s.Level = "chatty"
	if _, err := FromSettings(s, "ibus"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: LevelInfo, Format: FormatJSON, Writer: &buf, Component: "test"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("committed", "text", "가", "word", "과아수쇗", "api_token", "abc", "keystrokes", 3)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	for _, key := range []string{"text", "word", "api_token"} {
		if line[key] != Redacted {
			t.Errorf("%s should be redacted, got %v", key, line[key])
		}
	}
	if line["keystrokes"] != float64(3) {
		t.Errorf("keystrokes should be kept, got %v", line["keystrokes"])
	}
	if line["component"] != "test" {
		t.Errorf("expected component attribute, got %v", line["component"])
	}
}

func TestShowTextKeepsSecretsRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: LevelDebug, Format: FormatJSON, Writer: &buf, ShowText: true})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Debug("typed", "text", "가", "password", "hunter2")

	line := decodeLines(t, &buf)[0]
	if line["text"] != "가" {
		t.Errorf("text should be visible, got %v", line["text"])
	}
	if line["password"] != Redacted {
		t.Errorf("password should be redacted, got %v", line["password"])
	}
}

func TestShouldRedact(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"secret", true},
		{"api_key", true},
		{"auth_token", true},
		{"cookie", true},
		{"keystrokes", false},
		{"session_id", false},
		{"layout", false},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			if got := shouldRedact(test.key); got != test.expected {
				t.Errorf("shouldRedact(%q) = %v, expected %v", test.key, got, test.expected)
			}
		})
	}
}

func TestSessionIDContext(t *testing.T) {
	if got := SessionIDFromContext(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := SessionIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}

	ctx := ContextWithSessionID(context.Background(), "s-1")
	if got := SessionIDFromContext(ctx); got != "s-1" {
		t.Errorf("expected s-1, got %q", got)
	}

	var buf bytes.Buffer
	logger, err := New(&Config{Format: FormatJSON, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.WithContext(ctx).Info("hello")
	if line := decodeLines(t, &buf)[0]; line["session_id"] != "s-1" {
		t.Errorf("expected session_id attribute, got %v", line["session_id"])
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("dropped")
	if err := logger.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hangulkey.log")
	logger, err := New(&Config{Output: "file", FilePath: path, MaxSizeBytes: 1 << 20, MaxBackups: 2})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	logger.Info("written")
	if err := logger.Sync(); err != nil {
		t.Errorf("sync failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "written") {
		t.Errorf("log file missing message: %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}
}

func TestFileRotatorRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	rotator, err := NewFileRotator(&Config{FilePath: path, MaxSizeBytes: 32, MaxBackups: 2})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}
	defer rotator.Close()

	line := []byte("0123456789abcdefghij\n") // 21 bytes
	for i := 0; i < 5; i++ {
		n, err := rotator.Write(line)
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		if n != len(line) {
			t.Errorf("expected to write %d bytes, wrote %d", len(line), n)
		}
	}

	files := rotator.LogFiles()
	if len(files) != 3 {
		t.Fatalf("expected current file and 2 backups, got %v", files)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("backup beyond MaxBackups should not exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != len(line) {
		t.Errorf("current file should hold one line, has %d bytes", len(data))
	}
}

func TestFileRotatorNoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	rotator, err := NewFileRotator(&Config{FilePath: path, MaxSizeBytes: 8})
	if err != nil {
		t.Fatal(err)
	}
	defer rotator.Close()

	rotator.Write([]byte("first line\n"))
	rotator.Write([]byte("second\n"))

	if files := rotator.LogFiles(); len(files) != 1 {
		t.Errorf("expected no backups, got %v", files)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "second\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestNewFileRotatorEmptyPath(t *testing.T) {
	if _, err := NewFileRotator(&Config{}); err == nil {
		t.Error("expected error for empty path")
	}
}
