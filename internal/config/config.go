// Package config handles configuration loading, validation, and management for hangulkey.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Version is the current configuration schema version.
const Version = 1

// Layout names accepted by keyboard.layout.
const (
	LayoutDubeolsik = "dubeolsik"
	LayoutDirect    = "direct"
)

// Config holds the complete input method configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Composer configuration for syllable composition.
	Composer ComposerConfig `toml:"composer" json:"composer" yaml:"composer"`

	// Keyboard configuration for key mapping and repeat.
	Keyboard KeyboardConfig `toml:"keyboard" json:"keyboard" yaml:"keyboard"`

	// Correction configuration for word replacement.
	Correction CorrectionConfig `toml:"correction" json:"correction" yaml:"correction"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// IBus configuration for the Linux engine.
	IBus IBusConfig `toml:"ibus" json:"ibus" yaml:"ibus"`
}

// ComposerConfig holds composition behavior.
type ComposerConfig struct {
	// ResumeCommitted lets backspace and new jamo reach back into the
	// syllable typed just before, as long as nothing else touched the text.
	ResumeCommitted bool `toml:"resume_committed" json:"resume_committed" yaml:"resume_committed"`
}

// KeyboardConfig holds key mapping and repeat configuration.
type KeyboardConfig struct {
	// Layout maps physical keys to jamo: "dubeolsik" or "direct".
	Layout string `toml:"layout" json:"layout" yaml:"layout"`

	// BackspaceRepeatMs is the interval between repeated deletions while
	// backspace is held.
	BackspaceRepeatMs int `toml:"backspace_repeat_ms" json:"backspace_repeat_ms" yaml:"backspace_repeat_ms"`

	// WordDeleteRepeatMs is the interval between repeated word deletions.
	WordDeleteRepeatMs int `toml:"word_delete_repeat_ms" json:"word_delete_repeat_ms" yaml:"word_delete_repeat_ms"`
}

// CorrectionConfig holds word replacement configuration.
type CorrectionConfig struct {
	// Enabled turns word replacement on.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// LexiconPath is the SQLite database holding user shortcuts.
	LexiconPath string `toml:"lexicon_path" json:"lexicon_path" yaml:"lexicon_path"`

	// Custom replacements take precedence over the lexicon.
	Custom map[string]string `toml:"custom" json:"custom" yaml:"custom"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", "file", or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file (when Output is "file" or "both").
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of old log files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`
}

// IBusConfig holds IBus engine configuration.
type IBusConfig struct {
	// Address overrides the bus address. Empty means IBUS_ADDRESS or
	// `ibus address`.
	Address string `toml:"address" json:"address" yaml:"address"`

	// BusName is the well-known D-Bus name the component owns.
	BusName string `toml:"bus_name" json:"bus_name" yaml:"bus_name"`

	// EngineName is the engine name shown in IBus preferences.
	EngineName string `toml:"engine_name" json:"engine_name" yaml:"engine_name"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dir := DataDir()

	return &Config{
		Version: Version,
		Composer: ComposerConfig{
			ResumeCommitted: true,
		},
		Keyboard: KeyboardConfig{
			Layout:             LayoutDubeolsik,
			BackspaceRepeatMs:  70,
			WordDeleteRepeatMs: 300,
		},
		Correction: CorrectionConfig{
			Enabled:     true,
			LexiconPath: filepath.Join(dir, "lexicon.db"),
			Custom: map[string]string{
				"과아수쇗": "과일 주스",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   filepath.Join(PlatformLogDir(), "hangulkey.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		IBus: IBusConfig{
			BusName:    "org.freedesktop.IBus.Hangulkey",
			EngineName: "hangulkey",
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// DataDir returns the base hangulkey data directory.
// Uses platform-specific paths or the HANGULKEY_DATA_DIR environment override.
func DataDir() string {
	if envDir := os.Getenv("HANGULKEY_DATA_DIR"); envDir != "" {
		return envDir
	}
	return PlatformDataDir()
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with HANGULKEY_ and use underscores.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("HANGULKEY_LAYOUT"); v != "" {
		c.Keyboard.Layout = v
	}
	if v := os.Getenv("HANGULKEY_RESUME_COMMITTED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Composer.ResumeCommitted = b
		}
	}

	if v := os.Getenv("HANGULKEY_CORRECTION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Correction.Enabled = b
		}
	}
	if v := os.Getenv("HANGULKEY_LEXICON_PATH"); v != "" {
		c.Correction.LexiconPath = v
	}

	if v := os.Getenv("HANGULKEY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HANGULKEY_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}

	if v := os.Getenv("HANGULKEY_IBUS_ADDRESS"); v != "" {
		c.IBus.Address = v
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c

	clone.Correction.Custom = make(map[string]string, len(c.Correction.Custom))
	for k, v := range c.Correction.Custom {
		clone.Correction.Custom[k] = v
	}

	return &clone
}

// BackspaceRepeat returns the backspace repeat interval.
func (c *Config) BackspaceRepeat() time.Duration {
	return time.Duration(c.Keyboard.BackspaceRepeatMs) * time.Millisecond
}

// WordDeleteRepeat returns the word delete repeat interval.
func (c *Config) WordDeleteRepeat() time.Duration {
	return time.Duration(c.Keyboard.WordDeleteRepeatMs) * time.Millisecond
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	data, err := encodeToTOML(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(data)
}
