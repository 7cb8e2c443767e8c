package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// IsWarning returns true if this is a non-fatal validation issue.
func (e *ValidationError) IsWarning() bool {
	// The lexicon directory is created on first open.
	return e.Field == "correction.lexicon_path" && strings.HasPrefix(e.Message, "directory")
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Warnings returns only warning-level validation errors.
func (e ValidationErrors) Warnings() ValidationErrors {
	var warnings ValidationErrors
	for _, err := range e {
		if err.IsWarning() {
			warnings = append(warnings, err)
		}
	}
	return warnings
}

// Errors returns only error-level validation errors.
func (e ValidationErrors) Errors() ValidationErrors {
	var errs ValidationErrors
	for _, err := range e {
		if !err.IsWarning() {
			errs = append(errs, err)
		}
	}
	return errs
}

// HasErrors returns true if there are any non-warning errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e.Errors()) > 0
}

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// CheckConfig returns every issue found in c, warnings included.
func CheckConfig(c *Config) ValidationErrors {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateKeyboard(&c.Keyboard)...)
	errs = append(errs, validateCorrection(&c.Correction)...)
	errs = append(errs, validateLogging(&c.Logging)...)
	errs = append(errs, validateIBus(&c.IBus)...)

	return errs
}

// ValidateConfig performs comprehensive validation of the configuration.
// Warnings alone do not fail validation.
func ValidateConfig(c *Config) error {
	errs := CheckConfig(c).Errors()
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
}

func validateKeyboard(k *KeyboardConfig) ValidationErrors {
	var errs ValidationErrors

	switch k.Layout {
	case LayoutDubeolsik, LayoutDirect:
	default:
		errs = append(errs, ValidationError{
			Field:   "keyboard.layout",
			Message: fmt.Sprintf("unknown layout: %s (valid: %s, %s)", k.Layout, LayoutDubeolsik, LayoutDirect),
		})
	}

	if k.BackspaceRepeatMs < 10 || k.BackspaceRepeatMs > 2000 {
		errs = append(errs, *RangeError("keyboard.backspace_repeat_ms", 10, 2000))
	}
	if k.WordDeleteRepeatMs < 10 || k.WordDeleteRepeatMs > 5000 {
		errs = append(errs, *RangeError("keyboard.word_delete_repeat_ms", 10, 5000))
	}

	return errs
}

func validateCorrection(c *CorrectionConfig) ValidationErrors {
	var errs ValidationErrors

	if c.Enabled && c.LexiconPath == "" {
		errs = append(errs, *RequiredFieldError("correction.lexicon_path"))
	} else if c.LexiconPath != "" {
		dir := filepath.Dir(expandPath(c.LexiconPath))
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			errs = append(errs, ValidationError{
				Field:   "correction.lexicon_path",
				Message: fmt.Sprintf("directory %s does not exist", dir),
			})
		}
	}

	for word, replacement := range c.Custom {
		field := fmt.Sprintf("correction.custom[%q]", word)
		switch {
		case strings.TrimSpace(word) == "":
			errs = append(errs, ValidationError{Field: "correction.custom", Message: "empty shortcut"})
		case strings.ContainsFunc(word, unicode.IsSpace):
			errs = append(errs, ValidationError{Field: field, Message: "shortcut must be a single word"})
		case replacement == "":
			errs = append(errs, ValidationError{Field: field, Message: "empty replacement"})
		case !utf8.ValidString(replacement):
			errs = append(errs, *TypeError(field, "UTF-8 string"))
		}
	}

	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: fmt.Sprintf("file path is required when output is '%s'", l.Output),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %s (valid: stdout, stderr, file, both)", l.Output),
		})
	}

	if l.MaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Message: "max size must be at least 1 MB",
		})
	}
	if l.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Message: "max backups cannot be negative",
		})
	}

	return errs
}

func validateIBus(i *IBusConfig) ValidationErrors {
	var errs ValidationErrors

	if i.EngineName == "" {
		errs = append(errs, *RequiredFieldError("ibus.engine_name"))
	}
	if i.BusName == "" {
		errs = append(errs, *RequiredFieldError("ibus.bus_name"))
	} else if !strings.Contains(i.BusName, ".") || strings.HasPrefix(i.BusName, ".") {
		errs = append(errs, ValidationError{
			Field:   "ibus.bus_name",
			Message: fmt.Sprintf("invalid D-Bus name: %s", i.BusName),
		})
	}

	return errs
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// RequiredFieldError creates a validation error for a required field.
func RequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "required field is missing",
	}
}

// RangeError creates a validation error for an out-of-range value.
func RangeError(field string, min, max any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("value must be between %v and %v", min, max),
	}
}

// TypeError creates a validation error for an invalid type.
func TypeError(field, expected string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("expected type %s", expected),
	}
}
