package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileRotator is an io.Writer that rotates its file by size. Rotated files
// are kept as path.1 (newest) through path.N.
type FileRotator struct {
	config *Config
	mu     sync.Mutex
	file   *os.File
	size   int64
}

// NewFileRotator creates a new FileRotator.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("log file path is empty")
	}

	r := &FileRotator{config: cfg}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if err := r.openFile(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) openFile() error {
	// Logs may contain shortcut names even when text is redacted.
	file, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	r.file = file
	r.size = info.Size()
	return nil
}

// Write implements io.Writer.
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.openFile(); err != nil {
			return 0, err
		}
	}

	if r.config.MaxSizeBytes > 0 && r.size > 0 && r.size+int64(len(p)) > r.config.MaxSizeBytes {
		if err := r.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// rotate shifts path.i to path.i+1, drops anything past MaxBackups and
// reopens an empty file.
func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close current log: %w", err)
	}
	r.file = nil

	path := r.config.FilePath
	if r.config.MaxBackups <= 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove log file: %w", err)
		}
		return r.openFile()
	}

	os.Remove(backupName(path, r.config.MaxBackups))
	for i := r.config.MaxBackups - 1; i >= 1; i-- {
		if err := os.Rename(backupName(path, i), backupName(path, i+1)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("shift log backup: %w", err)
		}
	}
	if err := os.Rename(path, backupName(path, 1)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}

	return r.openFile()
}

func backupName(path string, i int) string {
	return fmt.Sprintf("%s.%d", path, i)
}

// Close closes the rotator and its underlying file.
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// Sync flushes any buffered data to the file.
func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		return r.file.Sync()
	}
	return nil
}

// LogFiles returns the current log file followed by existing backups,
// newest first.
func (r *FileRotator) LogFiles() []string {
	files := []string{r.config.FilePath}
	for i := 1; i <= r.config.MaxBackups; i++ {
		name := backupName(r.config.FilePath, i)
		if _, err := os.Stat(name); err == nil {
			files = append(files, name)
		}
	}
	return files
}
