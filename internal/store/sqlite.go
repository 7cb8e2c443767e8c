package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrEmptyInput is returned when an entry has no user input or no
// replacement text.
var ErrEmptyInput = errors.New("store: user input and document text are required")

// Store represents the SQLite lexicon store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := MigrateDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	// The lexicon holds text the user typed.
	if err := os.Chmod(path, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put inserts or replaces the entry for e.UserInput. A replaced entry keeps
// its usage counters.
func (s *Store) Put(e Entry) error {
	e.UserInput = strings.TrimSpace(e.UserInput)
	if e.UserInput == "" || e.DocumentText == "" {
		return ErrEmptyInput
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO lexicon (user_input, document_text, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_input) DO UPDATE SET document_text = excluded.document_text`,
		e.UserInput, e.DocumentText, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

// Import inserts entries in a single transaction.
func (s *Store) Import(entries []Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO lexicon (user_input, document_text, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_input) DO UPDATE SET document_text = excluded.document_text`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	for _, e := range entries {
		input := strings.TrimSpace(e.UserInput)
		if input == "" || e.DocumentText == "" {
			return fmt.Errorf("import %q: %w", e.UserInput, ErrEmptyInput)
		}
		if _, err := stmt.Exec(input, e.DocumentText, now); err != nil {
			return fmt.Errorf("import entry %q: %w", input, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Lookup returns the entry for userInput and records the hit. It returns
// nil, nil when there is no such entry.
func (s *Store) Lookup(userInput string) (*Entry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.Exec(`
		UPDATE lexicon SET hits = hits + 1, last_used_at = ?
		WHERE user_input = ?`, now.UnixNano(), userInput)
	if err != nil {
		return nil, fmt.Errorf("record hit: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("record hit: %w", err)
	} else if n == 0 {
		return nil, nil
	}

	e, err := scanEntry(tx.QueryRow(selectEntry+" WHERE user_input = ?", userInput))
	if err != nil {
		return nil, fmt.Errorf("lookup entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return e, nil
}

// Get returns the entry for userInput without touching its counters.
func (s *Store) Get(userInput string) (*Entry, error) {
	e, err := scanEntry(s.db.QueryRow(selectEntry+" WHERE user_input = ?", userInput))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// Delete removes the entry for userInput. It reports whether one existed.
func (s *Store) Delete(userInput string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM lexicon WHERE user_input = ?", userInput)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	return n > 0, nil
}

// List returns all entries, most used first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(selectEntry + " ORDER BY hits DESC, user_input")
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

const selectEntry = `SELECT user_input, document_text, created_at, hits, last_used_at FROM lexicon`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e        Entry
		created  int64
		lastUsed sql.NullInt64
	)
	if err := row.Scan(&e.UserInput, &e.DocumentText, &created, &e.Hits, &lastUsed); err != nil {
		return nil, err
	}
	e.CreatedAt = time.Unix(0, created)
	if lastUsed.Valid {
		e.LastUsedAt = time.Unix(0, lastUsed.Int64)
	}
	return &e, nil
}
