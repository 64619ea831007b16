// Package history records flowchart generation runs.
//
// Every call to the generator leaves one Entry behind, successful or not,
// so runs can be listed and inspected after the fact. MemoryStore keeps
// entries for the life of the process; SQLiteStore persists them.
package history

import (
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Store persists generation entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores an entry keyed by its RunID.
	// Saving an existing RunID replaces the entry but keeps its position.
	Save(entry Entry) error

	// Get returns the entry for a run.
	// Returns ErrNotFound if the run was never saved.
	Get(runID string) (Entry, error)

	// List returns up to limit entries, newest first.
	// A limit of zero or less returns everything.
	List(limit int) ([]Entry, error)

	// Delete removes an entry.
	// Returns nil if the run doesn't exist.
	Delete(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Entry describes one generation run.
type Entry struct {
	RunID     string
	Topic     string
	Outcome   string
	Attempts  int
	Strategy  string
	ImagePath string
	Nodes     int
	Edges     int
	// Text is the last completion text received, if any.
	Text      string
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// Success reports whether the run produced an image.
func (e Entry) Success() bool {
	return e.Error == "" && e.ImagePath != ""
}

// Sentinel errors for history operations.
var (
	// ErrNotFound indicates a run doesn't exist.
	ErrNotFound = errors.New("history entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("history store closed")

	// ErrMissingRunID indicates an entry without a RunID.
	ErrMissingRunID = errors.New("history entry has no run id")
)

// Open returns a SQLiteStore at path, creating its directory, or a
// MemoryStore when path is empty.
func Open(path string) (Store, error) {
	if path == "" {
		return NewMemoryStore(), nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return NewSQLiteStore(path)
}

// prepare validates an entry and stamps its creation time.
func prepare(entry Entry) (Entry, error) {
	if entry.RunID == "" {
		return Entry{}, ErrMissingRunID
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return entry, nil
}
