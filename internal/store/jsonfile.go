package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parkeasy/parkeasy-backend/internal/models"
)

// JSONCollection stores a slice of records as a single flat JSON array on
// disk. A missing file reads as an empty collection; saves replace the whole
// file through an atomic rename.
type JSONCollection[T any] struct {
	path string
}

// NewJSONCollection creates a collection backed by the given file path.
func NewJSONCollection[T any](path string) *JSONCollection[T] {
	return &JSONCollection[T]{path: path}
}

// Load reads the full collection. A file that does not exist yet is not an
// error; it yields an empty slice.
func (c *JSONCollection[T]) Load(_ context.Context) ([]T, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save replaces the collection on disk. The write goes to a temp file in the
// same directory followed by a rename, so readers never observe a partial
// file.
func (c *JSONCollection[T]) Save(_ context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", c.path, err)
	}
	return nil
}

// FileStores bundles the file-backed collections for every record type,
// rooted at a single data directory.
type FileStores struct {
	Reservations *JSONCollection[models.Reservation]
	Users        *JSONCollection[models.User]
	Violations   *JSONCollection[models.Violation]
	Feedback     *JSONCollection[models.Feedback]
}

// NewFileStores creates the standard set of collections under dataDir.
func NewFileStores(dataDir string) *FileStores {
	return &FileStores{
		Reservations: NewJSONCollection[models.Reservation](filepath.Join(dataDir, "reservations.json")),
		Users:        NewJSONCollection[models.User](filepath.Join(dataDir, "users.json")),
		Violations:   NewJSONCollection[models.Violation](filepath.Join(dataDir, "violations.json")),
		Feedback:     NewJSONCollection[models.Feedback](filepath.Join(dataDir, "feedback.json")),
	}
}
