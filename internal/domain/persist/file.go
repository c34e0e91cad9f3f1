package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

// FileStore keeps one JSON file per player under a directory
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create layout dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Name returns "file"
func (s *FileStore) Name() string { return "file" }

// Dir returns the storage directory
func (s *FileStore) Dir() string { return s.dir }

// Load reads the player's file
func (s *FileStore) Load(ctx context.Context, player string) ([]byte, error) {
	data, err := os.ReadFile(s.path(player))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read layout for %s: %w", player, err)
	}
	return data, nil
}

// Save writes the record to a temp file and renames it into place
func (s *FileStore) Save(ctx context.Context, player string, m layout.Model) error {
	data, err := sonic.MarshalIndent(NewRecord(m), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".layout-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write layout: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(player)); err != nil {
		return fmt.Errorf("failed to store layout for %s: %w", player, err)
	}
	return nil
}

// Close is a no-op
func (s *FileStore) Close() error { return nil }

// path escapes the player id so any identifier maps to one flat file name
func (s *FileStore) path(player string) string {
	return filepath.Join(s.dir, url.PathEscape(player)+".json")
}
