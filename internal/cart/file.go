package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lcastillo/botilleria/internal/domain"
)

// FileStore persists each cart as a JSON file under a base directory.
// This mirrors the browser storefront's local-storage cart: one serialized
// list of lines per cart key.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the base directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load implements Store. Missing or malformed files hydrate an empty cart.
func (s *FileStore) Load(_ context.Context, key string) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return []domain.CartLine{}, nil
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return []domain.CartLine{}, nil
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

// Save implements Store. Writes are atomic (temp file + rename) so a crash
// mid-write leaves the previous cart intact rather than a corrupt one.
func (s *FileStore) Save(_ context.Context, key string, lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to serialize cart: %w", err)
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace cart file: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cart file: %w", err)
	}
	return nil
}

// path sanitizes the key so a crafted cart key cannot escape the base dir.
func (s *FileStore) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, safe+".json")
}
