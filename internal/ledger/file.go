package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"CryptoPilot/internal/model"
)

// FileStore keeps one JSON document per key in a directory.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file ledger: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string, mode model.Mode) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", key, mode))
}

func (s *FileStore) ReadPortfolio(_ context.Context, mode model.Mode) (model.Portfolio, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var p model.Portfolio
	ok, err := s.load(s.path("portfolio", mode), &p)
	return p, ok, err
}

func (s *FileStore) WritePortfolio(_ context.Context, mode model.Mode, p model.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(s.path("portfolio", mode), p)
}

func (s *FileStore) ReadHistory(_ context.Context, mode model.Mode) ([]model.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var trades []model.Trade
	if _, err := s.load(s.path("history", mode), &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (s *FileStore) WriteHistory(_ context.Context, mode model.Mode, trades []model.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if trades == nil {
		trades = []model.Trade{}
	}
	return s.save(s.path("history", mode), trades)
}

func (s *FileStore) Close() error { return nil }

// load returns ok=false if the file doesn't exist.
func (s *FileStore) load(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// save writes through a temp file so readers never see a partial document.
func (s *FileStore) save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
