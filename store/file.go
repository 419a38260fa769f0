package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/viktorsistem/katalog/models"
)

// FileStore keeps the whole catalog in one pretty-printed JSON array on
// disk. Small catalogs only; every write rewrites the file. All access goes
// through one mutex, which also makes each call atomic.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the store, its parent directory, and an empty file
// if none exists.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("store: init data file: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) FindBySourceURL(_ context.Context, sourceURL string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].SourceURL == sourceURL {
			p := products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) FindByBrand(_ context.Context, brand models.Brand) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []models.Product
	for _, p := range products {
		if p.Brand == brand {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *FileStore) Insert(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == p.ID {
			return fmt.Errorf("store: duplicate id %q", p.ID)
		}
	}
	products = append(products, *p)
	return s.save(products)
}

func (s *FileStore) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = *p
			return s.save(products)
		}
	}
	return ErrNotFound
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() ([]models.Product, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("store: read data file: %w", err)
	}
	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("store: corrupt data file %s: %w", s.path, err)
	}
	return products, nil
}

func (s *FileStore) save(products []models.Product) error {
	raw, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}
	// Write-then-rename keeps a crash from truncating the catalog.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("store: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}
