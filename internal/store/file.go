package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"catalog-service/internal/model"
)

// FileStore keeps the catalog as a JSON array in a single file.
// A missing file is an empty catalog; it is created on the first write.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the catalog file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Insert(ctx context.Context, p model.Product) error {
	return s.update(ctx, func(products []model.Product) ([]model.Product, error) {
		for _, existing := range products {
			if existing.ID == p.ID || sameName(existing.Name, p.Name) {
				return nil, fmt.Errorf("%w: %q", model.ErrDuplicateProduct, p.Name)
			}
		}
		return append(products, p), nil
	})
}

func (s *FileStore) Replace(ctx context.Context, p model.Product) error {
	return s.update(ctx, func(products []model.Product) ([]model.Product, error) {
		idx := indexOf(products, p.ID)
		if idx < 0 {
			return nil, model.ErrProductNotFound
		}
		for i, existing := range products {
			if i != idx && sameName(existing.Name, p.Name) {
				return nil, fmt.Errorf("%w: %q", model.ErrDuplicateProduct, p.Name)
			}
		}
		products[idx] = p
		return products, nil
	})
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	return s.update(ctx, func(products []model.Product) ([]model.Product, error) {
		idx := indexOf(products, id)
		if idx < 0 {
			return nil, model.ErrProductNotFound
		}
		return append(products[:idx], products[idx+1:]...), nil
	})
}

func (s *FileStore) update(ctx context.Context, fn func([]model.Product) ([]model.Product, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.read()
	if err != nil {
		return err
	}
	products, err = fn(products)
	if err != nil {
		return err
	}
	return s.write(products)
}

func (s *FileStore) read() ([]model.Product, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []model.Product{}, nil
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", s.path, err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// write replaces the file via a temp file and rename so readers never see a partial catalog
func (s *FileStore) write(products []model.Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp catalog file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close catalog file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}

func indexOf(products []model.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
