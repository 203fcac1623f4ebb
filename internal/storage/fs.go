package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reelvault/backend/internal/config"
)

// LocalStorage implements AssetStorage on the local filesystem. Objects live
// under the asset root and are served back by the HTTP server under /assets/.
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage prepares a filesystem-backed asset store rooted at the
// configured directory, creating it when absent.
func NewLocalStorage(cfg config.LocalStoreConfig) (*LocalStorage, error) {
	root := strings.TrimSpace(cfg.AssetRoot)
	if root == "" {
		return nil, fmt.Errorf("local storage: asset root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create asset root: %w", err)
	}

	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

// Root returns the directory assets are written beneath.
func (s *LocalStorage) Root() string {
	return s.root
}

// Save writes r to the asset root under key, replacing any prior content.
func (s *LocalStorage) Save(_ context.Context, key, _ string, r io.Reader) (string, error) {
	dest, err := s.diskPath(key)
	if err != nil {
		return "", err
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("local storage: create %s: %w", dest, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("local storage: write %s: %w", dest, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("local storage: close %s: %w", dest, err)
	}

	return s.url(key), nil
}

// Promote moves a staged file into the asset root. Rename is attempted first;
// a copy fallback covers staging directories on another filesystem.
func (s *LocalStorage) Promote(ctx context.Context, key, contentType, stagedPath string) (string, error) {
	dest, err := s.diskPath(key)
	if err != nil {
		return "", err
	}

	if err := os.Rename(stagedPath, dest); err == nil {
		return s.url(key), nil
	}

	staged, err := os.Open(stagedPath)
	if err != nil {
		return "", fmt.Errorf("local storage: open staged file: %w", err)
	}
	defer staged.Close()

	return s.Save(ctx, key, contentType, staged)
}

func (s *LocalStorage) diskPath(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrEmptyKey
	}

	dest := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("local storage: create parent dir: %w", err)
	}
	return dest, nil
}

func (s *LocalStorage) url(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.baseURL == "" {
		return "/assets/" + key
	}
	return fmt.Sprintf("%s/assets/%s", s.baseURL, key)
}

var _ AssetStorage = (*LocalStorage)(nil)
