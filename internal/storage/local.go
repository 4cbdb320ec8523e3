package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalStore(dir, baseURL string, maxBytes int64) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for _, kind := range []Kind{KindVehicle, KindDriver} {
		if err := os.MkdirAll(filepath.Join(abs, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	return &LocalStore{dir: abs, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

func (s *LocalStore) Save(_ context.Context, kind Kind, file *multipart.FileHeader) (string, error) {
	up, err := readImage(kind, file, s.maxBytes)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, string(kind), up.name)
	if err := os.WriteFile(dst, up.body, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return s.baseURL + "/" + string(kind) + "/" + up.name, nil
}

// Resolve maps a request path below the upload root to a file on disk.
// Paths that climb out of the root are refused.
func (s *LocalStore) Resolve(rel string) (string, error) {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if rel == "" {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}

	full := filepath.Join(s.dir, filepath.FromSlash(rel))
	inside, err := filepath.Rel(s.dir, full)
	if err != nil || inside == "." || strings.HasPrefix(inside, "..") {
		return "", ErrInvalidPath
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", os.ErrNotExist
	}
	return full, nil
}
