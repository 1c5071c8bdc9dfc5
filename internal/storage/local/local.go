// Package local implements ObjectStorage on a flat directory, one file
// per object key. It is the default backend for development so the
// server runs without AWS credentials.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"invodex/internal/port"
)

type localStore struct {
	dir string
}

// NewStore creates the directory if needed and returns a filesystem-backed
// ObjectStorage.
func NewStore(dir string) (port.ObjectStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	return &localStore{dir: dir}, nil
}

// pathFor rejects keys that would escape the storage directory.
func (s *localStore) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("local storage: invalid key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *localStore) Upload(ctx context.Context, input port.UploadInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFor(input.Key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("local upload: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, input.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("local upload write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local upload close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("local upload rename: %w", err)
	}
	return nil
}

func (s *localStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("local get: %w", err)
	}
	return data, nil
}

func (s *localStore) List(ctx context.Context, prefix string) ([]port.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("local list: %w", err)
	}

	var objects []port.ObjectInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("local list stat: %w", err)
		}
		objects = append(objects, port.ObjectInfo{
			Key:          name,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}
	return objects, nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("local delete: %w", err)
	}
	return nil
}
