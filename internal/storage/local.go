package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"toy-catalog/internal/domain"

	"github.com/spf13/afero"
)

// LocalImageStore keeps images in a directory of an afero filesystem.
// The directory is created on first Store.
type LocalImageStore struct {
	fs  afero.Fs
	dir string
}

// NewLocalImageStore creates a store rooted at dir. Pass afero.NewOsFs() in
// production and afero.NewMemMapFs() in tests.
func NewLocalImageStore(fs afero.Fs, dir string) *LocalImageStore {
	return &LocalImageStore{fs: fs, dir: dir}
}

func (s *LocalImageStore) Store(ctx context.Context, content []byte, ext string) (domain.ImageRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.ImageRef{}, err
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return domain.ImageRef{}, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	filename := NewFilename(ext)
	path := filepath.Join(s.dir, filename)

	if err := afero.WriteFile(s.fs, path, content, 0o644); err != nil {
		return domain.ImageRef{}, fmt.Errorf("failed to write image file: %w", err)
	}

	return domain.ImageRef{Filename: filename, Path: path}, nil
}

func (s *LocalImageStore) Remove(ctx context.Context, filename string) (bool, error) {
	if !isPlainFilename(filename) {
		return false, nil
	}

	path := filepath.Join(s.dir, filename)

	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to stat image file: %w", err)
	}
	if !exists {
		return false, nil
	}

	if err := s.fs.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove image file: %w", err)
	}

	return true, nil
}

// FileSystem exposes the upload directory read-only for static serving.
func (s *LocalImageStore) FileSystem() http.FileSystem {
	return afero.NewHttpFs(afero.NewReadOnlyFs(s.fs)).Dir(s.dir)
}
