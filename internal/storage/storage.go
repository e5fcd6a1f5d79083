// Package storage persists uploaded toy images.
package storage

import (
	"context"
	"path/filepath"
	"strings"

	"toy-catalog/internal/domain"

	"github.com/google/uuid"
)

// ImageStore saves image bytes under generated unique filenames.
type ImageStore interface {
	// Store writes content under a new unique filename that keeps ext.
	Store(ctx context.Context, content []byte, ext string) (domain.ImageRef, error)
	// Remove deletes filename and reports whether anything was removed.
	// A missing file is not an error.
	Remove(ctx context.Context, filename string) (bool, error)
}

// NewFilename returns a random identifier followed by ext.
func NewFilename(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return uuid.NewString() + ext
}

// isPlainFilename rejects names that would escape the store's directory or bucket prefix.
func isPlainFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}
