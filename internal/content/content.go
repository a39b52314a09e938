// Package content stores derivate payloads. The core only keeps the
// opaque content id this collaborator hands out.
package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store is the narrow contract of the derivate payload store.
type Store interface {
	// Store ingests the file at path and returns an opaque content id.
	Store(ctx context.Context, path string) (string, error)

	// Delete removes the content behind an id. Deleting an unknown id is
	// not an error.
	Delete(ctx context.Context, contentID string) error
}

// DirStore keeps payloads as files named by content id under one
// directory.
type DirStore struct {
	dir    string
	logger *slog.Logger
}

// NewDirStore creates the storage directory when needed.
func NewDirStore(dir string, logger *slog.Logger) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating content directory %s: %w", dir, err)
	}
	return &DirStore{dir: dir, logger: logger}, nil
}

func (s *DirStore) Store(_ context.Context, path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening payload %s: %w", path, err)
	}
	defer src.Close()

	contentID := uuid.NewString()
	dst, err := os.Create(filepath.Join(s.dir, contentID))
	if err != nil {
		return "", fmt.Errorf("creating content file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("copying payload %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("closing content file: %w", err)
	}
	s.logger.Debug("stored derivate payload", "content_id", contentID, "source", path)
	return contentID, nil
}

func (s *DirStore) Delete(_ context.Context, contentID string) error {
	if contentID == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, contentID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing content %s: %w", contentID, err)
	}
	return nil
}
