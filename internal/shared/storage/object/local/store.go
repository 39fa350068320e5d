package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"hairalyzer-backend/internal/shared/storage/object"
)

// RoutePrefix is where the API serves files written by this store.
const RoutePrefix = "/uploads"

// Store implements object.Store on the local filesystem. Files are served by
// the API itself, so URLs point back at PublicBaseURL.
type Store struct {
	baseDir       string
	publicBaseURL string
}

// New creates a local store rooted at baseDir.
func New(baseDir, publicBaseURL string) *Store {
	return &Store{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Dir returns the root directory for static serving.
func (s *Store) Dir() string { return s.baseDir }

// Put writes the reader to disk under the user's namespace with a random prefix.
func (s *Store) Put(ctx context.Context, userID, fileName, contentType string, r io.Reader) (object.Object, error) {
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}
	key, err := object.NewKey(userID, fileName)
	if err != nil {
		return object.Object{}, err
	}
	data, ct, err := object.ReadBody(r, contentType)
	if err != nil {
		return object.Object{}, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Object{}, fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return object.Object{}, fmt.Errorf("write file: %w", err)
	}

	return object.Object{
		Key:         key,
		URL:         object.JoinURL(s.publicBaseURL, path.Join(RoutePrefix, key)),
		SizeBytes:   int64(len(data)),
		ContentType: ct,
	}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid storage key")
	}
	return os.Open(filepath.Join(s.baseDir, clean))
}

var _ object.Store = (*Store)(nil)
