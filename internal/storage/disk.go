package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// blobExt is the fixed extension under which all blobs are stored.
// The key is a pure function of the id; client display names never
// reach the filesystem.
const blobExt = ".pdf"

// diskStore implements ContentStore on a local directory.
// It is safe for concurrent use: writes land in a private temp file and
// become visible under the public key only through a single rename.
type diskStore struct {
	dir string
}

// NewDisk creates a filesystem content store rooted at dir, creating
// the directory if needed.
func NewDisk(dir string) (ContentStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("content store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create content store dir: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

// blobPath derives the storage path from the id alone.
func (s *diskStore) blobPath(id string) string {
	return filepath.Join(s.dir, id+blobExt)
}

// Put spools the incoming bytes to a temp file in the store directory,
// then renames it to the public key. A failure at any point removes the
// temp file, so an aborted upload never leaves a partial blob under id.
func (s *diskStore) Put(ctx context.Context, id string, r io.Reader, size int64) error {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create upload temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close upload: %w", err)
	}
	if size >= 0 && written != size {
		os.Remove(tmpName)
		return fmt.Errorf("short upload: got %d bytes, want %d", written, size)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod upload: %w", err)
	}
	if err := os.Rename(tmpName, s.blobPath(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}

// Open returns a stream of the blob under id, or ErrNotExist.
func (s *diskStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	f, err := os.Open(s.blobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Exists reports whether a blob is stored under id.
func (s *diskStore) Exists(ctx context.Context, id string) (bool, error) {
	_, err := os.Stat(s.blobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob: %w", err)
	}
	return true, nil
}
