package storage

import (
	"context"
	"errors"
	"io"
)

// Package storage contains the content-store abstraction: byte-for-byte
// storage and retrieval of document payloads keyed by document id.
// Implementations live in this directory (disk, minio).

// ErrNotExist is returned by Open when no blob exists under the given id.
// A missing blob is a routine outcome for an invalid id, not an exception.
var ErrNotExist = errors.New("content does not exist")

// ContentStore stores document payloads under keys derived from the
// document id alone, never from client-supplied names. Put must be
// atomic with respect to failures: an aborted upload leaves no partial
// content addressable under a public key.
type ContentStore interface {
	// Put makes the content readable under id. size is the exact byte
	// count; implementations may use it to pre-validate or stream.
	Put(ctx context.Context, id string, r io.Reader, size int64) error

	// Open returns a stream of the content under id, or ErrNotExist.
	Open(ctx context.Context, id string) (io.ReadCloser, error)

	// Exists reports whether a blob is addressable under id.
	Exists(ctx context.Context, id string) (bool, error)
}
