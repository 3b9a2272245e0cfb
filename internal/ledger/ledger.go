package ledger

import (
	"context"
	"errors"

	"pdfdrop/internal/model"
)

// ErrNotFound is returned by Find when no record matches the given id.
var ErrNotFound = errors.New("document not found")

// Ledger is the authoritative ordered list of document records.
// Implementations can live in subpackages (file, postgres) inside this directory.
//
// Records are created once and never mutated; the list is ordered
// newest-ingested first. Append must be safe to call from concurrent
// requests: implementations serialize mutations internally so that no
// concurrently appended record is ever lost. Load and Find may run
// concurrently with an in-flight Append; observing either the pre- or
// post-append state is acceptable.
type Ledger interface {
	// Load returns all records, newest first. A missing or corrupt
	// backing store is equivalent to "no documents yet", never an error.
	Load(ctx context.Context) ([]model.Document, error)

	// Append records a newly ingested document at the front of the list.
	Append(ctx context.Context, doc model.Document) error

	// Find returns the record with the given id, or ErrNotFound.
	Find(ctx context.Context, id string) (*model.Document, error)
}
