package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"pdfdrop/internal/ledger"
	"pdfdrop/internal/model"
	"pdfdrop/internal/storage"
)

var (
	// ErrNoFile means the upload carried no file part.
	ErrNoFile = errors.New("no file uploaded")
	// ErrUnsupportedType means neither the declared media type nor the
	// filename extension indicates a PDF.
	ErrUnsupportedType = errors.New("only PDF files are allowed")
	// ErrTooLarge means the upload exceeds the configured size cap.
	ErrTooLarge = errors.New("file too large")
	// ErrNotFound means no retrievable document matches the id. It covers
	// both an unknown id and a record whose blob has gone missing; the
	// latter is additionally logged as an integrity anomaly.
	ErrNotFound = errors.New("document not found")
)

// idAttempts bounds the collision-retry loop during id allocation.
// Collisions are vanishingly rare with random ids; exhausting the loop
// is surfaced as an internal error rather than silently overwriting.
const idAttempts = 3

// DocumentService defines the use cases for handling documents:
// authenticated ingestion and anonymous retrieval.
type DocumentService interface {
	// Ingest validates the upload, stores its bytes under a freshly
	// allocated id, appends a metadata record to the ledger, and returns
	// the record. originalName is kept as opaque display text.
	Ingest(ctx context.Context, r io.Reader, originalName, contentType string, size int64) (*model.Document, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]model.Document, error)

	// Fetch resolves id against the ledger and opens the content stream.
	// The caller owns the returned ReadCloser.
	Fetch(ctx context.Context, id string) (*model.Document, io.ReadCloser, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store    storage.ContentStore
	ledger   ledger.Ledger
	maxBytes int64
}

// NewDocumentService constructs a new DocumentService with the given
// upload size cap in bytes.
func NewDocumentService(store storage.ContentStore, ldg ledger.Ledger, maxBytes int64) DocumentService {
	return &documentService{store: store, ledger: ldg, maxBytes: maxBytes}
}

func (s *documentService) Ingest(ctx context.Context, r io.Reader, originalName, contentType string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrNoFile
	}
	if !isPDF(originalName, contentType) {
		return nil, ErrUnsupportedType
	}
	if size > s.maxBytes {
		return nil, ErrTooLarge
	}

	id, err := s.allocateID(ctx)
	if err != nil {
		return nil, err
	}

	// Bytes first, record second: a failure here leaves no trace, a
	// failure after leaves an orphan blob that is unreachable but harmless.
	if err := s.store.Put(ctx, id, r, size); err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	doc := model.Document{
		ID:           id,
		OriginalName: originalName,
		Size:         size,
		UploadedAt:   time.Now().UTC(),
	}
	if err := s.ledger.Append(ctx, doc); err != nil {
		log.Printf("integrity anomaly: orphan blob %s left in content store after ledger append failure: %v", id, err)
		return nil, fmt.Errorf("append record: %w", err)
	}
	return &doc, nil
}

// List returns all records, newest first, straight from the ledger.
func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	return s.ledger.Load(ctx)
}

// Fetch resolves the record, then streams its blob. A record whose blob
// is missing reads as not-found to the caller; the two cases are
// indistinguishable from outside but the dangling record is logged.
func (s *documentService) Fetch(ctx context.Context, id string) (*model.Document, io.ReadCloser, error) {
	doc, err := s.ledger.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("resolve record: %w", err)
	}

	rc, err := s.store.Open(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			log.Printf("integrity anomaly: dangling record %s has no blob in content store", id)
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open content: %w", err)
	}
	return doc, rc, nil
}

// allocateID generates a fresh id, retrying on the (theoretical)
// collision against already-stored content or an existing record.
func (s *documentService) allocateID(ctx context.Context) (string, error) {
	for i := 0; i < idAttempts; i++ {
		id := uuid.NewString()

		exists, err := s.store.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check content store: %w", err)
		}
		if exists {
			continue
		}
		if _, err := s.ledger.Find(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, ledger.ErrNotFound) {
			return "", fmt.Errorf("check ledger: %w", err)
		}
		return id, nil
	}
	return "", errors.New("id allocation exhausted retries")
}

// isPDF accepts an upload when either its declared media type or its
// filename extension indicates a PDF. The name is inspected as text
// only; it is never used as a path.
func isPDF(originalName, contentType string) bool {
	if contentType == "application/pdf" {
		return true
	}
	if i := strings.LastIndexByte(originalName, '.'); i >= 0 {
		return strings.EqualFold(originalName[i:], ".pdf")
	}
	return false
}
