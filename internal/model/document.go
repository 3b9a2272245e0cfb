package model

import "time"

// Document is the metadata record kept for every stored file.
// This is a pure domain model with no persistence-specific dependencies or tags.
// The JSON field names are the wire contract for both the API and the
// file-backed ledger, so they must not change.
type Document struct {
	// ID is an opaque, URL-safe identifier assigned at ingestion.
	// It doubles as the content-store key and is never derived from
	// client-supplied input.
	ID string `json:"id"`

	// OriginalName is the display filename supplied by the client.
	// Stored as opaque text, never used as a filesystem path.
	OriginalName string `json:"originalName"`

	// Size is the byte length of the stored content at ingestion time.
	Size int64 `json:"size"`

	// UploadedAt is fixed at creation; records are never mutated.
	UploadedAt time.Time `json:"uploadedAt"`
}
