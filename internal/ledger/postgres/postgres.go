// Package postgres implements the document ledger on PostgreSQL.
//
// It is the alternate backend for deployments whose write volume
// outgrows the whole-file ledger: appends become single INSERTs,
// id uniqueness is enforced by the primary key, and the file ledger's
// single-writer critical section is replaced by the database's own
// transaction isolation.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pdfdrop/internal/ledger"
	"pdfdrop/internal/model"
)

// Ledger is a PostgreSQL implementation of ledger.Ledger.
// It uses database/sql with parameterized queries and contains no business logic.
type Ledger struct {
	db *sql.DB
}

// New creates a new PostgreSQL-backed ledger.
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

var _ ledger.Ledger = (*Ledger)(nil)

// Load returns all records, newest first. The secondary sort on id keeps
// the order total when two uploads land on the same timestamp.
func (l *Ledger) Load(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT id, original_name, size, uploaded_at
		FROM documents
		ORDER BY uploaded_at DESC, id DESC
	`
	rows, err := l.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.OriginalName, &d.Size, &d.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Append inserts a new document row.
func (l *Ledger) Append(ctx context.Context, doc model.Document) error {
	const q = `
		INSERT INTO documents (id, original_name, size, uploaded_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := l.db.ExecContext(ctx, q,
		doc.ID,
		doc.OriginalName,
		doc.Size,
		doc.UploadedAt,
	)
	return err
}

// Find fetches a single record by its id.
func (l *Ledger) Find(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, original_name, size, uploaded_at
		FROM documents
		WHERE id = $1
	`
	row := l.db.QueryRowContext(ctx, q, id)
	var d model.Document
	if err := row.Scan(&d.ID, &d.OriginalName, &d.Size, &d.UploadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
