// Package file implements the document ledger as a single JSON array
// persisted whole on every mutation.
//
// The on-disk form is deliberately simple (a pretty-printed array at a
// fixed path) so operators can inspect it, which also means it gets
// hand-edited and occasionally mangled. Load therefore normalizes and
// self-heals rather than failing: a missing, empty, or unparsable file
// is equivalent to "no documents yet".
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"pdfdrop/internal/ledger"
	"pdfdrop/internal/model"
)

// quotedEmptyArray matches a JSON-quoted (or smart-quoted) "[]", a
// recurring hand-editing mistake that would otherwise parse as a string.
var quotedEmptyArray = regexp.MustCompile(`^["“”']\s*\[\s*]\s*["“”']$`)

// Ledger is the whole-file JSON implementation of ledger.Ledger.
//
// Append is a load-prepend-save over shared state; mu makes all
// mutations mutually exclusive so concurrent ingestions cannot lose
// records. Loads intentionally take no lock: save is atomic via
// temp-file-then-rename, so a concurrent reader sees either the old or
// the new complete list, never a truncated mixture.
type Ledger struct {
	path string
	mu   sync.Mutex
}

var _ ledger.Ledger = (*Ledger)(nil)

// New creates a file ledger at path, initializing an empty persisted
// list if none exists yet.
func New(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	l := &Ledger{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := l.save([]model.Document{}); err != nil {
			return nil, fmt.Errorf("initialize ledger: %w", err)
		}
	}
	return l, nil
}

// Load reads the persisted list. Any pathology in the file (missing,
// empty, BOM or control-character noise, a quoted "[]", arbitrary
// garbage) resets it to a valid empty list instead of surfacing an
// error; a corrupt ledger must never take the service down.
func (l *Ledger) Load(ctx context.Context) ([]model.Document, error) {
	if docs, ok := l.read(); ok {
		return docs, nil
	}
	return l.reset()
}

// read parses the persisted list without taking the mutation lock.
// ok is false when the file is unusable and needs a self-heal.
func (l *Ledger) read() ([]model.Document, bool) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, false
	}

	txt := normalize(string(raw))
	if txt == "" {
		return nil, false
	}
	if quotedEmptyArray.MatchString(txt) {
		txt = "[]"
	}

	var docs []model.Document
	if err := json.Unmarshal([]byte(txt), &docs); err != nil {
		return nil, false
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, true
}

// Save atomically replaces the persisted list. The new content is
// written to a temporary file in the same directory and renamed into
// place, so a crash mid-write leaves the previous list intact.
func (l *Ledger) Save(ctx context.Context, docs []model.Document) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save(docs)
}

// Append inserts doc at the front of the list. The whole
// load-prepend-save sequence runs under the mutation lock.
func (l *Ledger) Append(ctx context.Context, doc model.Document) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	docs, ok := l.read()
	if !ok {
		// Unusable file; the append below heals it as a side effect.
		docs = []model.Document{}
	}
	docs = append([]model.Document{doc}, docs...)
	return l.save(docs)
}

// Find returns the record with the given id, or ledger.ErrNotFound.
func (l *Ledger) Find(ctx context.Context, id string) (*model.Document, error) {
	docs, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i], nil
		}
	}
	return nil, ledger.ErrNotFound
}

// reset self-heals the ledger to an empty, valid, persisted list.
// The unusable-file verdict was reached outside the critical section,
// so re-read under the lock first: a concurrent Append may have healed
// the file in the meantime, and its record must not be wiped.
func (l *Ledger) reset() ([]model.Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if docs, ok := l.read(); ok {
		return docs, nil
	}
	if err := l.save([]model.Document{}); err != nil {
		return nil, err
	}
	return []model.Document{}, nil
}

func (l *Ledger) save(docs []model.Document) error {
	if docs == nil {
		docs = []model.Document{}
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".files-*.json")
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync ledger temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod ledger temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

// normalize strips a UTF-8 BOM, control characters that sneak in on
// Windows, and surrounding whitespace before the JSON parse is
// attempted. Control bytes inside string values are JSON-escaped on
// write, so raw ones can only be inter-token noise.
func normalize(txt string) string {
	txt = strings.TrimPrefix(txt, "\uFEFF")
	txt = strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, txt)
	return strings.TrimSpace(txt)
}
