package core

import (
	"context"
	"errors"
	"fmt"
)

// Write operations, recorded on WriteError.
const (
	OpDecodeImage = "decode image"
	OpUpsert      = "upsert"
	OpInsert      = "insert"
)

// WriteError is a per-row persistence failure. It never escapes the row loop.
type WriteError struct {
	Index int
	Op    string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Index, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer persists canonical documents through a Store.
type Writer struct {
	store Store
}

// NewWriter returns a Writer backed by store.
func NewWriter(store Store) *Writer {
	return &Writer{store: store}
}

// Write persists doc and returns the ID it was stored under.
//
// Documents with an ID are upserted, so re-running the migration leaves one
// document per ID. Documents without one are inserted and get a fresh identity
// from the store; re-running duplicates them.
func (w *Writer) Write(ctx context.Context, index int, doc CanonicalDocument) (string, error) {
	stored, err := toStored(doc)
	if err != nil {
		return "", &WriteError{Index: index, Op: OpDecodeImage, Err: err}
	}

	if doc.HasID() {
		if err := w.store.Upsert(ctx, doc.ID, stored); err != nil {
			return "", &WriteError{Index: index, Op: OpUpsert, Err: err}
		}
		return doc.ID, nil
	}

	id, err := w.store.Insert(ctx, stored)
	if err != nil {
		return "", &WriteError{Index: index, Op: OpInsert, Err: err}
	}
	if id == "" {
		return "", &WriteError{Index: index, Op: OpInsert, Err: errors.New("store returned no identity")}
	}
	return id, nil
}

// toStored converts a canonical document to its persistence shape.
func toStored(doc CanonicalDocument) (StoredDocument, error) {
	stored := StoredDocument{
		Name:      doc.Name,
		Type:      doc.Type,
		Rarity:    doc.Rarity,
		DateAdded: doc.DateAdded,
	}

	if doc.Image != "" {
		img, err := doc.Image.Decode()
		if err != nil {
			return StoredDocument{}, err
		}
		stored.Image = img
	}

	return stored, nil
}
