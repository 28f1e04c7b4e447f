package core

import (
	"context"
	"fmt"
	"time"
)

// DefaultCollection is the target collection when none is configured.
const DefaultCollection = "pokemon_cards"

// LegacyRecord is one row of the export file, exactly as decoded.
// Numbers are kept as json.Number so identifiers keep their original text.
// A nil record stands for an export element that was not a JSON object.
type LegacyRecord map[string]any

// Base64Image is an image payload still in its exported base64 form.
// It is decoded by the Writer right before persistence.
type Base64Image string

// CanonicalDocument is the normalized card. Every field is optional;
// a document with nothing set is still valid.
type CanonicalDocument struct {
	ID        string // Empty means the store assigns an identity
	Name      *string
	Type      *string
	Rarity    *string
	Image     Base64Image // Empty means no image
	DateAdded *time.Time
}

// HasID reports whether the document carries its own identifier.
func (d CanonicalDocument) HasID() bool {
	return d.ID != ""
}

// FieldCount returns how many non-identifier fields are set.
func (d CanonicalDocument) FieldCount() int {
	n := 0
	for _, set := range []bool{d.Name != nil, d.Type != nil, d.Rarity != nil, d.Image != "", d.DateAdded != nil} {
		if set {
			n++
		}
	}
	return n
}

// StoredDocument is the shape handed to a Store: the canonical fields with
// the image already decoded. The identifier travels separately.
type StoredDocument struct {
	Name      *string
	Type      *string
	Rarity    *string
	Image     []byte
	DateAdded *time.Time
}

// Store is the persistence contract the Writer needs from a target store.
type Store interface {
	// Upsert replaces every non-identifier field of the document with this ID,
	// creating it when none exists.
	Upsert(ctx context.Context, id string, doc StoredDocument) error

	// Insert creates a new document and returns the identity the store assigned.
	Insert(ctx context.Context, doc StoredDocument) (string, error)
}

// Outcome is the result of one row. It is created once and never mutated.
type Outcome struct {
	Index    int
	Document CanonicalDocument
	StoredID string // ID the document was written under (success only)
	Err      error  // Non-nil if the row was skipped
}

// Succeeded returns the outcome for a row that was written.
func Succeeded(index int, doc CanonicalDocument, storedID string) Outcome {
	return Outcome{Index: index, Document: doc, StoredID: storedID}
}

// Failed returns the outcome for a row that was skipped.
func Failed(index int, err error) Outcome {
	return Outcome{Index: index, Err: err}
}

// OK reports whether the row was written.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Failure describes a skipped row.
type Failure struct {
	Index  int    // Position in the export array (0-based)
	Reason string // Technical error text
	Code   string // Support code from MapError
}

// RunSummary contains the final result of one migration run.
type RunSummary struct {
	RunID    string
	Target   string
	Total    int
	Migrated int
	Skipped  int
	Failures []Failure
	Duration time.Duration
}

// String renders the counters in the form printed at the end of a run.
func (s RunSummary) String() string {
	return fmt.Sprintf("migrated=%d, skipped=%d", s.Migrated, s.Skipped)
}
