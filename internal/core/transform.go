package core

import (
	"log/slog"
	"sort"
	"strings"
)

// Accepted source keys per canonical field, in priority order.
var (
	idAliases        = []string{"ID", "id"}
	nameAliases      = []string{"NAME", "name"}
	typeAliases      = []string{"TYPE", "type"}
	rarityAliases    = []string{"RARITY", "rarity"}
	imageAliases     = []string{"IMAGE", "image"}
	dateAddedAliases = []string{"DATE_ADDED", "date_added", "dateAdded"}
)

// recordIndex resolves alias lookups against one record.
// folded maps lowercased keys to the record's original spellings, sorted.
type recordIndex struct {
	rec    LegacyRecord
	folded map[string][]string
}

// newRecordIndex builds the case-insensitive key index for a record.
func newRecordIndex(rec LegacyRecord) recordIndex {
	folded := make(map[string][]string, len(rec))
	for k := range rec {
		lk := strings.ToLower(k)
		folded[lk] = append(folded[lk], k)
	}
	for _, keys := range folded {
		sort.Strings(keys)
	}
	return recordIndex{rec: rec, folded: folded}
}

// lookup returns the first non-null value among the aliases.
// Exact spellings are tried first, then a case-insensitive pass.
func (ri recordIndex) lookup(aliases []string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := ri.rec[alias]; ok && v != nil {
			return v, true
		}
	}

	for _, alias := range aliases {
		for _, key := range ri.folded[strings.ToLower(alias)] {
			if v := ri.rec[key]; v != nil {
				return v, true
			}
		}
	}

	return nil, false
}

// TransformRow maps one legacy record to a canonical document.
// It never fails: a field that is missing or cannot be converted is left out.
// index is the record's position in the export and is only used for diagnostics.
func TransformRow(rec LegacyRecord, index int) CanonicalDocument {
	ri := newRecordIndex(rec)
	var doc CanonicalDocument

	if v, ok := ri.lookup(idAliases); ok {
		if id, ok := toIdentifier(v); ok {
			doc.ID = id
		}
	}

	if v, ok := ri.lookup(nameAliases); ok {
		doc.Name, _ = toText(v)
	}
	if v, ok := ri.lookup(typeAliases); ok {
		doc.Type, _ = toText(v)
	}
	if v, ok := ri.lookup(rarityAliases); ok {
		doc.Rarity, _ = toText(v)
	}

	if v, ok := ri.lookup(imageAliases); ok {
		if img, ok := toImage(v); ok {
			doc.Image = img
		}
	}

	if v, ok := ri.lookup(dateAddedAliases); ok {
		if t, ok := toDateAdded(v); ok {
			doc.DateAdded = &t
		} else {
			slog.Debug("dateAdded not recognized, omitting", "index", index, "value", v)
		}
	}

	return doc
}
