package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"
)

// DefaultMaxFileSize is the largest export accepted when none is configured (100MB).
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// utf8BOM is stripped from the start of the export if present.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load failure reasons. They double as MapError patterns.
const (
	ReasonReadFailed  = "read export"
	ReasonTooLarge    = "file too large"
	ReasonInvalidJSON = "invalid json"
	ReasonNotArray    = "not an array"
)

// LoadError is returned when the export cannot be turned into records.
// It is always fatal: nothing has been written when it occurs.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadExport reads the export file at path and parses it into records.
// The returned slice preserves array order; a record's position is its row index.
// maxSize <= 0 disables the size check.
func LoadExport(path string, maxSize int64) ([]LegacyRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: ReasonReadFailed, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Reason: ReasonReadFailed, Err: errors.New("is a directory")}
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, &LoadError{
			Path:   path,
			Reason: ReasonTooLarge,
			Err:    fmt.Errorf("%d bytes exceeds %dMB limit", info.Size(), maxSize/(1024*1024)),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: ReasonReadFailed, Err: err}
	}

	return ParseExport(path, data)
}

// ParseExport decodes export content. name is only used in errors.
//
// Elements that are not JSON objects are kept as nil records so they keep their
// row index; Migrate skips them with ErrRowNotObject. An empty object ({}) is a
// regular, empty record.
func ParseExport(name string, data []byte) ([]LegacyRecord, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var top any
	if err := dec.Decode(&top); err != nil {
		return nil, &LoadError{Path: name, Reason: ReasonInvalidJSON, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &LoadError{Path: name, Reason: ReasonInvalidJSON, Err: errors.New("unexpected data after top-level value")}
	}

	elems, ok := top.([]any)
	if !ok {
		return nil, &LoadError{Path: name, Reason: ReasonNotArray, Err: fmt.Errorf("top-level value is %s", jsonKind(top))}
	}

	records := make([]LegacyRecord, len(elems))
	for i, elem := range elems {
		obj, ok := elem.(map[string]any)
		if !ok {
			slog.Debug("export element is not an object", "index", i, "kind", jsonKind(elem))
			continue
		}
		records[i] = LegacyRecord(obj)
	}

	return records, nil
}

// jsonKind names the JSON type of a decoded value for error messages.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// sanitizeUTF8 replaces invalid UTF-8 bytes with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
