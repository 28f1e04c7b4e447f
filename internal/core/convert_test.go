package core

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// toIdentifier Tests
// ----------------------------------------------------------------------------

func TestToIdentifier(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   string
		wantOK bool
	}{
		{name: "string id", input: "abc-1", want: "abc-1", wantOK: true},
		{name: "json integer", input: json.Number("42"), want: "42", wantOK: true},
		{name: "json large integer keeps digits", input: json.Number("9007199254740993"), want: "9007199254740993", wantOK: true},
		{name: "json decimal", input: json.Number("1.5"), want: "1.5", wantOK: true},
		{name: "json integral decimal", input: json.Number("7.0"), want: "7", wantOK: true},
		{name: "native int", input: 12, want: "12", wantOK: true},
		{name: "native float", input: 3.0, want: "3", wantOK: true},
		{name: "bool", input: true, want: "true", wantOK: true},
		{name: "whitespace kept verbatim", input: " 5 ", want: " 5 ", wantOK: true},
		{name: "empty string omitted", input: "", wantOK: false},
		{name: "nil omitted", input: nil, wantOK: false},
		{name: "object omitted", input: map[string]any{"a": 1}, wantOK: false},
		{name: "array omitted", input: []any{1}, wantOK: false},
		{name: "NaN omitted", input: math.NaN(), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toIdentifier(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("toIdentifier(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("toIdentifier(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// toText Tests
// ----------------------------------------------------------------------------

func TestToText(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   string
		wantOK bool
	}{
		{name: "string verbatim", input: "Pikachu", want: "Pikachu", wantOK: true},
		{name: "surrounding spaces kept", input: "  Fire ", want: "  Fire ", wantOK: true},
		{name: "empty string kept", input: "", want: "", wantOK: true},
		{name: "number as text", input: json.Number("25"), want: "25", wantOK: true},
		{name: "bool as text", input: false, want: "false", wantOK: true},
		{name: "object omitted", input: map[string]any{}, wantOK: false},
		{name: "array omitted", input: []any{"Rare"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toText(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("toText(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				if got != nil {
					t.Errorf("toText(%v) = %q, want nil", tt.input, *got)
				}
				return
			}
			if *got != tt.want {
				t.Errorf("toText(%v) = %q, want %q", tt.input, *got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// toImage Tests
// ----------------------------------------------------------------------------

func TestToImage(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		wantOK bool
	}{
		{name: "base64 text", input: "aGVsbG8=", wantOK: true},
		{name: "invalid base64 still accepted until write", input: "!!!", wantOK: true},
		{name: "empty string omitted", input: "", wantOK: false},
		{name: "number omitted", input: json.Number("1"), wantOK: false},
		{name: "nil omitted", input: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toImage(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("toImage(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && string(got) != tt.input.(string) {
				t.Errorf("toImage(%v) = %q, want input unchanged", tt.input, got)
			}
		})
	}
}

func TestBase64ImageDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   Base64Image
		want    []byte
		wantErr bool
	}{
		{name: "padded", input: "aGVsbG8=", want: []byte("hello")},
		{name: "unpadded", input: "aGVsbG8", want: []byte("hello")},
		{name: "line wrapped", input: "aGVs\nbG8=\n", want: []byte("hello")},
		{name: "binary bytes", input: "iVBORw0KGgo=", want: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}},
		{name: "illegal characters", input: "not*base64", wantErr: true},
		{name: "truncated quantum", input: "a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Decode()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", tt.input, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Decode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// toDateAdded Tests
// ----------------------------------------------------------------------------

func TestToDateAdded(t *testing.T) {
	ts := time.Date(2023, 11, 5, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		input  any
		want   time.Time
		wantOK bool
	}{
		// Rule 1: absent
		{name: "nil omitted", input: nil, wantOK: false},

		// Rule 2: timestamp values
		{name: "time value as-is", input: ts, want: ts, wantOK: true},
		{name: "time pointer as-is", input: &ts, want: ts, wantOK: true},
		{name: "nil time pointer omitted", input: (*time.Time)(nil), wantOK: false},

		// Rule 3: epoch milliseconds
		{name: "json epoch millis", input: json.Number("1710460800000"), want: time.UnixMilli(1710460800000), wantOK: true},
		{name: "json fractional millis truncated", input: json.Number("1500.9"), want: time.UnixMilli(1500), wantOK: true},
		{name: "zero is the epoch", input: json.Number("0"), want: time.UnixMilli(0), wantOK: true},
		{name: "float epoch millis", input: float64(86400000), want: time.UnixMilli(86400000), wantOK: true},
		{name: "int epoch millis", input: int64(-1000), want: time.UnixMilli(-1000), wantOK: true},
		{name: "out of range millis omitted", input: json.Number("9e15"), wantOK: false},
		{name: "infinite millis omitted", input: math.Inf(1), wantOK: false},

		// Rule 4: general date-time grammar
		{name: "RFC3339 UTC", input: "2024-03-15T10:20:30Z", want: time.Date(2024, 3, 15, 10, 20, 30, 0, time.UTC), wantOK: true},
		{name: "RFC3339 fractional", input: "2024-03-15T10:20:30.123Z", want: time.Date(2024, 3, 15, 10, 20, 30, 123000000, time.UTC), wantOK: true},
		{name: "RFC3339 offset", input: "2024-03-15T10:20:30+02:00", want: time.Date(2024, 3, 15, 8, 20, 30, 0, time.UTC), wantOK: true},
		{name: "local date-time", input: "2024-03-15T10:20:30", want: time.Date(2024, 3, 15, 10, 20, 30, 0, time.Local), wantOK: true},
		{name: "space separated", input: "2024-03-15 10:20", want: time.Date(2024, 3, 15, 10, 20, 0, 0, time.Local), wantOK: true},
		{name: "month name", input: "Mar 15, 2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), wantOK: true},
		{name: "RFC1123", input: "Fri, 15 Mar 2024 10:20:30 GMT", want: time.Date(2024, 3, 15, 10, 20, 30, 0, time.UTC), wantOK: true},
		{name: "trimmed", input: "  2024-03-15T10:20:30Z ", want: time.Date(2024, 3, 15, 10, 20, 30, 0, time.UTC), wantOK: true},

		// Rule 5: bare calendar date at local midnight
		{name: "date only", input: "2024-03-15", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), wantOK: true},
		{name: "date only padded", input: " 2024-03-15 ", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), wantOK: true},
		{name: "date only rolls over", input: "2024-02-30", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), wantOK: true},

		// Rule 6: nothing applies
		{name: "garbage text", input: "last tuesday", wantOK: false},
		{name: "empty text", input: "", wantOK: false},
		{name: "numeric text", input: "1710460800000", wantOK: false},
		{name: "bool", input: true, wantOK: false},
		{name: "object", input: map[string]any{"$date": "2024-03-15"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toDateAdded(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("toDateAdded(%v) ok = %v (got %v), want %v", tt.input, ok, got, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("toDateAdded(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLocalDate_IsLocalMidnight(t *testing.T) {
	got, ok := parseLocalDate("2024-03-15")
	if !ok {
		t.Fatal("parseLocalDate() ok = false, want true")
	}
	if got.Location() != time.Local {
		t.Errorf("Location() = %v, want Local", got.Location())
	}
	if h, m, s := got.Clock(); h != 0 || m != 0 || s != 0 {
		t.Errorf("Clock() = %02d:%02d:%02d, want midnight", h, m, s)
	}
	if y, mo, d := got.Date(); y != 2024 || mo != time.March || d != 15 {
		t.Errorf("Date() = %d-%02d-%02d, want 2024-03-15", y, mo, d)
	}
}

func TestParseDateTime_RejectsBareDate(t *testing.T) {
	if got, ok := parseDateTime("2024-03-15"); ok {
		t.Errorf("parseDateTime(%q) = %v, want no match (bare dates are local midnight)", "2024-03-15", got)
	}
}
