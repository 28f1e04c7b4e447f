package core

// convert.go provides the named conversions from legacy export values to
// canonical document fields.
//
// These functions handle the messy reality of the old export:
//   - Identifiers exported as numbers or as strings
//   - Dates as ISO-8601 text, epoch milliseconds, or bare YYYY-MM-DD
//   - Images as base64 text, sometimes empty
//
// Each conversion has an explicit input domain and returns ok=false for
// anything outside it, so the caller omits the field instead of failing the row.

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxEpochMillis is the largest distance from the epoch a timestamp may have.
// Values beyond it do not describe a representable date and are omitted.
const maxEpochMillis = 8.64e15

// dateOnlyRegex matches a bare calendar date, optionally padded with whitespace.
var dateOnlyRegex = regexp.MustCompile(`^\s*(\d{4})-(\d{2})-(\d{2})\s*$`)

// Date-time layouts split by whether the text carries its own zone.
// A bare 2006-01-02 is deliberately absent: it is handled as a local date.
var (
	zonedDateTimeLayouts = []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04Z07:00",
		time.RFC1123Z, time.RFC1123,
		time.RFC822Z, time.RFC822,
		time.RFC850, time.UnixDate, time.RubyDate,
	}
	localDateTimeLayouts = []string{
		"2006-01-02T15:04:05", "2006-01-02T15:04",
		"2006-01-02 15:04:05", "2006-01-02 15:04",
		time.ANSIC,
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006",
		"2 Jan 2006", "2 January 2006",
		"Jan 2, 2006 15:04:05", "Mon Jan 2 2006",
		"2006/01/02", "2006/01/02 15:04:05",
		"01/02/2006", "1/2/2006",
	}
)

// scalarText renders a JSON scalar as text.
// Strings are returned verbatim; objects and arrays are outside the domain.
func scalarText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return numberText(x)
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return floatText(x)
	case float32:
		return floatText(float64(x))
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	default:
		return "", false
	}
}

// numberText renders a decoded JSON number the way the legacy store printed it:
// integers exactly, everything else in shortest float form.
func numberText(n json.Number) (string, bool) {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), true
	}
	f, err := n.Float64()
	if err != nil {
		return "", false
	}
	return floatText(f)
}

func floatText(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// toIdentifier converts an exported ID to a document identifier.
// Empty strings and non-scalar values yield no identifier.
func toIdentifier(v any) (string, bool) {
	s, ok := scalarText(v)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// toText converts a name, type or rarity value.
// Any scalar is kept, including the empty string.
func toText(v any) (*string, bool) {
	s, ok := scalarText(v)
	if !ok {
		return nil, false
	}
	return &s, true
}

// toImage accepts a non-empty base64 string. Decoding happens at write time.
func toImage(v any) (Base64Image, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return Base64Image(s), true
}

// toDateAdded resolves a date value using, in order: timestamp values as-is,
// numbers as epoch milliseconds, the general date-time grammar, and finally a
// bare YYYY-MM-DD as local midnight.
func toDateAdded(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	case json.Number:
		// 0 is a real instant (the epoch), not a missing date.
		if i, err := x.Int64(); err == nil {
			return epochMillis(float64(i))
		}
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return epochMillis(f)
	case float64:
		return epochMillis(x)
	case float32:
		return epochMillis(float64(x))
	case int:
		return epochMillis(float64(x))
	case int64:
		return epochMillis(float64(x))
	case string:
		if t, ok := parseDateTime(x); ok {
			return t, true
		}
		return parseLocalDate(x)
	default:
		return time.Time{}, false
	}
}

// epochMillis interprets ms as milliseconds since the Unix epoch.
// Any fractional millisecond is truncated.
func epochMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

// parseDateTime tries the general date-time grammar.
// Layouts without a zone are read in local time.
func parseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseLocalDate builds local midnight from a strict YYYY-MM-DD.
// Out-of-range months and days roll over the way time.Date normalizes them.
func parseLocalDate(s string) (time.Time, bool) {
	m := dateOnlyRegex.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

// Decode returns the raw image bytes. Padding is optional and ASCII
// whitespace (line wrapping) is ignored.
func (b Base64Image) Decode() ([]byte, error) {
	s := strings.Join(strings.Fields(string(b)), "")
	s = strings.TrimRight(s, "=")

	data, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}
