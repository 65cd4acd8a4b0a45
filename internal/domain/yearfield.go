package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EndYearPresent is the sentinel an end-year field holds while the reviewer
// still works at the company.
const EndYearPresent = "present"

type yearState uint8

const (
	yearAbsent yearState = iota
	yearSentinel
	yearNumeric
	yearMalformed
)

// YearField models a year input that may be absent, the "present" sentinel,
// a concrete year, or malformed free text. Submissions arrive as JSON
// string, number, or null, and none of these shapes fails decoding.
// Malformed input is classified, not rejected, so the validator can report it.
type YearField struct {
	state yearState
	year  int
	raw   string
}

// YearAbsent returns a field with no value.
func YearAbsent() YearField {
	return YearField{state: yearAbsent}
}

// YearPresent returns a field holding the "present" sentinel.
func YearPresent() YearField {
	return YearField{state: yearSentinel}
}

// Year returns a field holding a concrete year.
func Year(y int) YearField {
	return YearField{state: yearNumeric, year: y}
}

// YearFromString classifies a raw string the way form input is classified:
// empty means absent, the sentinel stays a sentinel, digits become a year,
// and anything else is malformed.
func YearFromString(s string) YearField {
	trimmed := strings.TrimSpace(s)
	switch {
	case trimmed == "":
		return YearAbsent()
	case trimmed == EndYearPresent:
		return YearPresent()
	}
	if y, err := strconv.Atoi(trimmed); err == nil {
		return Year(y)
	}
	return YearField{state: yearMalformed, raw: s}
}

// IsAbsent reports whether the field has no value.
func (f YearField) IsAbsent() bool { return f.state == yearAbsent }

// IsSentinel reports whether the field holds the "present" sentinel.
func (f YearField) IsSentinel() bool { return f.state == yearSentinel }

// IsNumeric reports whether the field holds a concrete year.
func (f YearField) IsNumeric() bool { return f.state == yearNumeric }

// IsMalformed reports whether the field holds unparseable input.
func (f YearField) IsMalformed() bool { return f.state == yearMalformed }

// Int returns the concrete year and true when the field is numeric.
func (f YearField) Int() (int, bool) {
	if f.state != yearNumeric {
		return 0, false
	}
	return f.year, true
}

// String renders the field the way it is stored: "" for absent, "present"
// for the sentinel, the year digits, or the original malformed text.
func (f YearField) String() string {
	switch f.state {
	case yearSentinel:
		return EndYearPresent
	case yearNumeric:
		return strconv.Itoa(f.year)
	case yearMalformed:
		return f.raw
	default:
		return ""
	}
}

// UnmarshalJSON accepts string, number, or null without error. A fractional
// number is malformed; a numeric string is a concrete year.
func (f *YearField) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = YearAbsent()
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = YearFromString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// Not a string, null, or number: classify rather than fail.
		*f = YearField{state: yearMalformed, raw: trimmed}
		return nil
	}
	if y, err := strconv.Atoi(n.String()); err == nil {
		*f = Year(y)
		return nil
	}
	*f = YearField{state: yearMalformed, raw: n.String()}
	return nil
}

// MarshalJSON renders absent as null, the sentinel and malformed text as
// strings, and a concrete year as a number.
func (f YearField) MarshalJSON() ([]byte, error) {
	switch f.state {
	case yearAbsent:
		return []byte("null"), nil
	case yearSentinel:
		return json.Marshal(EndYearPresent)
	case yearNumeric:
		return []byte(strconv.Itoa(f.year)), nil
	default:
		return json.Marshal(f.raw)
	}
}
