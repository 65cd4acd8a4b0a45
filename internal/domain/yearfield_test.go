package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Construction and classification
// ============================================================================

func TestYearField_States(t *testing.T) {
	absent := YearAbsent()
	assert.True(t, absent.IsAbsent())
	assert.False(t, absent.IsSentinel())
	assert.False(t, absent.IsNumeric())
	assert.False(t, absent.IsMalformed())

	sentinel := YearPresent()
	assert.True(t, sentinel.IsSentinel())
	assert.False(t, sentinel.IsAbsent())

	numeric := Year(2020)
	assert.True(t, numeric.IsNumeric())
	y, ok := numeric.Int()
	assert.True(t, ok)
	assert.Equal(t, 2020, y)

	malformed := YearFromString("soon")
	assert.True(t, malformed.IsMalformed())
	_, ok = malformed.Int()
	assert.False(t, ok)
}

func TestYearFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, f YearField)
	}{
		{"empty is absent", "", func(t *testing.T, f YearField) { assert.True(t, f.IsAbsent()) }},
		{"whitespace is absent", "   ", func(t *testing.T, f YearField) { assert.True(t, f.IsAbsent()) }},
		{"sentinel", "present", func(t *testing.T, f YearField) { assert.True(t, f.IsSentinel()) }},
		{"digits", "2024", func(t *testing.T, f YearField) {
			y, ok := f.Int()
			assert.True(t, ok)
			assert.Equal(t, 2024, y)
		}},
		{"digits with whitespace", " 2024 ", func(t *testing.T, f YearField) { assert.True(t, f.IsNumeric()) }},
		{"negative year parses numeric", "-5", func(t *testing.T, f YearField) { assert.True(t, f.IsNumeric()) }},
		{"text is malformed", "twenty", func(t *testing.T, f YearField) { assert.True(t, f.IsMalformed()) }},
		{"decimal is malformed", "2020.5", func(t *testing.T, f YearField) { assert.True(t, f.IsMalformed()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, YearFromString(tt.input))
		})
	}
}

func TestYearField_String(t *testing.T) {
	assert.Equal(t, "", YearAbsent().String())
	assert.Equal(t, "present", YearPresent().String())
	assert.Equal(t, "2020", Year(2020).String())
	assert.Equal(t, "soonish", YearFromString("soonish").String())
}

func TestYearField_StringRoundTrip(t *testing.T) {
	// Storage round-trips through String/YearFromString.
	for _, f := range []YearField{YearAbsent(), YearPresent(), Year(1999)} {
		assert.Equal(t, f, YearFromString(f.String()))
	}
}

// ============================================================================
// JSON decoding: string | number | null all accepted
// ============================================================================

func TestYearField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, f YearField)
	}{
		{"null is absent", `null`, func(t *testing.T, f YearField) { assert.True(t, f.IsAbsent()) }},
		{"number", `2020`, func(t *testing.T, f YearField) {
			y, ok := f.Int()
			assert.True(t, ok)
			assert.Equal(t, 2020, y)
		}},
		{"numeric string", `"2020"`, func(t *testing.T, f YearField) {
			y, ok := f.Int()
			assert.True(t, ok)
			assert.Equal(t, 2020, y)
		}},
		{"sentinel string", `"present"`, func(t *testing.T, f YearField) { assert.True(t, f.IsSentinel()) }},
		{"empty string is absent", `""`, func(t *testing.T, f YearField) { assert.True(t, f.IsAbsent()) }},
		{"text string is malformed", `"not a year"`, func(t *testing.T, f YearField) { assert.True(t, f.IsMalformed()) }},
		{"fractional number is malformed", `2020.5`, func(t *testing.T, f YearField) { assert.True(t, f.IsMalformed()) }},
		{"boolean is malformed", `true`, func(t *testing.T, f YearField) { assert.True(t, f.IsMalformed()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f YearField
			require.NoError(t, json.Unmarshal([]byte(tt.input), &f))
			tt.check(t, f)
		})
	}
}

func TestYearField_UnmarshalJSON_InsideStruct(t *testing.T) {
	var payload struct {
		Start YearField `json:"employment_start_year"`
		End   YearField `json:"employment_end_year"`
	}

	// Mixed shapes in one payload, as real submissions arrive.
	raw := `{"employment_start_year": "2018", "employment_end_year": "present"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.True(t, payload.Start.IsNumeric())
	assert.True(t, payload.End.IsSentinel())

	raw = `{"employment_start_year": 2018, "employment_end_year": null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.True(t, payload.Start.IsNumeric())
	assert.True(t, payload.End.IsAbsent())
}

func TestYearField_UnmarshalJSON_MissingKeyIsAbsent(t *testing.T) {
	var payload struct {
		End YearField `json:"employment_end_year"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &payload))
	assert.True(t, payload.End.IsAbsent())
}

// ============================================================================
// JSON encoding
// ============================================================================

func TestYearField_MarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		field YearField
		want  string
	}{
		{"absent as null", YearAbsent(), `null`},
		{"sentinel as string", YearPresent(), `"present"`},
		{"numeric as number", Year(2020), `2020`},
		{"malformed keeps raw text", YearFromString("soon"), `"soon"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestYearField_JSONRoundTrip(t *testing.T) {
	for _, f := range []YearField{YearAbsent(), YearPresent(), Year(2003)} {
		data, err := json.Marshal(f)
		require.NoError(t, err)
		var back YearField
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, f, back)
	}
}
