package document

import (
	"encoding/json"
	"math"
	"testing"

	sqerrors "github.com/chosen1st/sqoop/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "empty object", text: `{}`},
		{name: "nested", text: `{"jobs":[{"id":22,"name":"x","enabled":false}]}`},
		{name: "whitespace around", text: "  {\"a\":1}\n"},
		{name: "empty text", text: ``, wantErr: true},
		{name: "truncated", text: `{"jobs": [`, wantErr: true},
		{name: "array root", text: `[1,2]`, wantErr: true},
		{name: "string root", text: `"jobs"`, wantErr: true},
		{name: "trailing data", text: `{"a":1} {"b":2}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				var parseErr *sqerrors.ParseError
				assert.ErrorAs(t, err, &parseErr)
				assert.Nil(t, doc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, doc)
		})
	}
}

func TestParse_PreservesLargeIntegers(t *testing.T) {
	t.Parallel()

	doc, err := Parse(`{"id":9007199254740993}`)
	require.NoError(t, err)

	id, ok := Int64(doc["id"])
	require.True(t, ok)
	assert.Equal(t, int64(9007199254740993), id)
}

func TestToText_RoundTrip(t *testing.T) {
	t.Parallel()

	original := Document{
		"version": 1,
		"name":    "The big Job",
		"enabled": false,
		"value":   nil,
		"list":    []interface{}{"a", "b"},
		"map":     map[string]interface{}{"k": "v"},
	}

	text, err := ToText(original)
	require.NoError(t, err)

	parsed, err := Parse(text)
	require.NoError(t, err)

	assert.Equal(t, "The big Job", parsed["name"])
	assert.Equal(t, false, parsed["enabled"])
	assert.Contains(t, parsed, "value")
	assert.Nil(t, parsed["value"])
	assert.Equal(t, []interface{}{"a", "b"}, parsed["list"])
	assert.Equal(t, map[string]interface{}{"k": "v"}, parsed["map"])

	version, ok := Int64(parsed["version"])
	require.True(t, ok)
	assert.Equal(t, int64(1), version)
}

func TestToText_Nil(t *testing.T) {
	t.Parallel()

	text, err := ToText(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", text)
}

func TestInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  interface{}
		want   int64
		wantOK bool
	}{
		{"int", 22, 22, true},
		{"int32", int32(-5), -5, true},
		{"int64", int64(1 << 40), 1 << 40, true},
		{"integral float", float64(44), 44, true},
		{"fractional float", 4.5, 0, false},
		{"infinite float", math.Inf(1), 0, false},
		{"float at 2^63", float64(1 << 63), 0, false},
		{"float at -2^63", float64(-(1 << 63)), math.MinInt64, true},
		{"json number", json.Number("1700000000000"), 1700000000000, true},
		{"fractional json number", json.Number("1.25"), 0, false},
		{"string", "22", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Int64(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObject(t *testing.T) {
	t.Parallel()

	obj, ok := Object(map[string]interface{}{"a": 1})
	assert.True(t, ok)
	assert.Len(t, obj, 1)

	obj, ok = Object(Document{"b": 2})
	assert.True(t, ok)
	assert.Len(t, obj, 1)

	_, ok = Object([]interface{}{})
	assert.False(t, ok)
}
