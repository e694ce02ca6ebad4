package bean

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqerrors "github.com/chosen1st/sqoop/errors"
	"github.com/chosen1st/sqoop/model"
)

func TestExtractInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     model.Input
		sensitive bool
		want      map[string]interface{}
	}{
		{
			name:  "unset string",
			input: model.NewStringInput("s", false, nil),
			want:  map[string]interface{}{"name": "s", "type": "STRING", "sensitive": false, "value": nil},
		},
		{
			name:  "integer widened",
			input: model.NewIntegerInput("i", false, ptr(int32(7))),
			want:  map[string]interface{}{"name": "i", "type": "INTEGER", "sensitive": false, "value": int64(7)},
		},
		{
			name:  "enum carries options",
			input: model.NewEnumInput("e", false, []string{"A", "B"}, ptr("B")),
			want: map[string]interface{}{"name": "e", "type": "ENUM", "sensitive": false, "value": "B",
				"values": []interface{}{"A", "B"}},
		},
		{
			name:  "datetime as millis",
			input: model.NewDateTimeInput("d", false, ptr(time.UnixMilli(1234))),
			want:  map[string]interface{}{"name": "d", "type": "DATETIME", "sensitive": false, "value": int64(1234)},
		},
		{
			name:  "sensitive masked",
			input: model.NewStringInput("p", true, ptr("pw")),
			want:  map[string]interface{}{"name": "p", "type": "STRING", "sensitive": true, "value": nil},
		},
		{
			name:      "sensitive included",
			input:     model.NewStringInput("p", true, ptr("pw")),
			sensitive: true,
			want:      map[string]interface{}{"name": "p", "type": "STRING", "sensitive": true, "value": "pw"},
		},
		{
			name:  "map as object",
			input: model.NewMapInput("m", false, map[string]string{"k": "v"}),
			want: map[string]interface{}{"name": "m", "type": "MAP", "sensitive": false,
				"value": map[string]interface{}{"k": "v"}},
		},
		{
			name:  "list as array",
			input: model.NewListInput("l", false, []string{"a", "b"}),
			want: map[string]interface{}{"name": "l", "type": "LIST", "sensitive": false,
				"value": []interface{}{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractInput(tt.input, tt.sensitive)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		inputType model.InputType
		raw       interface{}
		want      interface{}
		wantErr   bool
	}{
		{"null", model.InputTypeLong, nil, nil, false},
		{"string", model.InputTypeString, "x", "x", false},
		{"string from number", model.InputTypeString, json.Number("1"), nil, true},
		{"integer from number", model.InputTypeInteger, json.Number("-5"), int32(-5), false},
		{"integer overflow", model.InputTypeInteger, json.Number("3000000000"), nil, true},
		{"integer from fraction", model.InputTypeInteger, json.Number("1.5"), nil, true},
		{"long keeps precision", model.InputTypeLong, json.Number("9007199254740993"), int64(9007199254740993), false},
		{"long from float", model.InputTypeLong, float64(42), int64(42), false},
		{"long from string", model.InputTypeLong, "42", nil, true},
		{"boolean", model.InputTypeBoolean, true, true, false},
		{"boolean from string", model.InputTypeBoolean, "true", nil, true},
		{"map", model.InputTypeMap, map[string]interface{}{"a": "b"}, map[string]string{"a": "b"}, false},
		{"map with number value", model.InputTypeMap, map[string]interface{}{"a": json.Number("1")}, nil, true},
		{"map from array", model.InputTypeMap, []interface{}{}, nil, true},
		{"list", model.InputTypeList, []interface{}{"a"}, []string{"a"}, false},
		{"list with bool", model.InputTypeList, []interface{}{true}, nil, true},
		{"datetime", model.InputTypeDateTime, json.Number("1000"), time.UnixMilli(1000), false},
		{"datetime from string", model.InputTypeDateTime, "2020-01-01", nil, true},
		{"enum", model.InputTypeEnum, "A", "A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeValue("field", tt.inputType, tt.raw)
			if tt.wantErr {
				var formatErr *sqerrors.FormatError
				assert.ErrorAs(t, err, &formatErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestoreInput(t *testing.T) {
	t.Parallel()

	in, err := RestoreInput(map[string]interface{}{
		"name": "mode", "type": "ENUM", "sensitive": false, "value": "B", "values": []interface{}{"A", "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.NewEnumInput("mode", false, []string{"A", "B"}, ptr("B")), in)

	_, err = RestoreInput(map[string]interface{}{
		"name": "mode", "type": "ENUM", "value": "C", "values": []interface{}{"A", "B"},
	})
	var formatErr *sqerrors.FormatError
	assert.ErrorAs(t, err, &formatErr)

	_, err = RestoreInput(map[string]interface{}{"name": "x", "type": "BLOB"})
	assert.ErrorAs(t, err, &formatErr)

	_, err = RestoreInput(map[string]interface{}{"name": "x", "type": "STRING", "sensitive": "no"})
	assert.ErrorAs(t, err, &formatErr)

	var missingErr *sqerrors.MissingFieldError
	_, err = RestoreInput(map[string]interface{}{"name": "x"})
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, KeyType, missingErr.Field)

	_, err = RestoreInput(map[string]interface{}{"type": "STRING"})
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, KeyName, missingErr.Field)
}

func TestRestoreConfig_SkeletonUntouched(t *testing.T) {
	t.Parallel()

	skeleton := model.NewConfig("c",
		model.NewStringInput("c.a", false, nil),
		model.NewListInput("c.b", false, nil),
	)

	restored, err := RestoreConfig("c", []interface{}{
		map[string]interface{}{"name": "c.a", "type": "STRING", "value": "x"},
		map[string]interface{}{"name": "c.b", "value": []interface{}{"y"}},
	}, &skeleton)
	require.NoError(t, err)

	assert.Equal(t, "x", restored.Inputs[0].Value)
	assert.Equal(t, []string{"y"}, restored.Inputs[1].Value)
	assert.Nil(t, skeleton.Inputs[0].Value)
	assert.Nil(t, skeleton.Inputs[1].Value)
}

func TestRestoreConfig_LengthMismatch(t *testing.T) {
	t.Parallel()

	skeleton := model.NewConfig("c", model.NewStringInput("c.a", false, nil))

	_, err := RestoreConfig("c", []interface{}{}, &skeleton)
	var schemaErr *sqerrors.SchemaMismatchError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "c", schemaErr.Config)
}
