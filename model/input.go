// Package model defines the job domain model: jobs, their directional
// configuration and the typed input values that configuration is made of.
package model

import (
	"fmt"
	"time"

	sqerrors "github.com/chosen1st/sqoop/errors"
)

// InputType tags the runtime shape of an input value
type InputType string

const (
	InputTypeString   InputType = "STRING"
	InputTypeMap      InputType = "MAP"
	InputTypeEnum     InputType = "ENUM"
	InputTypeInteger  InputType = "INTEGER"
	InputTypeLong     InputType = "LONG"
	InputTypeBoolean  InputType = "BOOLEAN"
	InputTypeList     InputType = "LIST"
	InputTypeDateTime InputType = "DATETIME"
)

// InputTypes lists every supported tag
var InputTypes = []InputType{
	InputTypeString,
	InputTypeMap,
	InputTypeEnum,
	InputTypeInteger,
	InputTypeLong,
	InputTypeBoolean,
	InputTypeList,
	InputTypeDateTime,
}

// Valid reports whether t is a known tag
func (t InputType) Valid() bool {
	for _, known := range InputTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Input is a single named configuration slot. Value is nil while unset;
// otherwise its dynamic type depends on Type:
//
//	STRING, ENUM  string
//	MAP           map[string]string
//	INTEGER       int32
//	LONG          int64
//	BOOLEAN       bool
//	LIST          []string
//	DATETIME      time.Time
type Input struct {
	Name      string
	Type      InputType
	Sensitive bool
	// Options holds the allowed values of an ENUM input
	Options []string
	Value   interface{}
}

// NewStringInput creates a STRING input
func NewStringInput(name string, sensitive bool, value *string) Input {
	in := Input{Name: name, Type: InputTypeString, Sensitive: sensitive}
	if value != nil {
		in.Value = *value
	}
	return in
}

// NewMapInput creates a MAP input
func NewMapInput(name string, sensitive bool, value map[string]string) Input {
	in := Input{Name: name, Type: InputTypeMap, Sensitive: sensitive}
	if value != nil {
		in.Value = copyMap(value)
	}
	return in
}

// NewEnumInput creates an ENUM input restricted to options
func NewEnumInput(name string, sensitive bool, options []string, value *string) Input {
	in := Input{Name: name, Type: InputTypeEnum, Sensitive: sensitive, Options: copyList(options)}
	if value != nil {
		in.Value = *value
	}
	return in
}

// NewIntegerInput creates an INTEGER input
func NewIntegerInput(name string, sensitive bool, value *int32) Input {
	in := Input{Name: name, Type: InputTypeInteger, Sensitive: sensitive}
	if value != nil {
		in.Value = *value
	}
	return in
}

// NewLongInput creates a LONG input
func NewLongInput(name string, sensitive bool, value *int64) Input {
	in := Input{Name: name, Type: InputTypeLong, Sensitive: sensitive}
	if value != nil {
		in.Value = *value
	}
	return in
}

// NewBooleanInput creates a BOOLEAN input
func NewBooleanInput(name string, sensitive bool, value *bool) Input {
	in := Input{Name: name, Type: InputTypeBoolean, Sensitive: sensitive}
	if value != nil {
		in.Value = *value
	}
	return in
}

// NewListInput creates a LIST input
func NewListInput(name string, sensitive bool, value []string) Input {
	in := Input{Name: name, Type: InputTypeList, Sensitive: sensitive}
	if value != nil {
		in.Value = copyList(value)
	}
	return in
}

// NewDateTimeInput creates a DATETIME input
func NewDateTimeInput(name string, sensitive bool, value *time.Time) Input {
	in := Input{Name: name, Type: InputTypeDateTime, Sensitive: sensitive}
	if value != nil {
		in.Value = *value
	}
	return in
}

// IsEmpty reports whether the input has no value
func (in Input) IsEmpty() bool {
	return in.Value == nil
}

// WithValue returns a copy of the input holding v. The value is checked
// against the input type.
func (in Input) WithValue(v interface{}) (Input, error) {
	out := in.Clone()
	out.Value = cloneValue(v)
	if err := out.Validate(); err != nil {
		return in, err
	}
	return out, nil
}

// Cleared returns a copy of the input without a value
func (in Input) Cleared() Input {
	out := in.Clone()
	out.Value = nil
	return out
}

// Clone returns a deep copy of the input
func (in Input) Clone() Input {
	out := in
	out.Options = copyList(in.Options)
	out.Value = cloneValue(in.Value)
	return out
}

// Validate checks that the value shape matches the type tag
func (in Input) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("input: %w", sqerrors.ErrEmptyName)
	}
	if !in.Type.Valid() {
		return sqerrors.NewFormatError(in.Name, "known input type", string(in.Type))
	}
	if in.Value == nil {
		return nil
	}

	var ok bool
	switch in.Type {
	case InputTypeString:
		_, ok = in.Value.(string)
	case InputTypeEnum:
		var s string
		s, ok = in.Value.(string)
		if ok && len(in.Options) > 0 && !contains(in.Options, s) {
			return &sqerrors.FormatError{Field: in.Name, Expected: fmt.Sprintf("one of %v", in.Options), Got: fmt.Sprintf("%q", s)}
		}
	case InputTypeMap:
		_, ok = in.Value.(map[string]string)
	case InputTypeInteger:
		_, ok = in.Value.(int32)
	case InputTypeLong:
		_, ok = in.Value.(int64)
	case InputTypeBoolean:
		_, ok = in.Value.(bool)
	case InputTypeList:
		_, ok = in.Value.([]string)
	case InputTypeDateTime:
		_, ok = in.Value.(time.Time)
	}
	if !ok {
		return &sqerrors.FormatError{Field: in.Name, Expected: string(in.Type), Got: fmt.Sprintf("%T", in.Value)}
	}
	return nil
}

// StringValue returns the value of a STRING or ENUM input
func (in Input) StringValue() (string, bool) {
	s, ok := in.Value.(string)
	return s, ok
}

// MapValue returns the value of a MAP input
func (in Input) MapValue() (map[string]string, bool) {
	m, ok := in.Value.(map[string]string)
	return m, ok
}

// IntegerValue returns the value of an INTEGER input
func (in Input) IntegerValue() (int32, bool) {
	i, ok := in.Value.(int32)
	return i, ok
}

// LongValue returns the value of a LONG input
func (in Input) LongValue() (int64, bool) {
	i, ok := in.Value.(int64)
	return i, ok
}

// BooleanValue returns the value of a BOOLEAN input
func (in Input) BooleanValue() (bool, bool) {
	b, ok := in.Value.(bool)
	return b, ok
}

// ListValue returns the value of a LIST input
func (in Input) ListValue() ([]string, bool) {
	l, ok := in.Value.([]string)
	return l, ok
}

// DateTimeValue returns the value of a DATETIME input
func (in Input) DateTimeValue() (time.Time, bool) {
	t, ok := in.Value.(time.Time)
	return t, ok
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]string:
		return copyMap(t)
	case []string:
		return copyList(t)
	default:
		return v
	}
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyList(l []string) []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l))
	copy(out, l)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
