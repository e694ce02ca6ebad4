package document

import "math"

// numberLiteral matches json.Number from either the standard library or
// goccy/go-json
type numberLiteral interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// Int64 returns v as an integer. Native Go integers, integral floats and JSON
// number literals without a fractional part are accepted.
func Int64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n >= 1<<63 || n < -(1<<63) {
			return 0, false
		}
		return int64(n), true
	case numberLiteral:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// String returns v as a string
func String(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Bool returns v as a boolean
func Bool(v interface{}) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// Array returns v as a JSON array
func Array(v interface{}) ([]interface{}, bool) {
	a, ok := v.([]interface{})
	return a, ok
}

// Object returns v as a JSON object. Documents produced in memory by an
// extract and documents produced by Parse are both accepted.
func Object(v interface{}) (map[string]interface{}, bool) {
	switch o := v.(type) {
	case map[string]interface{}:
		return o, true
	case Document:
		return o, true
	default:
		return nil, false
	}
}
