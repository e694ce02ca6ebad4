package bean

import (
	"fmt"
	"math"
	"time"

	"github.com/chosen1st/sqoop/document"
	sqerrors "github.com/chosen1st/sqoop/errors"
	"github.com/chosen1st/sqoop/model"
)

// ExtractInput converts an input into its wire object. Sensitive values are
// written as null unless includeSensitive is set.
func ExtractInput(in model.Input, includeSensitive bool) (map[string]interface{}, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	obj := map[string]interface{}{
		KeyName:      in.Name,
		KeyType:      string(in.Type),
		KeySensitive: in.Sensitive,
		KeyValue:     nil,
	}
	if in.Type == model.InputTypeEnum && len(in.Options) > 0 {
		obj[KeyValues] = stringsToArray(in.Options)
	}
	if in.Sensitive && !includeSensitive {
		return obj, nil
	}

	value, err := EncodeValue(in)
	if err != nil {
		return nil, err
	}
	obj[KeyValue] = value
	return obj, nil
}

// EncodeValue converts an input value into a JSON primitive
func EncodeValue(in model.Input) (interface{}, error) {
	if in.Value == nil {
		return nil, nil
	}

	switch in.Type {
	case model.InputTypeString, model.InputTypeEnum:
		s, _ := in.StringValue()
		return s, nil
	case model.InputTypeMap:
		m, _ := in.MapValue()
		obj := make(map[string]interface{}, len(m))
		for k, v := range m {
			obj[k] = v
		}
		return obj, nil
	case model.InputTypeInteger:
		i, _ := in.IntegerValue()
		return int64(i), nil
	case model.InputTypeLong:
		i, _ := in.LongValue()
		return i, nil
	case model.InputTypeBoolean:
		b, _ := in.BooleanValue()
		return b, nil
	case model.InputTypeList:
		l, _ := in.ListValue()
		return stringsToArray(l), nil
	case model.InputTypeDateTime:
		t, _ := in.DateTimeValue()
		return t.UnixMilli(), nil
	default:
		return nil, sqerrors.NewFormatError(in.Name, "known input type", string(in.Type))
	}
}

// RestoreInput builds an input from its wire object using only the wire type tag
func RestoreInput(obj map[string]interface{}) (model.Input, error) {
	name, err := requiredString(obj, "input", KeyName)
	if err != nil {
		return model.Input{}, err
	}
	tag, err := requiredString(obj, "input", KeyType)
	if err != nil {
		return model.Input{}, err
	}
	inputType := model.InputType(tag)
	if !inputType.Valid() {
		return model.Input{}, sqerrors.NewFormatError(name+"."+KeyType, "known input type", tag)
	}

	in := model.Input{Name: name, Type: inputType}

	if raw, ok := obj[KeySensitive]; ok && raw != nil {
		sensitive, ok := document.Bool(raw)
		if !ok {
			return model.Input{}, sqerrors.NewFormatError(name+"."+KeySensitive, "boolean", raw)
		}
		in.Sensitive = sensitive
	}

	if raw, ok := obj[KeyValues]; ok && raw != nil {
		options, err := arrayToStrings(name+"."+KeyValues, raw)
		if err != nil {
			return model.Input{}, err
		}
		in.Options = options
	}

	value, err := DecodeValue(name, inputType, obj[KeyValue])
	if err != nil {
		return model.Input{}, err
	}
	in.Value = value

	if err := in.Validate(); err != nil {
		return model.Input{}, err
	}
	return in, nil
}

// DecodeValue converts a JSON primitive into the runtime value required by
// inputType. A JSON kind that does not match the type yields a FormatError.
func DecodeValue(name string, inputType model.InputType, raw interface{}) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}

	switch inputType {
	case model.InputTypeString, model.InputTypeEnum:
		s, ok := document.String(raw)
		if !ok {
			return nil, sqerrors.NewFormatError(name, "string", raw)
		}
		return s, nil
	case model.InputTypeMap:
		obj, ok := document.Object(raw)
		if !ok {
			return nil, sqerrors.NewFormatError(name, "object", raw)
		}
		m := make(map[string]string, len(obj))
		for k, v := range obj {
			s, ok := document.String(v)
			if !ok {
				return nil, sqerrors.NewFormatError(name+"."+k, "string", v)
			}
			m[k] = s
		}
		return m, nil
	case model.InputTypeInteger:
		i, ok := document.Int64(raw)
		if !ok || i > math.MaxInt32 || i < math.MinInt32 {
			return nil, sqerrors.NewFormatError(name, "32-bit integer", raw)
		}
		return int32(i), nil
	case model.InputTypeLong:
		i, ok := document.Int64(raw)
		if !ok {
			return nil, sqerrors.NewFormatError(name, "integer", raw)
		}
		return i, nil
	case model.InputTypeBoolean:
		b, ok := document.Bool(raw)
		if !ok {
			return nil, sqerrors.NewFormatError(name, "boolean", raw)
		}
		return b, nil
	case model.InputTypeList:
		return arrayToStrings(name, raw)
	case model.InputTypeDateTime:
		ms, ok := document.Int64(raw)
		if !ok {
			return nil, sqerrors.NewFormatError(name, "epoch milliseconds", raw)
		}
		return time.UnixMilli(ms), nil
	default:
		return nil, sqerrors.NewFormatError(name, "known input type", string(inputType))
	}
}

func requiredString(obj map[string]interface{}, entity, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return "", sqerrors.NewMissingFieldError(entity, key)
	}
	s, ok := document.String(raw)
	if !ok {
		return "", sqerrors.NewFormatError(fmt.Sprintf("%s.%s", entity, key), "string", raw)
	}
	return s, nil
}

func stringsToArray(l []string) []interface{} {
	arr := make([]interface{}, len(l))
	for i, s := range l {
		arr[i] = s
	}
	return arr
}

func arrayToStrings(field string, raw interface{}) ([]string, error) {
	arr, ok := document.Array(raw)
	if !ok {
		return nil, sqerrors.NewFormatError(field, "array", raw)
	}
	out := make([]string, len(arr))
	for i, v := range arr {
		s, ok := document.String(v)
		if !ok {
			return nil, sqerrors.NewFormatError(fmt.Sprintf("%s[%d]", field, i), "string", v)
		}
		out[i] = s
	}
	return out, nil
}
