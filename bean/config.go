package bean

import (
	"fmt"

	"github.com/chosen1st/sqoop/document"
	sqerrors "github.com/chosen1st/sqoop/errors"
	"github.com/chosen1st/sqoop/model"
)

// ExtractConfig emits the inputs of a config section in order
func ExtractConfig(c model.Config, includeSensitive bool) ([]interface{}, error) {
	inputs := make([]interface{}, 0, len(c.Inputs))
	for _, in := range c.Inputs {
		obj, err := ExtractInput(in, includeSensitive)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", c.Name, err)
		}
		inputs = append(inputs, obj)
	}
	return inputs, nil
}

// RestoreConfig rebuilds a config section from its wire inputs.
//
// Without a skeleton the inputs are created from their wire type tags. With a
// skeleton the wire array is bound to the skeleton's inputs by position: the
// lengths must agree and each position must carry the same input name and
// type, otherwise a SchemaMismatchError is returned. The skeleton itself is
// never modified.
func RestoreConfig(name string, inputs []interface{}, skeleton *model.Config) (model.Config, error) {
	if skeleton != nil && len(inputs) != len(skeleton.Inputs) {
		return model.Config{}, sqerrors.NewSchemaMismatchError(name,
			"expected %d inputs, got %d", len(skeleton.Inputs), len(inputs))
	}

	c := model.Config{Name: name, Inputs: make([]model.Input, 0, len(inputs))}
	for i, raw := range inputs {
		obj, ok := document.Object(raw)
		if !ok {
			return model.Config{}, sqerrors.NewFormatError(fmt.Sprintf("%s[%d]", name, i), "object", raw)
		}

		if skeleton == nil {
			in, err := RestoreInput(obj)
			if err != nil {
				return model.Config{}, fmt.Errorf("config %s: %w", name, err)
			}
			c.Inputs = append(c.Inputs, in)
			continue
		}

		in, err := restoreIntoSlot(name, i, obj, skeleton.Inputs[i])
		if err != nil {
			return model.Config{}, err
		}
		c.Inputs = append(c.Inputs, in)
	}
	return c, nil
}

// restoreIntoSlot decodes a wire input into a copy of the skeleton slot at
// the same position
func restoreIntoSlot(configName string, pos int, obj map[string]interface{}, slot model.Input) (model.Input, error) {
	name, err := requiredString(obj, "input", KeyName)
	if err != nil {
		return model.Input{}, fmt.Errorf("config %s: %w", configName, err)
	}
	if name != slot.Name {
		return model.Input{}, sqerrors.NewSchemaMismatchError(configName,
			"input %d is %q on the wire but %q in the schema", pos, name, slot.Name)
	}
	if raw, ok := obj[KeyType]; ok && raw != nil {
		tag, ok := document.String(raw)
		if !ok {
			return model.Input{}, sqerrors.NewFormatError(name+"."+KeyType, "string", raw)
		}
		if model.InputType(tag) != slot.Type {
			return model.Input{}, sqerrors.NewSchemaMismatchError(configName,
				"input %q is %s on the wire but %s in the schema", name, tag, slot.Type)
		}
	}

	value, err := DecodeValue(name, slot.Type, obj[KeyValue])
	if err != nil {
		return model.Input{}, fmt.Errorf("config %s: %w", configName, err)
	}

	in := slot.Clone()
	in.Value = value
	if err := in.Validate(); err != nil {
		return model.Input{}, fmt.Errorf("config %s: %w", configName, err)
	}
	return in, nil
}

// ExtractJobConfig emits every config section of one side of a job
func ExtractJobConfig(jc model.JobConfig, includeSensitive bool) ([]interface{}, error) {
	configs := make([]interface{}, 0, len(jc.Configs))
	for _, c := range jc.Configs {
		inputs, err := ExtractConfig(c, includeSensitive)
		if err != nil {
			return nil, err
		}
		configs = append(configs, map[string]interface{}{
			KeyName:   c.Name,
			KeyInputs: inputs,
		})
	}
	return configs, nil
}

// RestoreJobConfig rebuilds the config sections of one side of a job. When
// skeleton is non-nil the sections are bound to it by position.
func RestoreJobConfig(field string, raw interface{}, skeleton []model.Config) ([]model.Config, error) {
	arr, ok := document.Array(raw)
	if !ok {
		return nil, sqerrors.NewFormatError(field, "array", raw)
	}
	if skeleton != nil && len(arr) != len(skeleton) {
		return nil, sqerrors.NewSchemaMismatchError(field,
			"expected %d config sections, got %d", len(skeleton), len(arr))
	}

	configs := make([]model.Config, 0, len(arr))
	for i, item := range arr {
		obj, ok := document.Object(item)
		if !ok {
			return nil, sqerrors.NewFormatError(fmt.Sprintf("%s[%d]", field, i), "object", item)
		}
		name, err := requiredString(obj, "config", KeyName)
		if err != nil {
			return nil, err
		}

		var inputs []interface{}
		if rawInputs, ok := obj[KeyInputs]; ok && rawInputs != nil {
			inputs, ok = document.Array(rawInputs)
			if !ok {
				return nil, sqerrors.NewFormatError(name+"."+KeyInputs, "array", rawInputs)
			}
		}

		var slot *model.Config
		if skeleton != nil {
			if skeleton[i].Name != name {
				return nil, sqerrors.NewSchemaMismatchError(field,
					"section %d is %q on the wire but %q in the schema", i, name, skeleton[i].Name)
			}
			slot = &skeleton[i]
		}

		c, err := RestoreConfig(name, inputs, slot)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, nil
}
