package model

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	sqerrors "github.com/chosen1st/sqoop/errors"
)

// Config is one named configuration section. Input order is significant: it
// is how values are addressed on the wire.
type Config struct {
	Name   string
	Inputs []Input
}

// NewConfig creates a config section from inputs
func NewConfig(name string, inputs ...Input) Config {
	c := Config{Name: name, Inputs: make([]Input, 0, len(inputs))}
	for _, in := range inputs {
		c.Inputs = append(c.Inputs, in.Clone())
	}
	return c
}

// Input returns the input with the given name
func (c Config) Input(name string) (Input, bool) {
	for _, in := range c.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return Input{}, false
}

// WithValue returns a rebuilt config in which the named input holds v
func (c Config) WithValue(name string, v interface{}) (Config, error) {
	for i, in := range c.Inputs {
		if in.Name != name {
			continue
		}
		updated, err := in.WithValue(v)
		if err != nil {
			return c, err
		}
		out := c.Clone()
		out.Inputs[i] = updated
		return out, nil
	}
	return c, fmt.Errorf("config %s: no input named %q", c.Name, name)
}

// Cleared returns a copy of the config with every value removed
func (c Config) Cleared() Config {
	out := Config{Name: c.Name, Inputs: make([]Input, len(c.Inputs))}
	for i, in := range c.Inputs {
		out.Inputs[i] = in.Cleared()
	}
	return out
}

// Clone returns a deep copy of the config
func (c Config) Clone() Config {
	out := Config{Name: c.Name}
	if c.Inputs != nil {
		out.Inputs = make([]Input, len(c.Inputs))
		for i, in := range c.Inputs {
			out.Inputs[i] = in.Clone()
		}
	}
	return out
}

// Validate checks input names are unique and every value matches its type
func (c Config) Validate() error {
	var result *multierror.Error
	if c.Name == "" {
		result = multierror.Append(result, fmt.Errorf("config: %w", sqerrors.ErrEmptyName))
	}

	seen := make(map[string]bool, len(c.Inputs))
	for _, in := range c.Inputs {
		if seen[in.Name] {
			result = multierror.Append(result, fmt.Errorf("config %s: duplicate input %q", c.Name, in.Name))
		}
		seen[in.Name] = true
		if err := in.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func cloneConfigs(configs []Config) []Config {
	if configs == nil {
		return nil
	}
	out := make([]Config, len(configs))
	for i, c := range configs {
		out[i] = c.Clone()
	}
	return out
}
