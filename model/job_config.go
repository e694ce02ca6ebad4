package model

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Direction identifies the side of a job a config belongs to
type Direction string

const (
	DirectionFrom Direction = "FROM"
	DirectionTo   Direction = "TO"
)

// Valid reports whether d is FROM or TO
func (d Direction) Valid() bool {
	return d == DirectionFrom || d == DirectionTo
}

// JobConfig holds one side of a job: the link and connector it uses and the
// config sections filled in for it. Link and connector names are opaque labels.
type JobConfig struct {
	Direction     Direction
	LinkName      string
	ConnectorName string
	Configs       []Config
}

// NewJobConfig creates one side of a job
func NewJobConfig(direction Direction, linkName, connectorName string, configs ...Config) JobConfig {
	return JobConfig{
		Direction:     direction,
		LinkName:      linkName,
		ConnectorName: connectorName,
		Configs:       cloneConfigs(configs),
	}
}

// Config returns the config section with the given name
func (jc JobConfig) Config(name string) (Config, bool) {
	for _, c := range jc.Configs {
		if c.Name == name {
			return c, true
		}
	}
	return Config{}, false
}

// Input returns the named input of the named config section
func (jc JobConfig) Input(configName, inputName string) (Input, bool) {
	c, ok := jc.Config(configName)
	if !ok {
		return Input{}, false
	}
	return c.Input(inputName)
}

// WithValue returns a rebuilt JobConfig in which configName.inputName holds v
func (jc JobConfig) WithValue(configName, inputName string, v interface{}) (JobConfig, error) {
	for i, c := range jc.Configs {
		if c.Name != configName {
			continue
		}
		updated, err := c.WithValue(inputName, v)
		if err != nil {
			return jc, err
		}
		out := jc.Clone()
		out.Configs[i] = updated
		return out, nil
	}
	return jc, fmt.Errorf("%s config: no section named %q", jc.Direction, configName)
}

// Clone returns a deep copy
func (jc JobConfig) Clone() JobConfig {
	out := jc
	out.Configs = cloneConfigs(jc.Configs)
	return out
}

// Validate checks the direction and every config section
func (jc JobConfig) Validate() error {
	var result *multierror.Error
	if !jc.Direction.Valid() {
		result = multierror.Append(result, fmt.Errorf("invalid direction %q", jc.Direction))
	}
	seen := make(map[string]bool, len(jc.Configs))
	for _, c := range jc.Configs {
		if seen[c.Name] {
			result = multierror.Append(result, fmt.Errorf("%s config: duplicate section %q", jc.Direction, c.Name))
		}
		seen[c.Name] = true
		if err := c.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
