package config

import (
	"fmt"

	"github.com/chosen1st/sqoop/model"
	"github.com/chosen1st/sqoop/registry"
)

// ConnectorConfig declares the config skeletons of one connector
type ConnectorConfig struct {
	Name string         `json:"name" yaml:"name"`
	From []SchemaConfig `json:"from" yaml:"from"`
	To   []SchemaConfig `json:"to" yaml:"to"`
}

// SchemaConfig declares one config section
type SchemaConfig struct {
	Name   string        `json:"name" yaml:"name"`
	Inputs []InputConfig `json:"inputs" yaml:"inputs"`
}

// InputConfig declares one input slot
type InputConfig struct {
	Name      string   `json:"name" yaml:"name"`
	Type      string   `json:"type" yaml:"type"`
	Sensitive bool     `json:"sensitive" yaml:"sensitive"`
	Values    []string `json:"values" yaml:"values"`
}

// NewRegistry registers every configured connector. It returns nil when no
// connectors are configured, leaving restore on the wire tags.
func (c *Config) NewRegistry() (*registry.Registry, error) {
	if len(c.Transcoder.Connectors) == 0 {
		return nil, nil
	}

	reg := registry.NewRegistry()
	for _, conn := range c.Transcoder.Connectors {
		if err := reg.RegisterConnector(registry.Connector{
			Name: conn.Name,
			From: toConfigs(conn.From),
			To:   toConfigs(conn.To),
		}); err != nil {
			return nil, fmt.Errorf("register connector: %w", err)
		}
	}
	return reg, nil
}

func toConfigs(schemas []SchemaConfig) []model.Config {
	configs := make([]model.Config, 0, len(schemas))
	for _, s := range schemas {
		inputs := make([]model.Input, 0, len(s.Inputs))
		for _, in := range s.Inputs {
			inputs = append(inputs, model.Input{
				Name:      in.Name,
				Type:      model.InputType(in.Type),
				Sensitive: in.Sensitive,
				Options:   in.Values,
			})
		}
		configs = append(configs, model.NewConfig(s.Name, inputs...))
	}
	return configs
}
