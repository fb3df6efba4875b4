package config

import (
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"
)

// fileConfig mirrors Config for YAML input. Pointer fields distinguish
// "absent" from zero values so the file only overrides what it sets.
type fileConfig struct {
	Debug     *bool   `json:"debug,omitempty"`
	LogFormat *string `json:"logFormat,omitempty"`
	Mode      *string `json:"mode,omitempty"`

	BindAddress      *string `json:"bindAddress,omitempty"`
	Port             *int    `json:"port,omitempty"`
	HealthServerPort *string `json:"healthServerPort,omitempty"`
	ReuseAddr        *bool   `json:"reuseAddr,omitempty"`
	MaxConnections   *int    `json:"maxConnections,omitempty"`

	ReadBufferSize *int    `json:"readBufferSize,omitempty"`
	ReverseLookup  *bool   `json:"reverseLookup,omitempty"`
	LookupTimeout  *string `json:"lookupTimeout,omitempty"`
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.UnmarshalStrict(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return c.applyFile(&fc)
}

func (c *Config) applyFile(fc *fileConfig) error {
	if fc.Debug != nil {
		c.Debug = *fc.Debug
	}
	if fc.LogFormat != nil {
		c.LogFormat = LogFormat(*fc.LogFormat)
	}
	if fc.Mode != nil {
		c.Mode = Mode(*fc.Mode)
	}
	if fc.BindAddress != nil {
		c.BindAddress = *fc.BindAddress
	}
	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.HealthServerPort != nil {
		c.HealthServerPort = *fc.HealthServerPort
	}
	if fc.ReuseAddr != nil {
		c.ReuseAddr = *fc.ReuseAddr
	}
	if fc.MaxConnections != nil {
		c.MaxConnections = *fc.MaxConnections
	}
	if fc.ReadBufferSize != nil {
		c.ReadBufferSize = *fc.ReadBufferSize
	}
	if fc.ReverseLookup != nil {
		c.ReverseLookup = *fc.ReverseLookup
	}
	if fc.LookupTimeout != nil {
		d, err := time.ParseDuration(*fc.LookupTimeout)
		if err != nil {
			return fmt.Errorf("invalid lookupTimeout %q: %w", *fc.LookupTimeout, err)
		}
		c.LookupTimeout = d
	}
	return nil
}
