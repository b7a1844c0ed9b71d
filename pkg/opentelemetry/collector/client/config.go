package client

import (
	"fmt"
	"time"
)

type GRPCConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Address of the OTLP collector, e.g. localhost:4317.
	Address  string        `yaml:"address" json:"address"`
	Insecure bool          `yaml:"insecure" json:"insecure"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

func (c *GRPCConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Address == "" {
		return fmt.Errorf("address('%v')", c.Address)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout('%v')", c.Timeout)
	}
	return nil
}

type Config struct {
	GRPC GRPCConfig `yaml:"grpc" json:"grpc"`
}

func (c *Config) Validate() error {
	if err := c.GRPC.Validate(); err != nil {
		return fmt.Errorf("grpc.%w", err)
	}
	return nil
}
