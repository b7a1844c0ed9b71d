package history

import (
	"fmt"
	"strings"
)

type Mode string

const (
	// ModePipeline stitches the history in one server side aggregation.
	ModePipeline Mode = "pipeline"
	// ModeClient loads the slice of every source and stitches them in process.
	ModeClient Mode = "client"
)

type Config struct {
	Mode     Mode  `yaml:"mode" json:"mode"`
	MaxTicks int64 `yaml:"maxTicks" json:"maxTicks"`
	// MaxConcurrentSources bounds the slices loaded in parallel in client mode.
	MaxConcurrentSources int `yaml:"maxConcurrentSources" json:"maxConcurrentSources"`
	// LegacyTruncation buckets timestamps by reassembling date strings.
	LegacyTruncation bool `yaml:"legacyTruncation" json:"legacyTruncation"`
}

func MakeDefaultConfig() Config {
	return Config{
		Mode:                 ModePipeline,
		MaxTicks:             10000,
		MaxConcurrentSources: 8,
	}
}

func (c *Config) Validate() error {
	switch Mode(strings.ToLower(string(c.Mode))) {
	case "", ModePipeline:
		c.Mode = ModePipeline
	case ModeClient:
		c.Mode = ModeClient
	default:
		return fmt.Errorf("mode('%v') - only %v or %v are supported", c.Mode, ModePipeline, ModeClient)
	}
	if c.MaxTicks <= 0 {
		return fmt.Errorf("maxTicks('%v')", c.MaxTicks)
	}
	if c.MaxConcurrentSources <= 0 {
		return fmt.Errorf("maxConcurrentSources('%v')", c.MaxConcurrentSources)
	}
	return nil
}
