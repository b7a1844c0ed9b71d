package mongodb

import (
	"fmt"
	"time"
)

type Config struct {
	URI             string        `yaml:"uri" json:"uri"`
	Database        string        `yaml:"database" json:"database"`
	MaxPoolSize     uint64        `yaml:"maxPoolSize" json:"maxPoolSize"`
	MaxConnIdleTime time.Duration `yaml:"maxConnIdleTime" json:"maxConnIdleTime"`
	ConnectTimeout  time.Duration `yaml:"connectTimeout" json:"connectTimeout"`
}

func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("uri('%v')", c.URI)
	}
	if c.Database == "" {
		return fmt.Errorf("database('%v')", c.Database)
	}
	if c.MaxConnIdleTime < 0 {
		return fmt.Errorf("maxConnIdleTime('%v')", c.MaxConnIdleTime)
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connectTimeout('%v')", c.ConnectTimeout)
	}
	return nil
}
