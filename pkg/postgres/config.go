package postgres

import (
	"fmt"
	"time"
)

type Config struct {
	URL             string        `yaml:"url" json:"url"`
	MaxOpenConns    int           `yaml:"maxOpenConns" json:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns" json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" json:"connMaxLifetime"`
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url('%v')", c.URL)
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("maxOpenConns('%v')", c.MaxOpenConns)
	}
	if c.MaxIdleConns < 0 {
		return fmt.Errorf("maxIdleConns('%v')", c.MaxIdleConns)
	}
	if c.ConnMaxLifetime < 0 {
		return fmt.Errorf("connMaxLifetime('%v')", c.ConnMaxLifetime)
	}
	return nil
}
