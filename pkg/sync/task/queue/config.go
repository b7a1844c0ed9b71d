package queue

import (
	"fmt"
	"time"
)

// Config configuration for task queue.
type Config struct {
	// GoPoolSize maximum number of running goroutine instances.
	GoPoolSize int `yaml:"goPoolSize" json:"goPoolSize"`
	// Size size of queue. If it is exhausted Submit returns error.
	Size int `yaml:"size" json:"size"`
	// MaxIdleTime sets up the interval time of cleaning up goroutines, 0 means never cleanup.
	MaxIdleTime time.Duration `yaml:"maxIdleTime" json:"maxIdleTime"`
}

func MakeDefaultConfig() Config {
	return Config{
		GoPoolSize:  16,
		Size:        2048,
		MaxIdleTime: time.Minute * 10,
	}
}

func (c *Config) Validate() error {
	if c.GoPoolSize <= 0 {
		return fmt.Errorf("goPoolSize('%v')", c.GoPoolSize)
	}
	if c.Size <= 0 {
		return fmt.Errorf("size('%v')", c.Size)
	}
	if c.MaxIdleTime < 0 {
		return fmt.Errorf("maxIdleTime('%v')", c.MaxIdleTime)
	}
	return nil
}
