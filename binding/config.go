package binding

import (
	"fmt"
	"time"

	"github.com/plgd-dev/assethub/pkg/sync/task/queue"
)

const DefaultMaxDepth = 16

type Config struct {
	// MaxDepth bounds the number of reference hops of one resolution.
	MaxDepth int `yaml:"maxDepth" json:"maxDepth"`
	// Timeout is the deadline of one resolution, 0 means no deadline.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// TaskQueue drives ResolveAll.
	TaskQueue queue.Config `yaml:"taskQueue" json:"taskQueue"`
}

func MakeDefaultConfig() Config {
	return Config{
		MaxDepth:  DefaultMaxDepth,
		Timeout:   time.Second * 10,
		TaskQueue: queue.MakeDefaultConfig(),
	}
}

func (c *Config) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("maxDepth('%v')", c.MaxDepth)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout('%v')", c.Timeout)
	}
	if err := c.TaskQueue.Validate(); err != nil {
		return fmt.Errorf("taskQueue.%w", err)
	}
	return nil
}
