package postgres

import (
	"github.com/plgd-dev/assethub/pkg/postgres"
)

type Config struct {
	Embedded postgres.Config `yaml:",inline" json:",inline"`
}

func (c *Config) Validate() error {
	return c.Embedded.Validate()
}
