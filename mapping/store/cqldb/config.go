package cqldb

import (
	"github.com/plgd-dev/assethub/pkg/cqldb"
)

// Config provides CQL DB configuration options
type Config struct {
	Embedded cqldb.Config `yaml:",inline" json:",inline"`
}

func (c *Config) Validate() error {
	return c.Embedded.Validate()
}
