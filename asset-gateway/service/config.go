package service

import (
	"fmt"

	"github.com/plgd-dev/assethub/binding"
	"github.com/plgd-dev/assethub/history"
	"github.com/plgd-dev/assethub/lifecycle"
	storeConfig "github.com/plgd-dev/assethub/mapping/store/config"
	"github.com/plgd-dev/assethub/pkg/config"
	"github.com/plgd-dev/assethub/pkg/log"
	pkgHttp "github.com/plgd-dev/assethub/pkg/net/http"
	"github.com/plgd-dev/assethub/query/filter"
	documentsMongo "github.com/plgd-dev/assethub/telemetry/store/mongodb"
)

type APIsConfig struct {
	HTTP pkgHttp.Config `yaml:"http" json:"http"`
}

func (c *APIsConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http.%w", err)
	}
	return nil
}

type DocumentsConfig struct {
	MongoDB documentsMongo.Config `yaml:"mongoDB" json:"mongoDb"`
	// TelemetryFields extends the filterable fields of the telemetry resource.
	TelemetryFields []FieldConfig `yaml:"telemetryFields" json:"telemetryFields"`
}

type FieldConfig struct {
	Name string `yaml:"name" json:"name"`
	Key  string `yaml:"key" json:"key"`
	// Type is one of string, number, time, bool.
	Type string `yaml:"type" json:"type"`
}

func (c FieldConfig) ToField() (filter.Field, error) {
	f := filter.Field{Name: c.Name, Key: c.Key}
	if c.Name == "" {
		return f, fmt.Errorf("name('%v')", c.Name)
	}
	switch c.Type {
	case "", "string":
		f.Type = filter.String
	case "number":
		f.Type = filter.Number
	case "time":
		f.Type = filter.Time
	case "bool":
		f.Type = filter.Bool
	default:
		return f, fmt.Errorf("type('%v')", c.Type)
	}
	return f, nil
}

func (c *DocumentsConfig) Validate() error {
	if err := c.MongoDB.Validate(); err != nil {
		return fmt.Errorf("mongoDB.%w", err)
	}
	for i, f := range c.TelemetryFields {
		if _, err := f.ToField(); err != nil {
			return fmt.Errorf("telemetryFields[%v].%w", i, err)
		}
	}
	return nil
}

type ClientsConfig struct {
	Storage                storeConfig.Config                   `yaml:"storage" json:"storage"`
	Documents              DocumentsConfig                      `yaml:"documents" json:"documents"`
	OpenTelemetryCollector pkgHttp.OpenTelemetryCollectorConfig `yaml:"openTelemetryCollector" json:"openTelemetryCollector"`
}

func (c *ClientsConfig) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage.%w", err)
	}
	if err := c.Documents.Validate(); err != nil {
		return fmt.Errorf("documents.%w", err)
	}
	if err := c.OpenTelemetryCollector.Validate(); err != nil {
		return fmt.Errorf("openTelemetryCollector.%w", err)
	}
	return nil
}

// Config represent application configuration
type Config struct {
	Log       log.Config       `yaml:"log" json:"log"`
	APIs      APIsConfig       `yaml:"apis" json:"apis"`
	Clients   ClientsConfig    `yaml:"clients" json:"clients"`
	Binding   binding.Config   `yaml:"binding" json:"binding"`
	History   history.Config   `yaml:"history" json:"history"`
	Lifecycle lifecycle.Config `yaml:"lifecycle" json:"lifecycle"`
}

func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log.%w", err)
	}
	if err := c.APIs.Validate(); err != nil {
		return fmt.Errorf("apis.%w", err)
	}
	if err := c.Clients.Validate(); err != nil {
		return fmt.Errorf("clients.%w", err)
	}
	if err := c.Binding.Validate(); err != nil {
		return fmt.Errorf("binding.%w", err)
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history.%w", err)
	}
	if err := c.Lifecycle.Validate(); err != nil {
		return fmt.Errorf("lifecycle.%w", err)
	}
	return nil
}

// String return string representation of Config
func (c Config) String() string {
	return config.ToString(c)
}
