package config

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type ConfigPath struct {
	ConfigPath string `long:"config" description:"yaml config file path"`
}

type Validator interface {
	Validate() error
}

func LoadAndValidateConfig(v Validator) error {
	err := Load(v)
	if err != nil {
		return err
	}
	return v.Validate()
}

// Load loads config from ENV config or arguments config.
func Load(config interface{}) error {
	var c ConfigPath
	_, err := flags.NewParser(&c, flags.Default|flags.IgnoreUnknown).Parse()
	if err != nil {
		return err
	}
	if c.ConfigPath == "" {
		return fmt.Errorf("missing --config")
	}
	return Read(c.ConfigPath, config)
}

// Read reads config from file.
func Read(filename string, config interface{}) error {
	cfg, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return Parse(cfg, config)
}

// Parse decodes yaml data into config.
func Parse(data []byte, config interface{}) error {
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}
	return nil
}

// ToString returns the yaml representation of the config.
func ToString(config interface{}) string {
	out, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Sprintf("cannot marshal config: %v", err)
	}
	return string(out)
}
