package lifecycle

import "fmt"

type Config struct {
	// Settings per resource type.
	Settings map[string][]Setting `yaml:"settings" json:"settings"`
}

func (c *Config) Validate() error {
	for resourceType, settings := range c.Settings {
		if err := validateSettings(settings); err != nil {
			return fmt.Errorf("settings.%v%w", resourceType, err)
		}
	}
	return nil
}

func (c *Config) indexes() map[string]*SettingsIndex {
	idx := make(map[string]*SettingsIndex, len(c.Settings))
	for resourceType, settings := range c.Settings {
		idx[resourceType] = NewSettingsIndex(settings)
	}
	return idx
}
