package lifecycle

import (
	"fmt"
	"sort"
	"time"
)

// Setting is a configuration row effective from a point in time until the next one.
type Setting struct {
	EffectiveFrom time.Time              `yaml:"effectiveFrom" json:"effectiveFrom"`
	Values        map[string]interface{} `yaml:"values" json:"values,omitempty"`
}

// SettingsIndex finds the setting effective at a time.
type SettingsIndex struct {
	settings []Setting
}

func NewSettingsIndex(settings []Setting) *SettingsIndex {
	sorted := make([]Setting, len(settings))
	copy(sorted, settings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})
	return &SettingsIndex{settings: sorted}
}

// At returns the latest setting with EffectiveFrom <= t. Settings sharing the
// same EffectiveFrom resolve to the last configured one.
func (x *SettingsIndex) At(t time.Time) (Setting, bool) {
	if x == nil {
		return Setting{}, false
	}
	i := sort.Search(len(x.settings), func(i int) bool {
		return x.settings[i].EffectiveFrom.After(t)
	})
	if i == 0 {
		return Setting{}, false
	}
	return x.settings[i-1], true
}

func (x *SettingsIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.settings)
}

func validateSettings(settings []Setting) error {
	for i, s := range settings {
		if s.EffectiveFrom.IsZero() {
			return fmt.Errorf("[%v].effectiveFrom('%v')", i, s.EffectiveFrom)
		}
	}
	return nil
}
