package lifecycle_test

import (
	"testing"
	"time"

	"github.com/plgd-dev/assethub/lifecycle"
	"github.com/stretchr/testify/require"
)

func TestSettingsIndexAt(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	idx := lifecycle.NewSettingsIndex([]lifecycle.Setting{
		{EffectiveFrom: mar, Values: map[string]interface{}{"v": "mar"}},
		{EffectiveFrom: jan, Values: map[string]interface{}{"v": "jan"}},
		{EffectiveFrom: mar, Values: map[string]interface{}{"v": "mar2"}},
	})
	require.Equal(t, 3, idx.Len())
	tests := []struct {
		name string
		at   time.Time
		want string
		ok   bool
	}{
		{name: "before first", at: jan.Add(-time.Second)},
		{name: "exactly first", at: jan, want: "jan", ok: true},
		{name: "between", at: mar.Add(-time.Second), want: "jan", ok: true},
		{name: "same effective from picks last configured", at: mar, want: "mar2", ok: true},
		{name: "after last", at: mar.AddDate(1, 0, 0), want: "mar2", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := idx.At(tt.at)
			require.Equal(t, tt.ok, ok)
			if ok {
				require.Equal(t, tt.want, s.Values["v"])
			}
		})
	}
}

func TestSettingsIndexNil(t *testing.T) {
	var idx *lifecycle.SettingsIndex
	_, ok := idx.At(time.Now())
	require.False(t, ok)
	require.Equal(t, 0, idx.Len())
}

func TestConfigValidate(t *testing.T) {
	cfg := lifecycle.Config{Settings: map[string][]lifecycle.Setting{"vm": {{}}}}
	require.Error(t, cfg.Validate())
	cfg = lifecycle.Config{Settings: map[string][]lifecycle.Setting{"vm": {{EffectiveFrom: time.Now()}}}}
	require.NoError(t, cfg.Validate())
}
