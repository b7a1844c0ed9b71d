package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plgd-dev/assethub/pkg/config"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string        `yaml:"name"`
	Timeout time.Duration `yaml:"timeout"`
}

func (c *testConfig) Validate() error {
	if c.Name == "" {
		return os.ErrInvalid
	}
	return nil
}

func TestReadAndToString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: gateway\ntimeout: 5s\n"), 0o600))

	var cfg testConfig
	require.NoError(t, config.Read(path, &cfg))
	require.Equal(t, "gateway", cfg.Name)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.NoError(t, cfg.Validate())
	require.Contains(t, config.ToString(cfg), "name: gateway")
}

func TestParseInvalid(t *testing.T) {
	var cfg testConfig
	require.Error(t, config.Parse([]byte("name: ["), &cfg))
	require.Error(t, config.Read(filepath.Join(t.TempDir(), "missing.yaml"), &cfg))
}
