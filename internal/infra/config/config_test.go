package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, 2500.0, cfg.Valuation.DefaultBasePrice)
	require.Equal(t, 3*time.Second, cfg.NQS.AgentTimeout)
	require.Equal(t, DatasetSourceEmbedded, cfg.Datasets.Source)
	require.Equal(t, HistoryBackendMemory, cfg.History.Backend)
	require.Equal(t, 100, cfg.History.Capacity)
	require.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	require.Contains(t, cfg.HTTP.Retry.Exclude, "/api/v1/valuations")
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
valuation:
  defaultBasePrice: 3000
  cityBasePrices:
    Aswan: 1500
nqs:
  agentEnabled: true
  agentBaseUrl: http://agent.local
  agentTimeout: 2s
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("NQS_AGENT_TIMEOUT", "750ms")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, 3000.0, cfg.Valuation.DefaultBasePrice)
	require.Equal(t, 1500.0, cfg.Valuation.CityBasePrices["Aswan"])
	require.True(t, cfg.NQS.AgentEnabled)
	require.Equal(t, 750*time.Millisecond, cfg.NQS.AgentTimeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"agent without url": func(c *Config) { c.NQS.AgentEnabled = true },
		"unknown dataset":   func(c *Config) { c.Datasets.Source = "ftp" },
		"r2 without bucket": func(c *Config) { c.Datasets.Source = DatasetSourceR2 },
		"postgres no dsn":   func(c *Config) { c.Datasets.Source = DatasetSourcePostgres },
		"valkey no addr":    func(c *Config) { c.History.Backend = HistoryBackendValkey },
		"zero base price":   func(c *Config) { c.Valuation.DefaultBasePrice = 0 },
		"negative city":     func(c *Config) { c.Valuation.CityBasePrices = map[string]float64{"X": -1} },
		"zero capacity":     func(c *Config) { c.History.Capacity = 0 },
		"zero shutdown":     func(c *Config) { c.HTTP.ShutdownTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
