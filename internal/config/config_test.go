package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bissquit/status-snapshot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "real_time_data.json", cfg.Output.Path)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Regional.Timeout)
	assert.Equal(t, []domain.Provider{
		{Name: "AnyMarket", URL: "https://status.anymarket.com.br"},
		{Name: "PagSeguro", URL: "https://status.pagbank.com.br"},
		{Name: "Pagar.me", URL: "https://status.pagar.me"},
	}, cfg.Providers)
	assert.Empty(t, cfg.Server.Addr)
	assert.Empty(t, cfg.Metrics.Textfile)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
output:
  path: /tmp/out.json
fetch:
  timeout: 3s
  rps: 2
providers:
  - name: Example
    url: https://status.example.com
regional:
  timeout: 5s
server:
  addr: ":8080"
  origins: ["https://dash.example.com"]
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/out.json", cfg.Output.Path)
	assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 2.0, cfg.Fetch.RPS)
	assert.Equal(t, []domain.Provider{{Name: "Example", URL: "https://status.example.com"}}, cfg.Providers)
	assert.Equal(t, 5*time.Second, cfg.Regional.Timeout)
	assert.NotEmpty(t, cfg.Regional.URL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.Server.Origins)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "output:\n  path: from-file.json\n")
	t.Setenv("STATUSSNAPSHOT_OUTPUT_PATH", "from-env.json")
	t.Setenv("STATUSSNAPSHOT_FETCH_TIMEOUT", "2s")
	t.Setenv("STATUSSNAPSHOT_LOG_LEVEL", "warn")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.json", cfg.Output.Path)
	assert.Equal(t, 2*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_UsesPathFromEnv(t *testing.T) {
	path := writeConfig(t, "output:\n  path: chosen.json\n")
	t.Setenv(PathEnv, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "chosen.json", cfg.Output.Path)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config file")
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"bad log level", "log:\n  level: verbose\n", "Level"},
		{"bad provider url", "providers:\n  - name: X\n    url: not-a-url\n", "URL"},
		{"missing provider name", "providers:\n  - url: https://status.example.com\n", "Name"},
		{"zero timeout", "fetch:\n  timeout: 0s\n", "Timeout"},
		{"negative rps", "fetch:\n  rps: -1\n", "RPS"},
		{"duplicate provider", "providers:\n  - name: X\n    url: https://a.example.com\n  - name: X\n    url: https://b.example.com\n", "duplicate provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "log.level", envKey("STATUSSNAPSHOT_LOG_LEVEL"))
	assert.Equal(t, "regional.useragent", envKey("STATUSSNAPSHOT_REGIONAL_USERAGENT"))
	assert.Equal(t, "", envKey(PathEnv))
}
