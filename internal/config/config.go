// Package config loads application configuration from defaults, an optional
// YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bissquit/status-snapshot/internal/domain"
	"github.com/bissquit/status-snapshot/internal/regional"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override, e.g. STATUSSNAPSHOT_LOG_LEVEL.
	EnvPrefix = "STATUSSNAPSHOT_"

	// PathEnv names the variable holding an optional YAML config path.
	PathEnv = EnvPrefix + "CONFIG"
)

// Config is the application configuration.
type Config struct {
	Log       LogConfig         `koanf:"log"`
	Output    OutputConfig      `koanf:"output"`
	Fetch     FetchConfig       `koanf:"fetch"`
	Providers []domain.Provider `koanf:"providers" validate:"dive"`
	Regional  RegionalConfig    `koanf:"regional"`
	Metrics   MetricsConfig     `koanf:"metrics"`
	Server    ServerConfig      `koanf:"server"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// OutputConfig controls where the snapshot is written.
type OutputConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// FetchConfig controls status page requests.
type FetchConfig struct {
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	RPS       float64       `koanf:"rps" validate:"gte=0"`
	UserAgent string        `koanf:"useragent"`
}

// RegionalConfig controls the SEFAZ monitor request.
type RegionalConfig struct {
	URL       string        `koanf:"url" validate:"required,url"`
	UserAgent string        `koanf:"useragent" validate:"required"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	// Textfile is a node-exporter textfile collector path. Empty disables export.
	Textfile string `koanf:"textfile"`
}

// ServerConfig controls the optional snapshot server.
type ServerConfig struct {
	// Addr enables serving the snapshot after the run when set, e.g. ":8080".
	Addr    string   `koanf:"addr"`
	Origins []string `koanf:"origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Path: "real_time_data.json",
		},
		Fetch: FetchConfig{
			Timeout: 10 * time.Second,
		},
		Providers: []domain.Provider{
			{Name: "AnyMarket", URL: "https://status.anymarket.com.br"},
			{Name: "PagSeguro", URL: "https://status.pagbank.com.br"},
			{Name: "Pagar.me", URL: "https://status.pagar.me"},
		},
		Regional: RegionalConfig{
			URL:       regional.DefaultURL,
			UserAgent: regional.DefaultUserAgent,
			Timeout:   10 * time.Second,
		},
		Server: ServerConfig{
			Origins: []string{"*"},
		},
	}
}

// Load builds the configuration. The file at STATUSSNAPSHOT_CONFIG is read
// when the variable is set; environment variables override file values.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(PathEnv))
}

// LoadFile is Load with an explicit file path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	// A configured list replaces the defaults instead of merging into them.
	if k.Exists("providers") {
		cfg.Providers = nil
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKey maps STATUSSNAPSHOT_FETCH_TIMEOUT to fetch.timeout.
// The config path variable itself is not a config key.
func envKey(s string) string {
	if s == PathEnv {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

// Validate checks the configuration.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if seen[p.Name] {
			return fmt.Errorf("invalid config: duplicate provider %q", p.Name)
		}
		seen[p.Name] = true
	}

	return nil
}
