// Package config loads and validates the dashboard configuration from YAML.
package config

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/shekel-lab/ratewatch/pkg/errors"
)

// SignalConfig controls the moving-average crossover engine.
type SignalConfig struct {
	ShortPeriod int `yaml:"short_period" json:"short_period" jsonschema:"title=Short Period,description=Fast moving average window in days,default=7" validate:"required,gt=0"`
	LongPeriod  int `yaml:"long_period" json:"long_period" jsonschema:"title=Long Period,description=Slow moving average window in days,default=14" validate:"required,gtfield=ShortPeriod"`
}

// BacktestConfig controls the trailing-window simulation.
type BacktestConfig struct {
	WindowDays     int     `yaml:"window_days" json:"window_days" jsonschema:"title=Window Days,description=Trailing number of days to simulate,default=30" validate:"required,gt=0"`
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital in ILS,default=1000" validate:"required,gt=0"`
}

// CacheConfig controls the last-known-good snapshot file.
type CacheConfig struct {
	Path string `yaml:"path" json:"path" jsonschema:"title=Cache Path,description=Path of the JSON snapshot file"`
}

// HistoryConfig controls the embedded observation database.
type HistoryConfig struct {
	Path string `yaml:"path" json:"path" jsonschema:"title=History Path,description=Path of the DuckDB database file. Empty means in-memory"`
}

// DashboardConfig controls the terminal dashboard.
type DashboardConfig struct {
	// RefreshSeconds is the auto-refresh period. Zero disables auto refresh.
	RefreshSeconds int `yaml:"refresh_seconds" json:"refresh_seconds" jsonschema:"title=Refresh Seconds,description=Dashboard auto-refresh period in seconds. Zero disables it,default=900" validate:"gte=0"`
}

// SourcesConfig controls the upstream fallback chain.
type SourcesConfig struct {
	Order         []string `yaml:"order" json:"order" jsonschema:"title=Source Order,description=Upstream priority order" validate:"required,min=1,dive,oneof=boi exchangerate_host open_er_api polygon"`
	PolygonAPIKey string   `yaml:"polygon_api_key" json:"polygon_api_key,omitempty" jsonschema:"title=Polygon API Key,description=Enables the Polygon.io source when set"`
}

// Config is the root configuration document.
type Config struct {
	Signal    SignalConfig    `yaml:"signal" json:"signal"`
	Backtest  BacktestConfig  `yaml:"backtest" json:"backtest"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	History   HistoryConfig   `yaml:"history" json:"history"`
	Sources   SourcesConfig   `yaml:"sources" json:"sources"`
	Dashboard DashboardConfig `yaml:"dashboard" json:"dashboard"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Signal: SignalConfig{
			ShortPeriod: 7,
			LongPeriod:  14,
		},
		Backtest: BacktestConfig{
			WindowDays:     30,
			InitialCapital: 1000,
		},
		Sources: SourcesConfig{
			Order: []string{"boi", "exchangerate_host", "open_er_api"},
		},
		Dashboard: DashboardConfig{
			RefreshSeconds: 900,
		},
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}

// ParseConfig parses a YAML document on top of the defaults and validates
// the result, so a partial file only overrides what it names.
func ParseConfig(yamlConfig string) (*Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal([]byte(yamlConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse configuration", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfig reads and parses the YAML file at path. An empty path yields
// the validated defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		config := DefaultConfig()
		if err := config.Validate(); err != nil {
			return nil, err
		}

		return &config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to read configuration file", err)
	}

	return ParseConfig(string(data))
}

// Schema returns the JSON schema of the configuration document, used by
// editors for completion and validation.
func Schema() (string, error) {
	reflector := new(jsonschema.Reflector)
	reflector.DoNotReference = true

	schemaBytes, err := json.Marshal(reflector.Reflect(&Config{}))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to build configuration schema", err)
	}

	return string(schemaBytes), nil
}
