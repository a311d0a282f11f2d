// Package config loads mapview settings from defaults, an optional YAML file,
// MAPVIEW_* environment variables and command line flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mapview/internal/fetch"
	"mapview/internal/mapreq"
	"mapview/internal/viewer"
	"mapview/internal/viewport"
)

// Geocoder providers
const (
	ProviderYandex = "yandex"
	ProviderLocal  = "local"
)

// Config holds all application configuration.
type Config struct {
	Scale   int           `mapstructure:"scale"`
	Map     MapConfig     `mapstructure:"map"`
	Geocode GeocodeConfig `mapstructure:"geocode"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Places  PlacesConfig  `mapstructure:"places"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type MapConfig struct {
	Endpoint   string  `mapstructure:"endpoint"`
	Width      int     `mapstructure:"width"`
	Height     int     `mapstructure:"height"`
	MarkerIcon string  `mapstructure:"marker_icon"`
	Step       float64 `mapstructure:"step"`
}

type GeocodeConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Provider string `mapstructure:"provider"`
}

type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

type PlacesConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// flagKeys maps command line flags to config keys
var flagKeys = map[string]string{
	"scale":        "scale",
	"debug-log":    "log.file",
	"cache":        "cache.dir",
	"geocoder":     "geocode.provider",
	"places":       "places.enabled",
	"metrics-addr": "metrics.addr",
}

// Load reads configuration. configFile may be empty, in which case an
// optional config.yaml is looked up in the working directory and
// ~/.mapview. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("scale", 50)
	v.SetDefault("map.endpoint", mapreq.DefaultMapEndpoint)
	v.SetDefault("map.width", viewer.DefaultWidth)
	v.SetDefault("map.height", viewer.DefaultHeight)
	v.SetDefault("map.marker_icon", mapreq.DefaultMarkerIcon)
	v.SetDefault("map.step", viewport.MoveStep)
	v.SetDefault("geocode.endpoint", mapreq.DefaultGeocodeEndpoint)
	v.SetDefault("geocode.api_key", "")
	v.SetDefault("geocode.provider", ProviderYandex)
	v.SetDefault("http.timeout", fetch.DefaultTimeout)
	v.SetDefault("http.user_agent", fetch.DefaultUserAgent)
	v.SetDefault("cache.dir", "")
	v.SetDefault("places.enabled", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "debug")
	v.SetDefault("metrics.addr", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.mapview")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables: MAPVIEW_GEOCODE_API_KEY → geocode.api_key
	v.SetEnvPrefix("MAPVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration fields are sane. The scale is checked
// later, when the viewport is created.
func (c *Config) Validate() error {
	var errs []string

	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		errs = append(errs, fmt.Sprintf("map size must be positive, got %dx%d", c.Map.Width, c.Map.Height))
	}
	if c.Map.Step == 0 {
		errs = append(errs, "map.step must not be zero")
	}
	if c.Map.Endpoint == "" {
		errs = append(errs, "map.endpoint is required")
	}
	switch c.Geocode.Provider {
	case ProviderYandex:
		if c.Geocode.Endpoint == "" {
			errs = append(errs, "geocode.endpoint is required for the yandex provider")
		}
	case ProviderLocal:
	default:
		errs = append(errs, fmt.Sprintf("geocode.provider must be %q or %q, got %q", ProviderYandex, ProviderLocal, c.Geocode.Provider))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, "http.timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// NeedsPlaces reports whether the populated places dataset must be loaded
func (c *Config) NeedsPlaces() bool {
	return c.Places.Enabled || c.Geocode.Provider == ProviderLocal
}
