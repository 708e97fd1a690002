package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Gate      GateConfig      `mapstructure:"gate"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Resources ResourcesConfig `mapstructure:"resources"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type ProvidersConfig struct {
	GoogleAPIKey      string `mapstructure:"google_api_key"`
	OpenWeatherAPIKey string `mapstructure:"openweather_api_key"`
}

type GateConfig struct {
	// ExpectedUserAgent is a regular expression the User-Agent header must
	// fully match (it is anchored at both ends before compiling).
	ExpectedUserAgent string `mapstructure:"expected_user_agent"`
	// MinAppVersion stays a string: a non-numeric value disables the
	// freshness check rather than failing startup.
	MinAppVersion string `mapstructure:"min_app_version"`
	RateLimit     int    `mapstructure:"rate_limit"`
	WindowSeconds int    `mapstructure:"window_seconds"`
}

type GeocodingConfig struct {
	// AddressFilters is a comma-separated denylist of trailing address
	// components stripped from formatted addresses.
	AddressFilters string `mapstructure:"address_filters"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type NotifyConfig struct {
	OnRateLimit       bool `mapstructure:"on_rate_limit"`
	OnProviderFailure bool `mapstructure:"on_provider_failure"`
}

type ResourcesConfig struct {
	TranslationLink  string `mapstructure:"translation_link"`
	AdhkaarLink      string `mapstructure:"adhkaar_link"`
	QuranZipFileLink string `mapstructure:"quran_zip_file_link"`
	QuranPagesLink   string `mapstructure:"quran_pages_link"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("providers.google_api_key", "")
	v.SetDefault("providers.openweather_api_key", "")
	v.SetDefault("gate.expected_user_agent", "")
	v.SetDefault("gate.min_app_version", "")
	v.SetDefault("gate.rate_limit", 15)
	v.SetDefault("gate.window_seconds", 3600)
	v.SetDefault("geocoding.address_filters", "")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("notify.on_rate_limit", false)
	v.SetDefault("notify.on_provider_failure", false)
	v.SetDefault("resources.translation_link", "")
	v.SetDefault("resources.adhkaar_link", "")
	v.SetDefault("resources.quran_zip_file_link", "")
	v.SetDefault("resources.quran_pages_link", "")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GEOCODING_GATE_RATE_LIMIT → gate.rate_limit
	v.SetEnvPrefix("GEOCODING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Providers.GoogleAPIKey == "" {
		errs = append(errs, "providers.google_api_key is required")
	}
	if c.Providers.OpenWeatherAPIKey == "" {
		errs = append(errs, "providers.openweather_api_key is required")
	}
	if c.Gate.ExpectedUserAgent == "" {
		errs = append(errs, "gate.expected_user_agent is required")
	} else if _, err := regexp.Compile(c.Gate.ExpectedUserAgent); err != nil {
		errs = append(errs, fmt.Sprintf("gate.expected_user_agent is not a valid pattern: %v", err))
	}
	if c.Gate.RateLimit <= 0 {
		errs = append(errs, "gate.rate_limit must be positive")
	}
	if c.Gate.WindowSeconds <= 0 {
		errs = append(errs, "gate.window_seconds must be positive")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
