package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Geocode    GeocodeConfig    `yaml:"geocode" mapstructure:"geocode"`
	Places     PlacesConfig     `yaml:"places" mapstructure:"places"`
	Census     CensusConfig     `yaml:"census" mapstructure:"census"`
	RealEstate RealEstateConfig `yaml:"real_estate" mapstructure:"real_estate"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Tiers      TiersConfig      `yaml:"tiers" mapstructure:"tiers"`
	Webhook    WebhookConfig    `yaml:"webhook" mapstructure:"webhook"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "postgres" or "sqlite"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// GeocodeConfig holds geocoding provider settings.
type GeocodeConfig struct {
	GoogleKey string  `yaml:"google_api_key" mapstructure:"google_api_key"`
	RateRPS   float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// PlacesConfig holds the Places competitor search settings.
type PlacesConfig struct {
	Key          string  `yaml:"api_key" mapstructure:"api_key"`
	RadiusMeters int     `yaml:"radius_meters" mapstructure:"radius_meters"`
	RateRPS      float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// CensusConfig holds the ACS demographics settings.
type CensusConfig struct {
	Key     string  `yaml:"api_key" mapstructure:"api_key"`
	RateRPS float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// RealEstateConfig holds the property valuation provider settings.
type RealEstateConfig struct {
	Key      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string  `yaml:"base_url" mapstructure:"base_url"`
	RadiusMi float64 `yaml:"radius_miles" mapstructure:"radius_miles"`
	RateRPS  float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// FetchConfig controls the source-fetcher fan-out.
type FetchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"` // per-fetcher
}

// TiersConfig configures the depth-tier policy.
type TiersConfig struct {
	// ConfigPath optionally overrides the built-in tier table from YAML.
	ConfigPath string `yaml:"config_path" mapstructure:"config_path"`
}

// WebhookConfig configures the AnalysisCompleted outbound event.
type WebhookConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SITEIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "siteiq.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("geocode.google_api_key", "")
	v.SetDefault("geocode.rate_rps", 10)
	v.SetDefault("places.api_key", "")
	v.SetDefault("census.api_key", "")
	v.SetDefault("real_estate.api_key", "")
	v.SetDefault("places.radius_meters", 3200) // ~2 miles
	v.SetDefault("places.rate_rps", 10)
	v.SetDefault("census.rate_rps", 10)
	v.SetDefault("real_estate.base_url", "https://api.gateway.attomdata.com/propertyapi/v1.0.0")
	v.SetDefault("real_estate.radius_miles", 0.5)
	v.SetDefault("real_estate.rate_rps", 5)
	v.SetDefault("fetch.timeout_secs", 15)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
