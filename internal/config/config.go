// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Scorer  ScorerConfig  `yaml:"scorer" mapstructure:"scorer"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GeocodeConfig configures the geocoding service client.
type GeocodeConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	DelayMinSecs   int     `yaml:"delay_min_secs" mapstructure:"delay_min_secs"`
	DelayMaxSecs   int     `yaml:"delay_max_secs" mapstructure:"delay_max_secs"`
	ExtraDelaySecs int     `yaml:"extra_delay_secs" mapstructure:"extra_delay_secs"`
	AuditLogPath   string  `yaml:"audit_log_path" mapstructure:"audit_log_path"`
}

// DelayMin returns the minimum courtesy delay as a duration.
func (c GeocodeConfig) DelayMin() time.Duration {
	return time.Duration(c.DelayMinSecs) * time.Second
}

// DelayMax returns the maximum courtesy delay as a duration.
func (c GeocodeConfig) DelayMax() time.Duration {
	return time.Duration(c.DelayMaxSecs) * time.Second
}

// ExtraDelay returns the fixed batch-mode delay as a duration.
func (c GeocodeConfig) ExtraDelay() time.Duration {
	return time.Duration(c.ExtraDelaySecs) * time.Second
}

// ScorerConfig configures the price model serving endpoint.
type ScorerConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScrapeConfig configures the listing page source.
type ScrapeConfig struct {
	PageURLTemplate string `yaml:"page_url_template" mapstructure:"page_url_template"`
	WorkDir         string `yaml:"work_dir" mapstructure:"work_dir"`
	DelayMinSecs    int    `yaml:"delay_min_secs" mapstructure:"delay_min_secs"`
	DelayMaxSecs    int    `yaml:"delay_max_secs" mapstructure:"delay_max_secs"`
}

// DatasetConfig configures batch dataset output.
type DatasetConfig struct {
	CSVPath  string `yaml:"csv_path" mapstructure:"csv_path"`
	JSONPath string `yaml:"json_path" mapstructure:"json_path"`
}

// CacheConfig configures the optional geocode result cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the prediction API server.
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
	v.SetEnvPrefix("HOUSEPRICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.rate_limit", 1.0)
	v.SetDefault("geocode.delay_min_secs", 1)
	v.SetDefault("geocode.delay_max_secs", 3)
	v.SetDefault("geocode.extra_delay_secs", 1)
	v.SetDefault("geocode.audit_log_path", "osm_json_responses.txt")
	v.SetDefault("scorer.base_url", "http://localhost:9000")
	v.SetDefault("scorer.timeout_secs", 30)
	v.SetDefault("scrape.page_url_template", "https://nethouseprices.com/house-prices/london?page=%d")
	v.SetDefault("scrape.work_dir", ".")
	v.SetDefault("scrape.delay_min_secs", 1)
	v.SetDefault("scrape.delay_max_secs", 3)
	v.SetDefault("dataset.csv_path", "dataset_frame.csv")
	v.SetDefault("dataset.json_path", "dataset_frame.json")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", "geocode_cache.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
