package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/sitewise/geoenrich/internal/fetcher"
)

// Config holds the full application configuration.
type Config struct {
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Engine   EngineConfig   `yaml:"engine" mapstructure:"engine"`
	Datasets DatasetsConfig `yaml:"datasets" mapstructure:"datasets"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// FetchConfig configures the resilient HTTP fetcher.
type FetchConfig struct {
	UserAgent           string        `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs         int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	AttemptDelayMS      int           `yaml:"attempt_delay_ms" mapstructure:"attempt_delay_ms"`
	AttemptsPerEndpoint int           `yaml:"attempts_per_endpoint" mapstructure:"attempts_per_endpoint"`
	RateLimit           float64       `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst               int           `yaml:"burst" mapstructure:"burst"`
	Proxies             []ProxyConfig `yaml:"proxies" mapstructure:"proxies"`
}

// ProxyConfig describes one fallback proxy endpoint. Mode is "prefix" (base
// prepended to the raw URL) or "wrap" (raw URL query-escaped into base).
type ProxyConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Base string `yaml:"base" mapstructure:"base"`
	Mode string `yaml:"mode" mapstructure:"mode"`
}

// FetcherOptions converts the config into fetcher options.
func (c FetchConfig) FetcherOptions() fetcher.Options {
	opts := fetcher.Options{
		UserAgent:           c.UserAgent,
		Timeout:             time.Duration(c.TimeoutSecs) * time.Second,
		AttemptDelay:        time.Duration(c.AttemptDelayMS) * time.Millisecond,
		AttemptsPerEndpoint: c.AttemptsPerEndpoint,
		RateLimit:           rate.Limit(c.RateLimit),
		Burst:               c.Burst,
	}
	for _, p := range c.Proxies {
		mode := fetcher.ProxyPrefix
		if p.Mode == "wrap" {
			mode = fetcher.ProxyWrap
		}
		opts.Proxies = append(opts.Proxies, fetcher.Proxy{
			Name: p.Name,
			Base: p.Base,
			Mode: mode,
		})
	}
	return opts
}

// EngineConfig configures the enrichment orchestrator.
type EngineConfig struct {
	Concurrency        int     `yaml:"concurrency" mapstructure:"concurrency"`
	DefaultRadiusMiles float64 `yaml:"default_radius_miles" mapstructure:"default_radius_miles"`
}

// DatasetsConfig points at optional extra dataset definitions.
type DatasetsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// BatchConfig configures sequential multi-point runs.
type BatchConfig struct {
	DelayMS int `yaml:"delay_ms" mapstructure:"delay_ms"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("GEOENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.user_agent", "geoenrich/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.attempt_delay_ms", 500)
	v.SetDefault("fetch.attempts_per_endpoint", 2)
	v.SetDefault("fetch.rate_limit", 10)
	v.SetDefault("fetch.burst", 10)
	v.SetDefault("engine.concurrency", 5)
	v.SetDefault("engine.default_radius_miles", 5)
	v.SetDefault("batch.delay_ms", 250)

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
