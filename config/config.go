// Package config loads docscrape settings from defaults, an optional config
// file, a .env file and DOCSCRAPE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lukemcguire/docscrape/logger"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DOCSCRAPE"

// Config is the complete runtime configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	API     APIConfig     `mapstructure:"api"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     logger.Config `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CrawlerConfig holds the fetch policy of a crawl.
type CrawlerConfig struct {
	BatchSize      int           `mapstructure:"batch_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// APIConfig holds limits applied by the HTTP layer.
type APIConfig struct {
	// SubmitRate is the sustained number of crawl submissions per second.
	SubmitRate  float64 `mapstructure:"submit_rate"`
	SubmitBurst int     `mapstructure:"submit_burst"`
}

// OutputConfig controls mirroring finished exports to disk.
type OutputConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

var (
	// ErrInvalidBatchSize is returned when crawler.batch_size is not positive.
	ErrInvalidBatchSize = errors.New("crawler.batch_size must be positive")
	// ErrInvalidTimeout is returned when crawler.request_timeout is not positive.
	ErrInvalidTimeout = errors.New("crawler.request_timeout must be positive")
)

// Load reads configuration. path may be empty, in which case config.yaml is
// looked up in the working directory and ./config, and silently skipped if
// absent.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("crawler.batch_size", 10)
	v.SetDefault("crawler.request_timeout", "30s")
	v.SetDefault("crawler.user_agent", "docscrape/1.0 (+https://github.com/lukemcguire/docscrape)")
	v.SetDefault("crawler.max_body_bytes", 10<<20)

	v.SetDefault("api.submit_rate", 2.0)
	v.SetDefault("api.submit_burst", 5)

	v.SetDefault("output.enabled", false)
	v.SetDefault("output.dir", "output")

	v.SetDefault("log.level", logger.DefaultLevel)
	v.SetDefault("log.development", false)
}

// Validate checks the values a crawl cannot run without.
func (c *Config) Validate() error {
	if c.Crawler.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Crawler.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
