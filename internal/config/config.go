package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the shopsearch API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Index   IndexConfig   `yaml:"index"`
	Queue   QueueConfig   `yaml:"queue"`
	Search  SearchConfig  `yaml:"search"`
	Ranking RankingConfig `yaml:"ranking"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

// Index drivers.
const (
	DriverElasticsearch = "elasticsearch"
	DriverBleve         = "bleve"
)

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File       string `yaml:"file"`  // optional rotating log file, written alongside stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// TracingConfig holds OpenTelemetry exporter settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // host:port of the OTLP/HTTP collector
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IndexConfig holds search index connection settings.
type IndexConfig struct {
	Driver           string   `yaml:"driver"` // elasticsearch, bleve (default: elasticsearch)
	Addresses        []string `yaml:"addresses"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	Name             string   `yaml:"name"`
	Path             string   `yaml:"path"` // bleve only; empty keeps the index in memory
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// QueueConfig holds sync queue settings. An empty Addrs disables the queue.
type QueueConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Key              string   `yaml:"key"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a sync queue is configured.
func (q QueueConfig) Enabled() bool { return len(q.Addrs) > 0 }

// SearchConfig holds search response settings.
type SearchConfig struct {
	PageSize int `yaml:"page_size"`
}

// RankingConfig overrides scoring weights. Unset fields keep the built-in defaults.
type RankingConfig struct {
	Sale                 *float64 `yaml:"sale"`
	Priority             *float64 `yaml:"priority"`
	PreferredCategory    *float64 `yaml:"preferred_category"`
	CheapPrice           *float64 `yaml:"cheap_price"`
	PremiumPrice         *float64 `yaml:"premium_price"`
	Geo                  *float64 `yaml:"geo"`
	SensitivityThreshold *float64 `yaml:"sensitivity_threshold"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands, defaults and validates the configuration at configPath.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Driver == "" {
		c.Index.Driver = DriverElasticsearch
	}
	if c.Index.Name == "" {
		c.Index.Name = "products"
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 30
	}
	if c.Queue.Key == "" {
		c.Queue.Key = "product-sync-queue"
	}
	if c.Queue.ReadinessTimeout <= 0 {
		c.Queue.ReadinessTimeout = 10
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 20
	}
	if c.Logging.File != "" {
		if c.Logging.MaxSizeMB <= 0 {
			c.Logging.MaxSizeMB = 100
		}
		if c.Logging.MaxBackups <= 0 {
			c.Logging.MaxBackups = 5
		}
		if c.Logging.MaxAgeDays <= 0 {
			c.Logging.MaxAgeDays = 28
		}
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "shopsearch"
	}
	if c.Tracing.SampleRatio <= 0 {
		c.Tracing.SampleRatio = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Index.Driver {
	case DriverElasticsearch:
		if len(c.Index.Addresses) == 0 {
			return fmt.Errorf("index.addresses is required for driver %q", DriverElasticsearch)
		}
	case DriverBleve:
		// ok
	default:
		return fmt.Errorf("index.driver must be %q or %q, got %q", DriverElasticsearch, DriverBleve, c.Index.Driver)
	}
	if c.Search.PageSize > 100 {
		return fmt.Errorf("search.page_size must not exceed 100, got %d", c.Search.PageSize)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}
	if c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be in (0,1], got %g", c.Tracing.SampleRatio)
	}
	for name, v := range c.Ranking.values() {
		if v != nil && *v < 0 {
			return fmt.Errorf("ranking.%s must not be negative, got %g", name, *v)
		}
	}
	return nil
}

func (r RankingConfig) values() map[string]*float64 {
	return map[string]*float64{
		"sale":                  r.Sale,
		"priority":              r.Priority,
		"preferred_category":    r.PreferredCategory,
		"cheap_price":           r.CheapPrice,
		"premium_price":         r.PremiumPrice,
		"geo":                   r.Geo,
		"sensitivity_threshold": r.SensitivityThreshold,
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
