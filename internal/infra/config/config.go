package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Dataset source identifiers.
const (
	DatasetSourceEmbedded = "embedded"
	DatasetSourceR2       = "r2"
	DatasetSourcePostgres = "postgres"
)

// History backend identifiers.
const (
	HistoryBackendMemory = "memory"
	HistoryBackendValkey = "valkey"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Valuation ValuationConfig `yaml:"valuation"`
	NQS       NQSConfig       `yaml:"nqs"`
	Datasets  DatasetsConfig  `yaml:"datasets"`
	History   HistoryConfig   `yaml:"history"`
	Learning  LearningConfig  `yaml:"learning"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	Retry           RetryConfig     `yaml:"retry"`
	AllowedOrigins  []string        `yaml:"allowedOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures replay of POSTs that hit a transient upstream failure.
// Exclude lists extra paths that must never be replayed; the valuation route
// records history and is always excluded.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// ValuationConfig tunes the price calculator.
type ValuationConfig struct {
	DefaultBasePrice float64            `yaml:"defaultBasePrice"`
	CityBasePrices   map[string]float64 `yaml:"cityBasePrices"`
	RecordHistory    bool               `yaml:"recordHistory"`
}

// NQSConfig controls the remote scoring agent.
type NQSConfig struct {
	AgentEnabled bool          `yaml:"agentEnabled"`
	AgentBaseURL string        `yaml:"agentBaseUrl"`
	AgentAPIKey  string        `yaml:"agentApiKey"`
	AgentTimeout time.Duration `yaml:"agentTimeout"`
}

// DatasetsConfig selects where district tables are loaded from.
type DatasetsConfig struct {
	Source   string         `yaml:"source"`
	R2       R2Config       `yaml:"r2"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// R2Config describes an S3-compatible object holding the dataset YAML.
type R2Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	ObjectKey string `yaml:"objectKey"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// HistoryConfig selects the evaluation history backend.
type HistoryConfig struct {
	Backend  string       `yaml:"backend"`
	Capacity int          `yaml:"capacity"`
	Valkey   ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for a Valkey list.
type ValkeyConfig struct {
	Addr string `yaml:"addr"`
	Key  string `yaml:"key"`
}

// LearningConfig controls the learning hook fed by recorded evaluations.
type LearningConfig struct {
	Enabled bool         `yaml:"enabled"`
	Valkey  ValkeyConfig `yaml:"valkey"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_EXCLUDE"); v != "" {
		cfg.HTTP.Retry.Exclude = splitList(v)
	}
	if v := os.Getenv("HTTP_SHUTDOWN_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.ShutdownTimeout = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("VALUATION_DEFAULT_BASE_PRICE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Valuation.DefaultBasePrice = parsed
		}
	}
	if v := os.Getenv("VALUATION_RECORD_HISTORY"); v != "" {
		cfg.Valuation.RecordHistory = parseBool(v)
	}
	if v := os.Getenv("NQS_AGENT_ENABLED"); v != "" {
		cfg.NQS.AgentEnabled = parseBool(v)
	}
	if v := os.Getenv("NQS_AGENT_BASE_URL"); v != "" {
		cfg.NQS.AgentBaseURL = v
	}
	if v := os.Getenv("NQS_AGENT_API_KEY"); v != "" {
		cfg.NQS.AgentAPIKey = v
	}
	if v := os.Getenv("NQS_AGENT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.NQS.AgentTimeout = parsed
		}
	}
	if v := os.Getenv("DATASETS_SOURCE"); v != "" {
		cfg.Datasets.Source = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("R2_ENDPOINT"); v != "" {
		cfg.Datasets.R2.Endpoint = v
	}
	if v := os.Getenv("R2_ACCESS_KEY"); v != "" {
		cfg.Datasets.R2.AccessKey = v
	}
	if v := os.Getenv("R2_SECRET_KEY"); v != "" {
		cfg.Datasets.R2.SecretKey = v
	}
	if v := os.Getenv("R2_BUCKET"); v != "" {
		cfg.Datasets.R2.Bucket = v
	}
	if v := os.Getenv("R2_REGION"); v != "" {
		cfg.Datasets.R2.Region = v
	}
	if v := os.Getenv("R2_OBJECT_KEY"); v != "" {
		cfg.Datasets.R2.ObjectKey = v
	}
	if v := os.Getenv("DATASETS_POSTGRES_DSN"); v != "" {
		cfg.Datasets.Postgres.DSN = v
	}
	if v := os.Getenv("DATASETS_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Datasets.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("HISTORY_BACKEND"); v != "" {
		cfg.History.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("HISTORY_CAPACITY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Capacity = parsed
		}
	}
	if v := os.Getenv("HISTORY_VALKEY_ADDR"); v != "" {
		cfg.History.Valkey.Addr = v
	}
	if v := os.Getenv("LEARNING_ENABLED"); v != "" {
		cfg.Learning.Enabled = parseBool(v)
	}
	if v := os.Getenv("LEARNING_VALKEY_ADDR"); v != "" {
		cfg.Learning.Valkey.Addr = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude:     []string{"/api/v1/valuations"},
			},
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Valuation: ValuationConfig{
			DefaultBasePrice: 2500,
			RecordHistory:    true,
		},
		NQS: NQSConfig{
			AgentEnabled: false,
			AgentTimeout: 3 * time.Second,
		},
		Datasets: DatasetsConfig{
			Source: DatasetSourceEmbedded,
			R2: R2Config{
				Region:    "auto",
				ObjectKey: "datasets/districts.yaml",
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		History: HistoryConfig{
			Backend:  HistoryBackendMemory,
			Capacity: 100,
			Valkey: ValkeyConfig{
				Key: "valuation:history",
			},
		},
		Learning: LearningConfig{
			Enabled: false,
			Valkey: ValkeyConfig{
				Key: "valuation:learning",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return errors.New("http.shutdownTimeout must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Valuation.DefaultBasePrice <= 0 {
		return errors.New("valuation.defaultBasePrice must be positive")
	}
	for city, price := range c.Valuation.CityBasePrices {
		if price <= 0 {
			return fmt.Errorf("valuation.cityBasePrices[%s] must be positive", city)
		}
	}
	if c.NQS.AgentTimeout <= 0 {
		return errors.New("nqs.agentTimeout must be positive")
	}
	if c.NQS.AgentEnabled && strings.TrimSpace(c.NQS.AgentBaseURL) == "" {
		return errors.New("nqs.agentBaseUrl cannot be empty when the agent is enabled")
	}
	switch c.Datasets.Source {
	case DatasetSourceEmbedded:
	case DatasetSourceR2:
		if strings.TrimSpace(c.Datasets.R2.Endpoint) == "" || strings.TrimSpace(c.Datasets.R2.Bucket) == "" {
			return errors.New("datasets.r2.endpoint and datasets.r2.bucket are required for the r2 source")
		}
	case DatasetSourcePostgres:
		if strings.TrimSpace(c.Datasets.Postgres.DSN) == "" {
			return errors.New("datasets.postgres.dsn is required for the postgres source")
		}
	default:
		return fmt.Errorf("datasets.source %q is not supported", c.Datasets.Source)
	}
	switch c.History.Backend {
	case HistoryBackendMemory:
	case HistoryBackendValkey:
		if strings.TrimSpace(c.History.Valkey.Addr) == "" {
			return errors.New("history.valkey.addr cannot be empty for the valkey backend")
		}
	default:
		return fmt.Errorf("history.backend %q is not supported", c.History.Backend)
	}
	if c.History.Capacity <= 0 {
		return errors.New("history.capacity must be positive")
	}
	return nil
}
