package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Log            LogConfig            `mapstructure:"log"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Storage        StorageConfig        `mapstructure:"storage"`
	LLM            LLMConfig            `mapstructure:"llm"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Telemetry      TelemetryConfig      `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
	// DefaultShopID is used when a request carries no X-Tenant-ID header
	DefaultShopID string `mapstructure:"default_shop_id"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN renders a postgres URL with user info and query escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	MaxImportSize     int64         `mapstructure:"max_import_size"` // catalog CSV uploads
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	// No origin is allowed until one is configured
	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string `mapstructure:"trusted_proxies"`
}

// StorageConfig points at the S3 compatible bucket holding item images.
// Endpoint stays empty for AWS and is set for MinIO or R2.
type StorageConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Endpoint          string        `mapstructure:"endpoint"`
	Region            string        `mapstructure:"region"`
	Bucket            string        `mapstructure:"bucket"`
	AccessKeyID       string        `mapstructure:"access_key_id"`
	SecretAccessKey   string        `mapstructure:"secret_access_key"`
	UsePathStyle      bool          `mapstructure:"use_path_style"`
	UploadURLExpiry   time.Duration `mapstructure:"upload_url_expiry"`
	DownloadURLExpiry time.Duration `mapstructure:"download_url_expiry"`
}

// LLMConfig selects the rationale writer and guards its endpoint with a
// circuit breaker.
type LLMConfig struct {
	Provider           string        `mapstructure:"provider"`
	BaseURL            string        `mapstructure:"base_url"`
	APIKey             string        `mapstructure:"api_key"`
	Model              string        `mapstructure:"model"`
	Timeout            time.Duration `mapstructure:"timeout"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout"`
	BreakerInterval    time.Duration `mapstructure:"breaker_interval"`
}

type RecommendationConfig struct {
	DefaultMaxOutfits int           `mapstructure:"default_max_outfits"`
	MaxOutfitsLimit   int           `mapstructure:"max_outfits_limit"`
	CandidateLimit    int           `mapstructure:"candidate_limit"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	// Falls back to LLM.Timeout when unset
	RationaleTimeout  time.Duration `mapstructure:"rationale_timeout"`
	RationaleWorkers  int           `mapstructure:"rationale_workers"`
	MaxPriceDeviation float64       `mapstructure:"max_price_deviation"`
	DefaultIntent     string        `mapstructure:"default_intent"`
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"` // OTLP gRPC, host:port
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	// Puts SQL text with bound values into spans; never in production
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
}

const (
	LLMProviderArk      = "ark"
	LLMProviderTemplate = "template"
)

// defaults registers every key. Keys with an empty default are listed
// too so AutomaticEnv can fill them during Unmarshal.
var defaults = map[string]any{
	"app.name":            "lookbook",
	"app.env":             "development",
	"app.port":            "8080",
	"app.default_shop_id": "00000000-0000-0000-0000-000000000001",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "lookbook",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":        "15s",
	"http.write_timeout":       "30s",
	"http.idle_timeout":        "60s",
	"http.max_header_bytes":    1 << 20,
	"http.max_body_size":       1 << 20,
	"http.max_import_size":     10 << 20,
	"http.rate_limit_enabled":  false,
	"http.rate_limit_requests": 60,
	"http.rate_limit_window":   "1m",
	"http.cors_allow_origins":  []string{},
	"http.cors_allow_methods":  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers":  []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID"},
	"http.trusted_proxies":     []string{},

	"storage.enabled":             false,
	"storage.endpoint":            "",
	"storage.region":              "us-east-1",
	"storage.bucket":              "",
	"storage.access_key_id":       "",
	"storage.secret_access_key":   "",
	"storage.use_path_style":      false,
	"storage.upload_url_expiry":   "15m",
	"storage.download_url_expiry": "1h",

	"llm.provider":             LLMProviderTemplate,
	"llm.base_url":             "",
	"llm.api_key":              "",
	"llm.model":                "",
	"llm.timeout":              "3s",
	"llm.breaker_max_failures": 5,
	"llm.breaker_open_timeout": "30s",
	"llm.breaker_interval":     "1m",

	"recommendation.default_max_outfits": 3,
	"recommendation.max_outfits_limit":   10,
	"recommendation.candidate_limit":     500,
	"recommendation.cache_ttl":           "5m",
	"recommendation.rationale_timeout":   "0s",
	"recommendation.rationale_workers":   4,
	"recommendation.max_price_deviation": 0.5,
	"recommendation.default_intent":      "casual",

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "lookbook",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_interval":        "60s",
	"telemetry.logs_enabled":            false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": "200ms",
}

// Load reads config.toml from the working directory or /app, then lets
// LOOKBOOK_ prefixed environment variables override any key, e.g.
// LOOKBOOK_DATABASE_PASSWORD for database.password.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("LOOKBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Recommendation.RationaleTimeout == 0 {
		cfg.Recommendation.RationaleTimeout = cfg.LLM.Timeout
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate reports every problem at once
func (c *Config) validate() error {
	var problems []error
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	db := c.Database
	switch {
	case db.MaxOpenConns <= 0:
		fail("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		fail("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		fail("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)
	}

	rec := c.Recommendation
	if rec.MaxOutfitsLimit < 0 {
		fail("recommendation.max_outfits_limit cannot be negative")
	}
	if rec.DefaultMaxOutfits > rec.MaxOutfitsLimit {
		fail("recommendation.default_max_outfits (%d) cannot exceed recommendation.max_outfits_limit (%d)", rec.DefaultMaxOutfits, rec.MaxOutfitsLimit)
	}
	if rec.MaxPriceDeviation < 0 || rec.MaxPriceDeviation > 1 {
		fail("recommendation.max_price_deviation must be within [0, 1], got %g", rec.MaxPriceDeviation)
	}
	if rec.RationaleWorkers < 0 {
		fail("recommendation.rationale_workers cannot be negative")
	}

	switch c.LLM.Provider {
	case LLMProviderTemplate:
	case LLMProviderArk:
		if c.LLM.Model == "" {
			fail("llm.model is required for provider %q", c.LLM.Provider)
		}
		if c.LLM.APIKey == "" {
			fail("llm.api_key is required for provider %q", c.LLM.Provider)
		}
	default:
		fail("llm.provider must be %q or %q, got %q", LLMProviderArk, LLMProviderTemplate, c.LLM.Provider)
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		fail("storage.bucket is required when storage is enabled")
	}
	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		fail("telemetry.sampling_ratio must be within [0, 1], got %g", r)
	}

	if c.App.Env == "production" {
		if db.Password == "" {
			fail("database.password is required in production")
		}
		if db.SSLMode == "disable" {
			fail("database.sslmode cannot be 'disable' in production")
		}
		if slices.Contains(c.HTTP.CORSAllowOrigins, "*") {
			fail("http.cors_allow_origins cannot contain '*' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			fail("telemetry.db_log_full_sql must be off in production")
		}
	}

	return errors.Join(problems...)
}
