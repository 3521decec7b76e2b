// Package config loads the Trailium server configuration from defaults, an
// optional YAML file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort            = 8000
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultAccessTokenTTL     = 15 * time.Minute
	DefaultRefreshTokenTTL    = 8 * time.Hour
	DefaultRememberRefreshTTL = 30 * 24 * time.Hour

	DefaultRateAnon    = 100
	DefaultRateUser    = 1000
	DefaultRatePremium = 5000

	DefaultMaxUploadBytes = 5 * 1024 * 1024

	// DevJWTSecret is refused when ENVIRONMENT=production.
	DevJWTSecret = "dev-secret-change-in-production"
)

var (
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrConfigNotFound  = errors.New("configuration file not found")
	ErrInvalidDuration = errors.New("invalid duration")
)

// Config holds the complete application configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

type AppConfig struct {
	Name        string `yaml:"name" env:"APP_NAME"`
	Environment string `yaml:"environment" env:"ENVIRONMENT"`
	// Comma separated list of origins allowed by CORS.
	CORSOrigins string `yaml:"cors_origins" env:"CORS_ALLOWED_ORIGINS"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// Address returns host:port for http.Server.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver     string `yaml:"driver" env:"DB_DRIVER"`
	URL        string `yaml:"url" env:"DATABASE_URL"`
	Host       string `yaml:"host" env:"DB_HOST"`
	Port       string `yaml:"port" env:"DB_PORT"`
	User       string `yaml:"user" env:"DB_USER"`
	Password   string `yaml:"password" env:"DB_PASSWORD"`
	Name       string `yaml:"name" env:"DB_NAME"`
	SSLMode    string `yaml:"sslmode" env:"DB_SSLMODE"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// DSN returns the postgres connection string, preferring DATABASE_URL.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL    time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL"`
	RememberRefreshTTL time.Duration `yaml:"remember_refresh_ttl" env:"REMEMBER_REFRESH_TOKEN_TTL"`
}

type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST"`
	Port     string `yaml:"port" env:"REDIS_PORT"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
}

// Enabled reports whether a Redis host was configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type StorageConfig struct {
	// Backend is one of "local", "s3" or "minio".
	Backend        string `yaml:"backend" env:"STORAGE_BACKEND"`
	MediaRoot      string `yaml:"media_root" env:"MEDIA_ROOT"`
	MediaURL       string `yaml:"media_url" env:"MEDIA_URL"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`

	AWSRegion  string `yaml:"aws_region" env:"AWS_REGION"`
	AWSBucket  string `yaml:"aws_bucket" env:"AWS_BUCKET"`
	CDNBaseURL string `yaml:"cdn_base_url" env:"CDN_BASE_URL"`

	MinioEndpoint  string `yaml:"minio_endpoint" env:"MINIO_ENDPOINT"`
	MinioAccessKey string `yaml:"minio_access_key" env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `yaml:"minio_secret_key" env:"MINIO_SECRET_KEY"`
	MinioBucket    string `yaml:"minio_bucket" env:"MINIO_BUCKET"`
	MinioUseSSL    bool   `yaml:"minio_use_ssl" env:"MINIO_USE_SSL"`
	MinioPublicURL string `yaml:"minio_public_url" env:"MINIO_PUBLIC_URL"`
}

// RateLimitConfig holds per-hour request allowances.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	Anon    int  `yaml:"anon" env:"RATE_LIMIT_ANON"`
	User    int  `yaml:"user" env:"RATE_LIMIT_USER"`
	Premium int  `yaml:"premium" env:"RATE_LIMIT_PREMIUM"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"OTEL_ENABLED"`
	Endpoint     string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SamplingRate float64 `yaml:"sampling_rate" env:"OTEL_SAMPLING_RATE"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
	File  string `yaml:"file" env:"LOG_FILE"`
}

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "trailium-backend",
			Environment: "development",
			CORSOrigins: "http://localhost:5173,http://127.0.0.1:5173",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       "5432",
			User:       "postgres",
			Password:   "",
			Name:       "trailium",
			SSLMode:    "disable",
			SQLitePath: "trailium.db",
		},
		Auth: AuthConfig{
			JWTSecret:          DevJWTSecret,
			AccessTokenTTL:     DefaultAccessTokenTTL,
			RefreshTokenTTL:    DefaultRefreshTokenTTL,
			RememberRefreshTTL: DefaultRememberRefreshTTL,
		},
		Storage: StorageConfig{
			Backend:        "local",
			MediaRoot:      "media",
			MediaURL:       "/media",
			MaxUploadBytes: DefaultMaxUploadBytes,
			AWSRegion:      "us-east-1",
			MinioBucket:    "trailium",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Anon:    DefaultRateAnon,
			User:    DefaultRateUser,
			Premium: DefaultRatePremium,
		},
		Telemetry: TelemetryConfig{
			Endpoint:     "localhost:4318",
			SamplingRate: 1.0,
		},
		Log: LogConfig{
			Level: "info",
			File:  "server.log",
		},
	}
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

// IsDevelopment reports whether ENVIRONMENT is development.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "" || strings.EqualFold(c.App.Environment, "development")
}

// AllowedOrigins splits CORSOrigins into a trimmed list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.App.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Validate validates the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && c.Database.Host == "" {
			errs = append(errs, errors.New("database.host or database.url is required"))
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("database.sqlite_path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.IsProduction() && c.Auth.JWTSecret == DevJWTSecret {
		errs = append(errs, errors.New("auth.jwt_secret must be changed in production"))
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 || c.Auth.RememberRefreshTTL <= 0 {
		errs = append(errs, errors.New("auth token lifetimes must be positive"))
	}

	switch c.Storage.Backend {
	case "local":
	case "s3":
		if c.Storage.AWSBucket == "" {
			errs = append(errs, errors.New("storage.aws_bucket is required for the s3 backend"))
		}
	case "minio":
		if c.Storage.MinioEndpoint == "" || c.Storage.MinioBucket == "" {
			errs = append(errs, errors.New("storage.minio_endpoint and storage.minio_bucket are required for the minio backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be local, s3 or minio, got %q", c.Storage.Backend))
	}
	if c.Storage.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("storage.max_upload_bytes must be positive"))
	}

	if c.RateLimit.Enabled && (c.RateLimit.Anon <= 0 || c.RateLimit.User <= 0 || c.RateLimit.Premium <= 0) {
		errs = append(errs, errors.New("rate_limit allowances must be positive"))
	}

	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		errs = append(errs, errors.New("telemetry.sampling_rate must be within [0, 1]"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}
	return nil
}

// Load reads .env, the YAML file named by TRAILIUM_CONFIG (or ./config.yaml)
// and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromPath("")
}

// LoadFromPath loads configuration from a specific YAML file. An empty path
// falls back to TRAILIUM_CONFIG and then config.yaml when present.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if path == "" {
		if envPath := os.Getenv("TRAILIUM_CONFIG"); envPath != "" {
			path = envPath
			explicit = true
		} else if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && explicit {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := loadEnvToStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func loadEnvToStruct(v reflect.Value) error {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := loadEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}
		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}
		if err := setFieldFromEnv(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}
	return nil
}

//nolint:exhaustive // only the kinds used by Config are supported
func setFieldFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeFor[time.Duration]() {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidDuration, value)
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		field.SetBool(b)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}
