package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	ObjectStorage ObjectStorageConfig
	Auth          AuthConfig
	Payment       PaymentConfig
	CodeRunner    CodeRunnerConfig
	EmailTriggers EmailTriggerConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Cache         CacheConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

type ObjectStorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

type AuthConfig struct {
	JWTSecret                   string
	JWTIssuer                   string
	RegistrationTokenTTLMinutes int
	ProfileTokenTTLHours        int
	SessionTTLHours             int
	CookieDomain                string
	CookieSecure                bool
}

type PaymentConfig struct {
	KeyID          string
	KeySecret      string
	GatewayBaseURL string
}

type CodeRunnerConfig struct {
	BaseURL        string
	APIKey         string
	APIHost        string
	PollIntervalMs int
	MaxPolls       int
}

type EmailTriggerConfig struct {
	UserRegisteredTriggerURL      string
	InterviewRequestedTriggerURL  string
	InterviewScheduledTriggerURL  string
	InterviewCompletedTriggerURL  string
	ApplicationReceivedTriggerURL string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

type CacheConfig struct {
	InterviewerTTLSeconds int  // Interviewer directory cache TTL in seconds
	DisableDirectoryCache bool // Experimental: disable cache and read from DB on every request
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://algospace.dev")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://algospace.dev,https://www.algospace.dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "alloy:4318") // OTLP over HTTP
	v.SetDefault("O11Y_BE_SERVICE_NAME", "algospace-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "algospace-dev")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "algospace-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)
	v.SetDefault("INTERVIEWER_CACHE_TTL", 600) // 10 minutes in seconds
	v.SetDefault("DISABLE_DIRECTORY_CACHE", false)

	// Auth defaults
	v.SetDefault("JWT_ISSUER", "algospace-api")
	v.SetDefault("REGISTRATION_TOKEN_TTL_MINUTES", 60)
	v.SetDefault("PROFILE_TOKEN_TTL_HOURS", 2)
	v.SetDefault("SESSION_TTL_HOURS", 720)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)

	// Code runner defaults
	v.SetDefault("CODE_RUNNER_POLL_INTERVAL_MS", 1000)
	v.SetDefault("CODE_RUNNER_MAX_POLLS", 10)

	// Payment defaults
	v.SetDefault("PAYMENT_GATEWAY_BASE_URL", "https://api.razorpay.com")

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: 20,
			MinConns: 2,
		},
		ObjectStorage: ObjectStorageConfig{
			AccessKeyID:     v.GetString("OBJECT_STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("OBJECT_STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("OBJECT_STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("OBJECT_STORAGE_ENDPOINT"),
			Region:          v.GetString("OBJECT_STORAGE_REGION"),
		},
		Auth: AuthConfig{
			JWTSecret:                   v.GetString("JWT_SECRET"),
			JWTIssuer:                   v.GetString("JWT_ISSUER"),
			RegistrationTokenTTLMinutes: v.GetInt("REGISTRATION_TOKEN_TTL_MINUTES"),
			ProfileTokenTTLHours:        v.GetInt("PROFILE_TOKEN_TTL_HOURS"),
			SessionTTLHours:             v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain:                v.GetString("COOKIE_DOMAIN"),
			CookieSecure:                v.GetBool("COOKIE_SECURE"),
		},
		Payment: PaymentConfig{
			KeyID:          v.GetString("RAZORPAY_KEY_ID"),
			KeySecret:      v.GetString("RAZORPAY_KEY_SECRET"),
			GatewayBaseURL: v.GetString("PAYMENT_GATEWAY_BASE_URL"),
		},
		CodeRunner: CodeRunnerConfig{
			BaseURL:        v.GetString("CODE_RUNNER_BASE_URL"),
			APIKey:         v.GetString("CODE_RUNNER_API_KEY"),
			APIHost:        v.GetString("CODE_RUNNER_API_HOST"),
			PollIntervalMs: v.GetInt("CODE_RUNNER_POLL_INTERVAL_MS"),
			MaxPolls:       v.GetInt("CODE_RUNNER_MAX_POLLS"),
		},
		EmailTriggers: EmailTriggerConfig{
			UserRegisteredTriggerURL:      v.GetString("USER_REGISTERED_TRIGGER_URL"),
			InterviewRequestedTriggerURL:  v.GetString("INTERVIEW_REQUESTED_TRIGGER_URL"),
			InterviewScheduledTriggerURL:  v.GetString("INTERVIEW_SCHEDULED_TRIGGER_URL"),
			InterviewCompletedTriggerURL:  v.GetString("INTERVIEW_COMPLETED_TRIGGER_URL"),
			ApplicationReceivedTriggerURL: v.GetString("APPLICATION_RECEIVED_TRIGGER_URL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
		Cache: CacheConfig{
			InterviewerTTLSeconds: v.GetInt("INTERVIEWER_CACHE_TTL"),
			DisableDirectoryCache: v.GetBool("DISABLE_DIRECTORY_CACHE"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// Database configuration
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Auth configuration
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
