package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	NATS      NATSConfig
	Storage   StorageConfig
	SMTP      SMTPConfig
	Tracing   TracingConfig
	Sentry    SentryConfig
	RateLimit RateLimitConfig
	Search    SearchConfig
	Fraud     FraudConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	Version      string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	MinConns       int
	MigrationsAuto bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in hours
}

// NATSConfig holds NATS event bus configuration
type NATSConfig struct {
	URL     string
	Enabled bool
}

// StorageConfig holds S3-compatible object storage configuration for car photos
type StorageConfig struct {
	Bucket           string
	Region           string
	Endpoint         string
	AccessKey        string
	SecretKey        string
	BaseURL          string
	UploadExpiryMins int
	Enabled          bool
}

// SMTPConfig holds outbound email configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Enabled  bool
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Endpoint    string
	SampleRatio float64
	Enabled     bool
}

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN string
}

// RateLimitConfig holds per-client request limits for public endpoints
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	Enabled           bool
}

// SearchConfig holds listing search configuration
type SearchConfig struct {
	DefaultPageSize  int
	MaxPageSize      int
	MaxGeoCandidates int
	CacheTTLMinutes  int
}

// FraudConfig holds the thresholds used by the fraud heuristics
type FraudConfig struct {
	SimilarPriceTolerance  float64 // fraction, 0.02 = ±2%
	MarketYearWindow       int     // ± model years
	MarketLookbackDays     int
	MarketMinSamples       int
	LowPriceRatio          float64
	HighPriceRatio         float64
	RapidListingDaily      int
	RapidListingWeekly     int
	ReviewsPerSellerLimit  int
	ReviewsPerDayLimit     int
	ReputationIndicatorHit float64
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			Version:      getEnv("SERVICE_VERSION", "1.0.0"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "carmarket"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:       getEnvAsInt("DB_MIN_CONNS", 5),
			MigrationsAuto: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Expiration: getEnvAsInt("JWT_EXPIRATION", 24),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		Storage: StorageConfig{
			Bucket:           getEnv("S3_BUCKET", "carmarket-photos"),
			Region:           getEnv("S3_REGION", "ap-southeast-1"),
			Endpoint:         getEnv("S3_ENDPOINT", ""),
			AccessKey:        getEnv("S3_ACCESS_KEY", ""),
			SecretKey:        getEnv("S3_SECRET_KEY", ""),
			BaseURL:          getEnv("S3_BASE_URL", ""),
			UploadExpiryMins: getEnvAsInt("S3_UPLOAD_EXPIRY_MINUTES", 15),
			Enabled:          getEnvAsBool("S3_ENABLED", false),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@carmarket.ph"),
			Enabled:  getEnvAsBool("SMTP_ENABLED", false),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 0.1),
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
		},
		Search: SearchConfig{
			DefaultPageSize:  getEnvAsInt("SEARCH_DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:      getEnvAsInt("SEARCH_MAX_PAGE_SIZE", 100),
			MaxGeoCandidates: getEnvAsInt("SEARCH_MAX_GEO_CANDIDATES", 2000),
			CacheTTLMinutes:  getEnvAsInt("CAR_CACHE_TTL_MINUTES", 60),
		},
		Fraud: DefaultFraudConfig(),
	}

	cfg.Fraud.MarketMinSamples = getEnvAsInt("FRAUD_MARKET_MIN_SAMPLES", cfg.Fraud.MarketMinSamples)
	cfg.Fraud.MarketLookbackDays = getEnvAsInt("FRAUD_MARKET_LOOKBACK_DAYS", cfg.Fraud.MarketLookbackDays)

	return cfg, nil
}

// DefaultFraudConfig returns the stock fraud thresholds
func DefaultFraudConfig() FraudConfig {
	return FraudConfig{
		SimilarPriceTolerance:  0.02,
		MarketYearWindow:       2,
		MarketLookbackDays:     180,
		MarketMinSamples:       3,
		LowPriceRatio:          0.5,
		HighPriceRatio:         3.0,
		RapidListingDaily:      10,
		RapidListingWeekly:     50,
		ReviewsPerSellerLimit:  3,
		ReviewsPerDayLimit:     5,
		ReputationIndicatorHit: 5,
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as expected by migrate
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// AllowedOrigins splits the CORS origin list
func (c *ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsProduction reports whether the service runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
