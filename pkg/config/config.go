package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string.
// DATABASE_URL wins over the individual host/port settings when set.
func (c *DBConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// LLMConfig holds the text-generation endpoint configuration.
// An empty APIKey switches the service to the mock client.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
	MaxConcurrency int
}

// UploadConfig holds file upload limits and URL import rules.
// AllowPrivateHosts lets URL imports reach loopback and private networks.
type UploadConfig struct {
	MaxSize           int64
	AllowedExtensions []string
	AllowPrivateHosts bool
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	LLM         LLMConfig
	Upload      UploadConfig
}

// Load loads configuration from a .env file (if any) and environment variables
func Load(serviceName string) (*Config, error) {
	// .env file is optional
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "content_repurpose"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8000"),
			Env:            getEnv("APP_ENV", "development"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "change-this-secret-key-in-production"),
			AccessTokenTTL:  getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 30*time.Minute),
			RefreshTokenTTL: getEnvAsDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "repurpose"),
		},
		LLM: LLMConfig{
			APIKey:         getEnv("GROQ_API_KEY", ""),
			BaseURL:        getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:          getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			Temperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 2000),
			Timeout:        getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			MaxConcurrency: getEnvAsInt("LLM_MAX_CONCURRENCY", 7),
		},
		Upload: UploadConfig{
			MaxSize:           int64(getEnvAsInt("MAX_UPLOAD_SIZE", 50*1024*1024)),
			AllowedExtensions: []string{".txt", ".md", ".pdf", ".docx"},
			AllowPrivateHosts: getEnvAsBool("ALLOW_PRIVATE_URLS", false),
		},
	}

	if config.Server.Env == "production" && config.JWT.SigningKey == "change-this-secret-key-in-production" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}

	return config, nil
}

// LogConfig returns the configuration as zap fields, secrets left out
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db", maskDSN(c.DB.GetDSN())),
		zap.String("server_port", c.Server.Port),
		zap.String("llm_model", c.LLM.Model),
		zap.Bool("llm_mock", c.LLM.APIKey == ""),
	}
}

func maskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	return "***MASKED***"
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Comma separated list, blanks dropped
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
