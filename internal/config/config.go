package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port        string
	Origin      string
	Environment string
	LogLevel    string
	Database    DatabaseConfig
	Auth        AuthConfig
	Analysis    AnalysisConfig
}

// DatabaseConfig holds record store connection details
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// AuthConfig holds the device-lock settings
type AuthConfig struct {
	Enabled              bool
	JWTSecret            string
	JWTExpirationMinutes int
}

// AnalysisConfig selects and bounds the analysis capability
type AnalysisConfig struct {
	Analyzer        string
	Timeout         time.Duration
	Delay           time.Duration
	MaxCaptureBytes int64
}

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", DriverSQLite),
		Path:     getEnv("DB_PATH", "aasha.db"),
		Host:     getEnv("DB_HOST", "localhost"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "aasha"),
	}

	switch dbConfig.Driver {
	case DriverSQLite:
		dbConfig.DSN = dbConfig.Path
	case DriverMySQL:
		dbConfig.Port = getEnv("DB_PORT", "3306")
		dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
	case DriverPostgres:
		dbConfig.Port = getEnv("DB_PORT", "5432")
		dbConfig.DSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			dbConfig.Host, dbConfig.Port, dbConfig.Username, dbConfig.Password, dbConfig.Name)
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want sqlite, mysql or postgres", dbConfig.Driver)
	}

	authEnabled, err := strconv.ParseBool(getEnv("AUTH_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_ENABLED: %w", err)
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "720"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	analysisTimeout, err := time.ParseDuration(getEnv("ANALYSIS_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_TIMEOUT: %w", err)
	}

	analysisDelay, err := time.ParseDuration(getEnv("ANALYSIS_DELAY", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_DELAY: %w", err)
	}

	maxCapture, err := strconv.ParseInt(getEnv("MAX_CAPTURE_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_CAPTURE_BYTES: %w", err)
	}

	return &Config{
		Port:        getEnv("PORT", "3001"),
		Origin:      getEnv("ORIGIN", "http://localhost:4200"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database:    dbConfig,
		Auth: AuthConfig{
			Enabled:              authEnabled,
			JWTSecret:            getEnv("JWT_SECRET", "default_jwt_secret"),
			JWTExpirationMinutes: jwtExpMinutes,
		},
		Analysis: AnalysisConfig{
			Analyzer:        getEnv("ANALYZER", "placeholder"),
			Timeout:         analysisTimeout,
			Delay:           analysisDelay,
			MaxCaptureBytes: maxCapture,
		},
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
