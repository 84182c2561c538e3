package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	CORS        CORSConfig
	Log         LogConfig
	Environment string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// DatabaseConfig holds relational store configuration.
// For postgres, ConnectionString (from DATABASE_URL) takes precedence over individual fields.
type DatabaseConfig struct {
	Driver           string
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	SQLitePath       string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	AutoMigrate      bool
}

// AuthConfig holds the identity provider settings used to verify bearer tokens
type AuthConfig struct {
	Domain             string // Auth0 tenant domain, e.g. fsnd.us.auth0.com
	Issuer             string
	Audience           string
	JWKSURL            string
	JWKSFile           string
	MinRefreshInterval time.Duration
	Leeway             time.Duration
	HTTPTimeout        time.Duration

	// Client credentials, only used by the token command
	ClientID     string
	ClientSecret string
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	Format     string // json or console
	File       string // optional; enables rotation through lumberjack
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
		},
		Database: loadDatabaseConfig(),
		Auth:     loadAuthConfig(),
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
			Compress:   getEnvAsBool("LOG_COMPRESS", false),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.ConnectionString == "" && c.Database.Host == "" {
			return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
		}
		if c.Database.ConnectionString == "" {
			if c.Database.User == "" {
				return fmt.Errorf("database user is required")
			}
			if c.Database.Database == "" {
				return fmt.Errorf("database name is required")
			}
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q: use %s or %s", c.Database.Driver, DriverSQLite, DriverPostgres)
	}

	// Issuer and audience are mandatory once a key source is configured
	if c.Auth.Configured() {
		if c.Auth.Issuer == "" {
			return fmt.Errorf("auth issuer is required with a signing key source: set AUTH_ISSUER or AUTH0_DOMAIN")
		}
		if c.Auth.Audience == "" {
			return fmt.Errorf("auth audience is required with a signing key source")
		}
	}

	// Token verification settings (required in production)
	if c.IsProduction() {
		if c.Auth.Issuer == "" {
			return fmt.Errorf("auth issuer is required in production: set AUTH_ISSUER or AUTH0_DOMAIN")
		}
		if c.Auth.Audience == "" {
			return fmt.Errorf("auth audience is required in production")
		}
	}

	if c.Log.Level == "" {
		return fmt.Errorf("log level is required")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Configured reports whether a signing-key source can be derived
func (c *AuthConfig) Configured() bool {
	return c.Issuer != "" || c.JWKSURL != "" || c.JWKSFile != ""
}

// TokenURL returns the client-credentials endpoint of the Auth0 tenant
func (c *AuthConfig) TokenURL() string {
	if c.Domain == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/oauth/token", c.Domain)
}

// DSN returns the driver-specific connection string
func (c *DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		if strings.Contains(c.SQLitePath, "?") {
			return c.SQLitePath
		}
		return c.SQLitePath + "?_busy_timeout=5000"
	}
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("driver=%s path=%s", c.Driver, c.SQLitePath)
	}
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("driver=%s host=%s port=%s database=%s", c.Driver, host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("driver=%s host=%s port=%d database=%s", c.Driver, c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		Driver:          getEnv("DATABASE_DRIVER", DriverSQLite),
		SQLitePath:      getEnv("SQLITE_PATH", "database.db"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
	}

	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		cfg.ConnectionString = dbURL
		return cfg
	}

	cfg.Host = getEnv("DB_HOST", "localhost")
	cfg.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.User = getEnv("DB_USER", "postgres")
	cfg.Password = getEnv("DB_PASSWORD", "")
	cfg.Database = getEnv("DB_NAME", "coffee_shop")
	cfg.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg
}

// loadAuthConfig derives the issuer from AUTH0_DOMAIN when AUTH_ISSUER is not set
func loadAuthConfig() AuthConfig {
	domain := strings.TrimSuffix(strings.TrimPrefix(getEnv("AUTH0_DOMAIN", ""), "https://"), "/")

	issuer := getEnv("AUTH_ISSUER", "")
	if issuer == "" && domain != "" {
		issuer = fmt.Sprintf("https://%s/", domain)
	}

	return AuthConfig{
		Domain:             domain,
		Issuer:             issuer,
		Audience:           getEnv("AUTH_AUDIENCE", "drinks"),
		JWKSURL:            getEnv("JWKS_URL", ""),
		JWKSFile:           getEnv("JWKS_FILE", ""),
		MinRefreshInterval: getEnvAsDuration("JWKS_MIN_REFRESH_INTERVAL", 5*time.Minute),
		Leeway:             getEnvAsDuration("AUTH_LEEWAY", 0),
		HTTPTimeout:        getEnvAsDuration("AUTH_HTTP_TIMEOUT", 10*time.Second),
		ClientID:           getEnv("AUTH0_CLIENT_ID", ""),
		ClientSecret:       getEnv("AUTH0_CLIENT_SECRET", ""),
	}
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 5000)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 5000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
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
