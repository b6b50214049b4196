// Package config provides configuration for the application
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Mongo    MongoConfig
	Mirror   MirrorConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	Sync     SyncConfig
	Resolver ResolverConfig
}

// MongoConfig holds primary store connection settings
type MongoConfig struct {
	URI              string
	DBName           string
	Collection       string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
	RetryInterval    time.Duration
	// TLSInsecure skips certificate verification on TLS connections
	TLSInsecure      bool
	MigrationsPath   string
	MigrationTimeout time.Duration
}

// MirrorConfig holds local mirror file settings
type MirrorConfig struct {
	Path string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// SyncConfig holds the periodic database to mirror synchronization settings
type SyncConfig struct {
	// Schedule is a standard cron expression, empty disables periodic sync
	Schedule string
	Timeout  time.Duration
}

// ResolverConfig holds the fallback policy of the tutorial resolver
type ResolverConfig struct {
	// FallbackOnEmptyList makes an empty database listing fall back to the mirror
	FallbackOnEmptyList bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Primary store configuration.
	// MONGO_URI wins, otherwise the URI is built from the Atlas credentials.
	// Without either the application runs from the mirror file only.
	cfg.Mongo.URI = os.Getenv("MONGO_URI")
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = buildAtlasURI(
			os.Getenv("MONGO_USERNAME"),
			os.Getenv("MONGO_PASSWORD"),
			os.Getenv("MONGO_HOST"),
			os.Getenv("MONGO_APP_NAME"),
		)
	}
	cfg.Mongo.DBName = getEnv("MONGO_DB_NAME", "codeverse")
	cfg.Mongo.Collection = getEnv("MONGO_COLLECTION", "tutorials")
	cfg.Mongo.MigrationsPath = os.Getenv("MONGO_MIGRATIONS_PATH")

	var err error
	if cfg.Mongo.ConnectTimeout, err = getDuration("MONGO_CONNECT_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.Mongo.OperationTimeout, err = getDuration("MONGO_OPERATION_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.Mongo.RetryInterval, err = getDuration("MONGO_RETRY_INTERVAL", "30s"); err != nil {
		return nil, err
	}
	if cfg.Mongo.MigrationTimeout, err = getDuration("MONGO_MIGRATION_TIMEOUT", "2m"); err != nil {
		return nil, err
	}
	if cfg.Mongo.TLSInsecure, err = getBool("MONGO_TLS_INSECURE", true); err != nil {
		return nil, err
	}

	// Mirror configuration
	cfg.Mirror.Path = getEnv("MIRROR_FILE", "tutorials_content.json")

	// Server configuration
	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = os.Getenv("PORT")
	}
	if serverPortStr == "" {
		serverPortStr = "5000" // default port
	}
	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if corsOrigins == "" {
		// Default to allow all origins if not specified
		cfg.CORS.AllowedOrigins = []string{"*"}
	} else {
		// Parse comma-separated origins
		origins := strings.Split(corsOrigins, ",")
		cfg.CORS.AllowedOrigins = make([]string, 0, len(origins))
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, origin)
			}
		}
		// If no valid origins found, default to allow all
		if len(cfg.CORS.AllowedOrigins) == 0 {
			cfg.CORS.AllowedOrigins = []string{"*"}
		}
	}

	// Sync configuration
	cfg.Sync.Schedule = os.Getenv("SYNC_CRON")
	if cfg.Sync.Timeout, err = getDuration("SYNC_TIMEOUT", "1m"); err != nil {
		return nil, err
	}

	// Resolver configuration
	if cfg.Resolver.FallbackOnEmptyList, err = getBool("FALLBACK_ON_EMPTY_LIST", true); err != nil {
		return nil, err
	}

	return cfg, nil
}

// buildAtlasURI builds an SRV connection string from Atlas credentials.
// Returns an empty string if any required part is missing.
func buildAtlasURI(username, password, host, appName string) string {
	if username == "" || password == "" || host == "" {
		return ""
	}

	query := url.Values{}
	query.Set("retryWrites", "true")
	query.Set("w", "majority")
	if appName != "" {
		query.Set("appName", appName)
	}

	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(username, password),
		Host:     host,
		Path:     "/",
		RawQuery: query.Encode(),
	}
	return u.String()
}

// getEnv returns the value of the environment variable or the fallback if it is empty
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDuration parses a duration environment variable, using fallback when it is empty
func getDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// getBool parses a boolean environment variable, using fallback when it is empty
func getBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
