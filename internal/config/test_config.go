package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration for integration tests from the .env file or environment variables.
// If TEST_MONGO_URI is not set the returned Mongo URI is empty, which lets tests skip
// the cases that need a running database.
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	// Try both possible paths
	_ = godotenv.Load("./../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Mongo.URI = os.Getenv("TEST_MONGO_URI")
	cfg.Mongo.DBName = getEnv("TEST_MONGO_DB_NAME", "codeverse_test")
	cfg.Mongo.Collection = "tutorials"
	cfg.Mongo.ConnectTimeout = 2 * time.Second
	cfg.Mongo.OperationTimeout = 5 * time.Second
	cfg.Mongo.RetryInterval = time.Second
	cfg.Resolver.FallbackOnEmptyList = true

	return cfg, nil
}
