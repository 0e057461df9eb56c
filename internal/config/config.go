// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string
	AppEnv string

	// Object storage (S3-compatible: MinIO locally, any S3 endpoint in production)
	BlobDriver           string
	BlobAccountURL       string
	BlobAccessKey        string
	BlobSecretKey        string
	BlobConnectionString string
	BlobContainer        string

	// Grounding agent
	ProjectEndpoint   string
	AgentAPIKey       string
	BingConnection    string
	BingSearchURL     string
	BingSearchKey     string
	AgentName         string
	AgentInstructions string
	AgentModel        string

	// News aggregation API
	NewsAPIKey string
	NewsAPIURL string

	// Local dataset
	KaggleDatasetPath string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		BlobDriver:           getEnv("BLOB_STORAGE_DRIVER", "minio"),
		BlobAccountURL:       getEnv("BLOB_ACCOUNT_URL", ""),
		BlobAccessKey:        getEnv("BLOB_ACCESS_KEY", ""),
		BlobSecretKey:        getEnv("BLOB_SECRET_KEY", ""),
		BlobConnectionString: getEnv("BLOB_STORAGE_CONNECTION_STRING", ""),
		BlobContainer:        getEnv("BLOB_STORAGE_CONTAINER_NAME", ""),

		ProjectEndpoint:   getEnv("AI_FOUNDRY_PROJECT_ENDPOINT", ""),
		AgentAPIKey:       getEnv("AGENT_API_KEY", ""),
		BingConnection:    getEnv("BING_CONNECTION_NAME", ""),
		BingSearchURL:     getEnv("BING_SEARCH_URL", ""),
		BingSearchKey:     getEnv("BING_SEARCH_KEY", ""),
		AgentName:         getEnv("AGENT_NAME", ""),
		AgentInstructions: getEnv("AGENT_INSTRUCTIONS", ""),
		AgentModel:        getEnv("AGENT_LLM", "gpt-4o"),

		NewsAPIKey: getEnv("NEWS_API_KEY", ""),
		NewsAPIURL: getEnv("NEWS_API_URL", "https://newsapi.org"),

		KaggleDatasetPath: getEnv("KAGGLE_DATASET_PATH", "data/kagglenews.json"),
	}
}

// Require checks that every named setting carries a value. The returned
// error lists all missing names at once so a caller sees the full gap in
// one round trip.
func (c *Config) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if c.lookup(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// lookup maps an environment variable name to its loaded value.
func (c *Config) lookup(name string) string {
	switch name {
	case "PORT":
		return c.Port
	case "APP_ENV":
		return c.AppEnv
	case "BLOB_STORAGE_DRIVER":
		return c.BlobDriver
	case "BLOB_ACCOUNT_URL":
		return c.BlobAccountURL
	case "BLOB_ACCESS_KEY":
		return c.BlobAccessKey
	case "BLOB_SECRET_KEY":
		return c.BlobSecretKey
	case "BLOB_STORAGE_CONNECTION_STRING":
		return c.BlobConnectionString
	case "BLOB_STORAGE_CONTAINER_NAME":
		return c.BlobContainer
	case "AI_FOUNDRY_PROJECT_ENDPOINT":
		return c.ProjectEndpoint
	case "AGENT_API_KEY":
		return c.AgentAPIKey
	case "BING_CONNECTION_NAME":
		return c.BingConnection
	case "BING_SEARCH_URL":
		return c.BingSearchURL
	case "BING_SEARCH_KEY":
		return c.BingSearchKey
	case "AGENT_NAME":
		return c.AgentName
	case "AGENT_INSTRUCTIONS":
		return c.AgentInstructions
	case "AGENT_LLM":
		return c.AgentModel
	case "NEWS_API_KEY":
		return c.NewsAPIKey
	case "NEWS_API_URL":
		return c.NewsAPIURL
	case "KAGGLE_DATASET_PATH":
		return c.KaggleDatasetPath
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
