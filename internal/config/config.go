package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// API Settings
	APITitle   string
	APIVersion string
	APIPrefix  string
	Port       string

	// Environment selects production or development logging
	Environment string
	LogLevel    string

	// CORS
	CORSOrigins []string

	// Vector Search Backend: "pgvector" or "vertex"
	VectorBackend string

	// Per-client request rate for the search endpoints (requests per second)
	SearchRateLimit float64

	// Vertex AI Vector Search settings (used when VectorBackend = "vertex")
	VertexProjectID            string
	VertexLocation             string
	VertexIndexEndpointID      string
	VertexDeployedIndexID      string
	VertexPublicEndpointDomain string

	// Web frontend
	WebTitle        string
	WebPort         string
	PageSize        int
	KeywordFallback bool

	// Remote ranked search service used by the web frontend
	SearchServiceURL      string
	SearchTimeout         time.Duration
	SearchMaxRetries      int
	SearchRetryInterval   time.Duration
	SearchBreakerFailures int
	SearchBreakerTimeout  time.Duration
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the singleton configuration instance
func GetConfig() *Config {
	once.Do(func() {
		config = loadConfig()
	})
	return config
}

func loadConfig() *Config {
	return &Config{
		APITitle:    getEnv("API_TITLE", "Hadith Similarity Search API"),
		APIVersion:  getEnv("API_VERSION", "1.0.0"),
		APIPrefix:   getEnv("API_PREFIX", "/api/v1"),
		Port:        getEnv("PORT", "8000"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: parseCORSOrigins(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),

		// Vector search backend configuration
		VectorBackend:   getEnv("VECTOR_BACKEND", "pgvector"), // "pgvector" or "vertex"
		SearchRateLimit: getEnvFloat("SEARCH_RATE_LIMIT", 5),

		// Vertex AI settings
		VertexProjectID:            getEnv("VERTEX_PROJECT_ID", ""),
		VertexLocation:             getEnv("VERTEX_LOCATION", "us-central1"),
		VertexIndexEndpointID:      getEnv("VERTEX_INDEX_ENDPOINT_ID", ""),
		VertexDeployedIndexID:      getEnv("VERTEX_DEPLOYED_INDEX_ID", ""),
		VertexPublicEndpointDomain: getEnv("VERTEX_PUBLIC_ENDPOINT_DOMAIN", ""),

		// Web frontend
		WebTitle:        getEnv("WEB_TITLE", "Hadith Similarity Search"),
		WebPort:         getEnv("WEB_PORT", "8080"),
		PageSize:        getEnvInt("PAGE_SIZE", 10),
		KeywordFallback: getEnvBool("KEYWORD_FALLBACK", true),

		// Remote search
		SearchServiceURL:      strings.TrimRight(getEnv("SEARCH_SERVICE_URL", "http://localhost:8000"), "/"),
		SearchTimeout:         getEnvDuration("SEARCH_TIMEOUT", 10*time.Second),
		SearchMaxRetries:      getEnvInt("SEARCH_MAX_RETRIES", 2),
		SearchRetryInterval:   getEnvDuration("SEARCH_RETRY_INTERVAL", 200*time.Millisecond),
		SearchBreakerFailures: getEnvInt("SEARCH_BREAKER_FAILURES", 5),
		SearchBreakerTimeout:  getEnvDuration("SEARCH_BREAKER_TIMEOUT", 30*time.Second),
	}
}

// IsProduction reports whether the service runs with production defaults
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseCORSOrigins(value string) []string {
	var origins []string
	if err := json.Unmarshal([]byte(value), &origins); err == nil {
		return origins
	}
	parts := strings.Split(value, ",")
	origins = make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
