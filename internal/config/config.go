package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Presentation server (loopback only by default)
	ListenAddr string

	// Logging
	LogLevel  string
	LogPretty bool
	LogFile   string

	// Geolocation provider
	GeolocationBaseURL string
	GeolocationToken   string // optional ipinfo.io token

	// Record store
	RecordStoreDriver string // "sqlite" or "mysql"
	DatabasePath      string // SQLite file
	MySQLDSN          string

	// Generated artifacts
	MapOutputDir string
	OpenBrowser  bool
	ChartOutput  string

	// Upstream rate limiting
	RateLimitType   string // "memory" or "redis"
	RateLimit       int    // lookups allowed per window
	RateLimitWindow int    // window in seconds

	// Redis configuration (redis rate limiter only)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", "127.0.0.1:3000"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
		LogFile:   getEnv("LOG_FILE", ""),

		GeolocationBaseURL: getEnv("GEOLOCATION_BASE_URL", "https://ipinfo.io"),
		GeolocationToken:   getEnv("GEOLOCATION_TOKEN", ""),

		RecordStoreDriver: strings.ToLower(getEnv("RECORD_STORE_DRIVER", "sqlite")),
		DatabasePath:      getEnv("DATABASE_PATH", "ip_tracker.db"),
		MySQLDSN:          getEnv("MYSQL_DSN", ""),

		MapOutputDir: getEnv("MAP_OUTPUT_DIR", "."),
		OpenBrowser:  getEnvAsBool("OPEN_BROWSER", true),
		ChartOutput:  getEnv("CHART_OUTPUT", "ip_tracker_chart.html"),

		// ipinfo.io's unauthenticated tier tolerates roughly 45 lookups a minute
		RateLimitType:   getEnv("RATE_LIMITER_TYPE", "memory"),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 45),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 60),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
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

// getEnvAsBool reads an environment variable as a boolean
// Accepts anything strconv.ParseBool does ("1", "true", "FALSE", ...)
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
