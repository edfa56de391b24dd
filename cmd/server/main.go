package main

import (
	"net/http"
	"time"

	"github.com/evyataryagoni/iptracker/internal/config"
	"github.com/evyataryagoni/iptracker/internal/handler"
	"github.com/evyataryagoni/iptracker/internal/limiter"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/lookup"
	"github.com/evyataryagoni/iptracker/internal/mapview"
	"github.com/evyataryagoni/iptracker/internal/metrics"
	"github.com/evyataryagoni/iptracker/internal/router"
	"github.com/evyataryagoni/iptracker/internal/service"
	"github.com/evyataryagoni/iptracker/internal/store"
)

func main() {
	// Load configuration
	appConfig := config.Load()

	// Initialize components
	appLogger := setupLogger(appConfig)
	recordStore := setupRecordStore(appConfig, appLogger)

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	metricsCollector := metrics.New()

	lookupClient := lookup.NewHTTPClient(lookup.Config{
		BaseURL: appConfig.GeolocationBaseURL,
		Token:   appConfig.GeolocationToken,
	})
	mapWriter := mapview.NewWriter(appConfig.MapOutputDir, appConfig.OpenBrowser)

	// Build application layers
	trackerService := service.NewTrackerService(lookupClient, recordStore, mapWriter, metricsCollector, appLogger)
	defer trackerService.Close()

	trackerHandler := handler.NewTrackerHandler(trackerService)
	appRouter := router.SetupRouter(trackerHandler, rateLimiter, metricsCollector, appLogger)

	// Start server
	startServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	})

	appLogger.Info().Msg("Starting IP Tracker...")
	appLogger.Info().
		Str("listen_addr", appConfig.ListenAddr).
		Str("geolocation_base_url", appConfig.GeolocationBaseURL).
		Bool("geolocation_token_set", appConfig.GeolocationToken != "").
		Str("record_store_driver", appConfig.RecordStoreDriver).
		Str("database_path", appConfig.DatabasePath).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Msg("Configuration loaded")

	return appLogger
}

// setupRecordStore opens the record store and makes sure ip_data exists
// Supports SQLite (default) and MySQL backends
func setupRecordStore(appConfig *config.Config, log *logger.Logger) store.RecordStore {
	var recordStore store.RecordStore

	switch appConfig.RecordStoreDriver {
	case "sqlite":
		sqliteStore, err := store.NewSQLiteStore(appConfig.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", appConfig.DatabasePath).Msg("Failed to open SQLite record store")
		}
		recordStore = sqliteStore

	case "mysql":
		mysqlStore, err := store.NewMySQLStore(appConfig.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open MySQL record store")
		}
		recordStore = mysqlStore

	default:
		log.Fatal().Str("driver", appConfig.RecordStoreDriver).Msg("Unknown record store driver")
	}

	if err := recordStore.EnsureSchema(); err != nil {
		recordStore.Close()
		log.Fatal().Err(err).Msg("Failed to create record table")
	}

	log.Info().Str("driver", appConfig.RecordStoreDriver).Msg("Record store initialized")
	return recordStore
}

// setupRateLimiter initializes the limiter guarding geolocation API calls
// Supports in-memory and Redis-based rate limiting
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	rateLimiter, err := limiter.NewLimiter(limiter.Config{
		Type:          appConfig.RateLimitType,
		Limit:         appConfig.RateLimit,
		Window:        time.Duration(appConfig.RateLimitWindow) * time.Second,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Int("limit", appConfig.RateLimit).
		Int("window_seconds", appConfig.RateLimitWindow).
		Msg("Rate limiter initialized")

	return rateLimiter
}

// startServer starts the HTTP server and blocks
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) {
	base := "http://" + appConfig.ListenAddr

	log.Info().
		Str("listen_addr", appConfig.ListenAddr).
		Str("lookup", base+"/v1/lookup?ip=<ip>").
		Str("records", base+"/v1/records").
		Str("health_check", base+"/health").
		Str("metrics", base+"/metrics").
		Msg("Server is running")

	log.Fatal().Err(http.ListenAndServe(appConfig.ListenAddr, appRouter)).Msg("Server failed")
}
