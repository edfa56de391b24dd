package main

import (
	"errors"
	"os"

	"github.com/evyataryagoni/iptracker/internal/chart"
	"github.com/evyataryagoni/iptracker/internal/config"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/store"
	"github.com/pkg/browser"
)

// This tool renders every stored record as a bar chart and opens it
// Usage: go run ./cmd/chart
func main() {
	appConfig := config.Load()
	log := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	}).WithComponent("chart")

	recordStore, err := openRecordStore(appConfig)
	if err != nil {
		log.Fatal().Err(err).Str("driver", appConfig.RecordStoreDriver).Msg("Failed to open record store")
	}
	defer recordStore.Close()

	if err := recordStore.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to create record table")
	}

	records, err := recordStore.ListAll()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read records")
	}

	file, err := os.Create(appConfig.ChartOutput)
	if err != nil {
		log.Fatal().Err(err).Str("file", appConfig.ChartOutput).Msg("Failed to create chart file")
	}

	err = chart.RenderRecords(file, records)
	file.Close()
	if errors.Is(err, chart.ErrNoRecords) {
		os.Remove(appConfig.ChartOutput)
		log.Warn().Msg("No data to visualize.")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render chart")
	}

	log.Info().Int("records", len(records)).Str("file", appConfig.ChartOutput).Msg("Chart written")

	if appConfig.OpenBrowser {
		if err := browser.OpenFile(appConfig.ChartOutput); err != nil {
			log.Warn().Err(err).Msg("Failed to open chart in browser")
		}
	}
}

func openRecordStore(appConfig *config.Config) (store.RecordStore, error) {
	if appConfig.RecordStoreDriver == "mysql" {
		return store.NewMySQLStore(appConfig.MySQLDSN)
	}
	return store.NewSQLiteStore(appConfig.DatabasePath)
}
