// seed-neighbourhoods loads the local-area boundary dataset into the
// neighbourhoods table. Run it once before the first ingestion so event
// records can resolve their area names to neighbourhood rows.
//
// Usage: go run ./scripts/seed-neighbourhoods [-config config.yaml] [-city Vancouver]
//
// Database connection: uses standard PG* environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/civilnews/civic-engine/pkg/config"
	"github.com/civilnews/civic-engine/pkg/database"
	"github.com/civilnews/civic-engine/pkg/opendata"
	"github.com/civilnews/civic-engine/pkg/repositories"
	"github.com/civilnews/civic-engine/pkg/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	cityName := flag.String("city", "Vancouver", "city name to seed under")
	flag.Parse()

	if err := run(*configPath, *cityName); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, cityName string) error {
	cfg, err := config.Load(configPath, "dev")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{URL: cfg.Database.ConnectionString()})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	client := opendata.NewClient(cfg.OpenData.BaseURL,
		time.Duration(cfg.OpenData.TimeoutSeconds)*time.Second, logger)
	fetcher := opendata.NewSourceFetcher(client, cfg.OpenData.BoundariesDataset, cfg.OpenData.FetchLimit, "")
	neighbourhoods := repositories.NewNeighbourhoodRepository(db)

	seeder := services.NewBoundarySeeder(fetcher, neighbourhoods, cityName, cfg.OpenData.BaseURL, logger)
	count, err := seeder.Seed(ctx)
	if err != nil {
		return err
	}

	logger.Info("done", zap.Int("neighbourhoods", count))
	return nil
}
