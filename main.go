package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/civilnews/civic-engine/pkg/config"
	"github.com/civilnews/civic-engine/pkg/database"
	"github.com/civilnews/civic-engine/pkg/handlers"
	"github.com/civilnews/civic-engine/pkg/models"
	"github.com/civilnews/civic-engine/pkg/opendata"
	"github.com/civilnews/civic-engine/pkg/repositories"
	"github.com/civilnews/civic-engine/pkg/services"
	"github.com/civilnews/civic-engine/pkg/sources"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	mode := flag.String("mode", "serve", "serve or ingest")
	source := flag.String("source", "all", "source tag to ingest, or all")
	flag.Parse()

	cfg, err := config.Load(*configPath, Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migrate(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	neighbourhoods := repositories.NewNeighbourhoodRepository(db)
	events := repositories.NewEventRepository(db, neighbourhoods)

	switch *mode {
	case "serve":
		serve(cfg, events, neighbourhoods, logger)
	case "ingest":
		if err := ingest(ctx, cfg, events, *source, logger); err != nil {
			logger.Fatal("Ingestion failed", zap.Error(err))
		}
	default:
		logger.Fatal("Unknown mode", zap.String("mode", *mode))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func migrate(cfg *config.Config, logger *zap.Logger) error {
	db, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close() //nolint:errcheck
	return database.RunMigrations(db, cfg.MigrationsPath, logger)
}

func serve(cfg *config.Config, events repositories.EventRepository, neighbourhoods repositories.NeighbourhoodRepository, logger *zap.Logger) {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewEventsHandler(events, logger).RegisterRoutes(mux)
	handlers.NewNeighbourhoodsHandler(neighbourhoods, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting civic-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func ingest(ctx context.Context, cfg *config.Config, events repositories.EventRepository, source string, logger *zap.Logger) error {
	client := opendata.NewClient(cfg.OpenData.BaseURL,
		time.Duration(cfg.OpenData.TimeoutSeconds)*time.Second, logger)

	tags := []string{source}
	if source == "all" {
		tags = []string{
			models.SourceServiceRequests,
			models.SourceRoadClosures,
			models.SourceCityProjects,
			models.SourceCouncilVotes,
		}
	}

	for _, tag := range tags {
		transformer, err := sources.ForSource(tag)
		if err != nil {
			return err
		}
		dataset, orderBy := datasetFor(cfg, tag)
		fetcher := opendata.NewSourceFetcher(client, dataset, cfg.OpenData.FetchLimit, orderBy)
		pipeline := services.NewPipeline(transformer, fetcher, events, logger)
		if _, err := pipeline.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func datasetFor(cfg *config.Config, tag string) (dataset, orderBy string) {
	switch tag {
	case models.SourceServiceRequests:
		return cfg.OpenData.ServiceRequestsDataset, "service_request_open_timestamp desc"
	case models.SourceRoadClosures:
		return cfg.OpenData.RoadClosuresDataset, ""
	case models.SourceCityProjects:
		return cfg.OpenData.CityProjectsDataset, ""
	case models.SourceCouncilVotes:
		return cfg.OpenData.CouncilVotesDataset, "vote_start_date_time desc"
	default:
		return "", ""
	}
}
