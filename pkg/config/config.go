package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for civic-engine. Values come from
// config.yaml with environment variable overrides; environment always
// wins for fields that support both. Secrets (the database password)
// must only come from environment variables.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// MigrationsPath is the directory holding versioned SQL migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	Database DatabaseConfig `yaml:"database"`
	OpenData OpenDataConfig `yaml:"opendata"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"civic"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"civic_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// OpenDataConfig holds settings for the city open-data catalogue and the
// dataset each ingest source reads.
type OpenDataConfig struct {
	BaseURL        string `yaml:"base_url" env:"OPENDATA_BASE_URL" env-default:"https://opendata.vancouver.ca/api/explore/v2.1"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"OPENDATA_TIMEOUT_SECONDS" env-default:"60"`
	FetchLimit     int    `yaml:"fetch_limit" env:"OPENDATA_FETCH_LIMIT" env-default:"100"`

	ServiceRequestsDataset string `yaml:"service_requests_dataset" env:"OPENDATA_SERVICE_REQUESTS_DATASET" env-default:"3-1-1-service-requests"`
	RoadClosuresDataset    string `yaml:"road_closures_dataset" env:"OPENDATA_ROAD_CLOSURES_DATASET" env-default:"road-ahead-current-road-closures"`
	CityProjectsDataset    string `yaml:"city_projects_dataset" env:"OPENDATA_CITY_PROJECTS_DATASET" env-default:"city-projects-street"`
	CouncilVotesDataset    string `yaml:"council_votes_dataset" env:"OPENDATA_COUNCIL_VOTES_DATASET" env-default:"council-voting-records"`
	BoundariesDataset      string `yaml:"boundaries_dataset" env:"OPENDATA_BOUNDARIES_DATASET" env-default:"local-area-boundary"`
}

// Load reads configuration from path with environment variable
// overrides. The version parameter is injected at build time.
func Load(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
