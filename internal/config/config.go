package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the pipeline and the HTTP server need. Values come
// from environment variables (optionally via a .env file); every field has a
// working default except MONGO_URI-less runs, which fail at connect time.
type Config struct {
	Mongo   MongoConfig
	Riot    RiotConfig
	Fetcher FetcherConfig
	Server  ServerConfig

	// DataDir is the root for metric artifacts and the captured key file.
	DataDir string

	// Roster file paths.
	RosterPath       string
	SeasonRosterPath string

	// Pipeline defaults, overridable per run from the CLI.
	MinFriends int
	QueueID    int

	// SeasonStart bounds season-pool metric windows (UTC date).
	SeasonStart string

	LogLevel string
}

// MongoConfig is the document store connection configuration.
type MongoConfig struct {
	URI      string
	Database string

	ConnectTimeout time.Duration
}

// RiotConfig configures the vendor API client.
type RiotConfig struct {
	// RegionalRouting is the regional host prefix (europe, americas, asia).
	RegionalRouting string

	// APIKey is the environment-provided default key; a captured key file
	// under DataDir takes priority when present and fresh.
	APIKey string

	RequestTimeout time.Duration
}

// FetcherConfig bounds the match fetcher.
type FetcherConfig struct {
	// Workers is the cross-puuid parallelism. Kept small so the vendor
	// rate limiter, not the worker pool, is the throughput bound.
	Workers int

	// MatchlistPageSize is the vendor page size (max 100).
	MatchlistPageSize int

	// MaxMatchesPerPUUID caps how deep the matchlist pagination goes.
	MaxMatchesPerPUUID int

	// RetryBudget is the number of attempts for transient vendor errors.
	RetryBudget int
}

// ServerConfig configures the read-only artifact API.
type ServerConfig struct {
	Port int
	Mode string // gin mode: debug/release/test
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored but optional.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env may not exist

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "lolmetrics")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("REGIONAL_ROUTING", "europe")
	v.SetDefault("RIOT_API_KEY", "")
	v.SetDefault("RIOT_REQUEST_TIMEOUT", "30s")
	v.SetDefault("FETCH_WORKERS", 3)
	v.SetDefault("FETCH_PAGE_SIZE", 100)
	v.SetDefault("FETCH_MAX_MATCHES", 500)
	v.SetDefault("FETCH_RETRY_BUDGET", 4)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("ROSTER_FILE", "mapa_cuentas.json")
	v.SetDefault("SEASON_ROSTER_FILE", "mapa_cuentas_season.json")
	v.SetDefault("MIN_FRIENDS_IN_MATCH", 5)
	v.SetDefault("QUEUE_FLEX", 440)
	v.SetDefault("SEASON_START", "2026-01-08")
	v.SetDefault("SERVER_PORT", 8731)
	v.SetDefault("SERVER_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Mongo: MongoConfig{
			URI:            v.GetString("MONGO_URI"),
			Database:       v.GetString("MONGO_DB"),
			ConnectTimeout: v.GetDuration("MONGO_CONNECT_TIMEOUT"),
		},
		Riot: RiotConfig{
			RegionalRouting: v.GetString("REGIONAL_ROUTING"),
			APIKey:          v.GetString("RIOT_API_KEY"),
			RequestTimeout:  v.GetDuration("RIOT_REQUEST_TIMEOUT"),
		},
		Fetcher: FetcherConfig{
			Workers:            v.GetInt("FETCH_WORKERS"),
			MatchlistPageSize:  v.GetInt("FETCH_PAGE_SIZE"),
			MaxMatchesPerPUUID: v.GetInt("FETCH_MAX_MATCHES"),
			RetryBudget:        v.GetInt("FETCH_RETRY_BUDGET"),
		},
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Mode: v.GetString("SERVER_MODE"),
		},
		DataDir:          v.GetString("DATA_DIR"),
		RosterPath:       v.GetString("ROSTER_FILE"),
		SeasonRosterPath: v.GetString("SEASON_ROSTER_FILE"),
		MinFriends:       v.GetInt("MIN_FRIENDS_IN_MATCH"),
		QueueID:          v.GetInt("QUEUE_FLEX"),
		SeasonStart:      v.GetString("SEASON_START"),
		LogLevel:         v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Fetcher.Workers < 1 {
		return fmt.Errorf("FETCH_WORKERS must be >= 1, got %d", c.Fetcher.Workers)
	}
	if c.Fetcher.MatchlistPageSize < 1 || c.Fetcher.MatchlistPageSize > 100 {
		return fmt.Errorf("FETCH_PAGE_SIZE must be in [1,100], got %d", c.Fetcher.MatchlistPageSize)
	}
	if c.MinFriends < 1 {
		return fmt.Errorf("MIN_FRIENDS_IN_MATCH must be >= 1, got %d", c.MinFriends)
	}
	if _, err := time.Parse("2006-01-02", c.SeasonStart); err != nil {
		return fmt.Errorf("SEASON_START must be YYYY-MM-DD: %w", err)
	}
	return nil
}
