package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Inbound authentication
	ShortcutsKey string `long:"shortcuts-key" env:"SHORTCUTS_KEY" description:"Access key required on scrape requests (required)" required:"true"`

	// Airtable destination
	AirtableAPIKey    string `long:"airtable-api-key" env:"AIRTABLE_API_KEY" description:"Airtable API key (required)" required:"true"`
	AirtableBaseID    string `long:"airtable-base-id" env:"AIRTABLE_BASE_ID" description:"Airtable base ID (required)" required:"true"`
	AirtableTableName string `long:"airtable-table-name" env:"AIRTABLE_TABLE_NAME" description:"Airtable table name (required)" required:"true"`
	AirtableEndpoint  string `long:"airtable-endpoint" env:"AIRTABLE_ENDPOINT" default:"https://api.airtable.com/v0" description:"Airtable API endpoint"`

	// Provider credentials (optional)
	OpenverseAPIKey string `long:"openverse-api-key" env:"OPENVERSE_API_KEY" description:"Openverse API key for higher quotas (optional)"`
	YouTubeAPIKey   string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key; YouTube provider is disabled without it"`

	// Application configuration
	JobsDir           string `long:"jobs-dir" env:"JOBS_DIR" default:"./jobs" description:"Directory containing scheduled scrape job files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for scheduled scrape jobs"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`

	// Outbound call timeouts (seconds, per call class)
	SearchTimeout     int `long:"search-timeout" env:"SEARCH_TIMEOUT" default:"20" description:"Provider search timeout in seconds"`
	StoreReadTimeout  int `long:"store-read-timeout" env:"STORE_READ_TIMEOUT" default:"10" description:"Record store read timeout in seconds"`
	StoreWriteTimeout int `long:"store-write-timeout" env:"STORE_WRITE_TIMEOUT" default:"15" description:"Record store write timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Media Scrape/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ShortcutsKey:      raw.ShortcutsKey,
		AirtableAPIKey:    raw.AirtableAPIKey,
		AirtableBaseID:    raw.AirtableBaseID,
		AirtableTableName: raw.AirtableTableName,
		AirtableEndpoint:  raw.AirtableEndpoint,
		OpenverseAPIKey:   raw.OpenverseAPIKey,
		YouTubeAPIKey:     raw.YouTubeAPIKey,
		JobsDir:           raw.JobsDir,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		SearchTimeout:     raw.SearchTimeout,
		StoreReadTimeout:  raw.StoreReadTimeout,
		StoreWriteTimeout: raw.StoreWriteTimeout,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
