package jobs

import (
	"github.com/dmaslov/media-scrape/app/scrape"
)

// Configuration types for scheduled scrape jobs

type Config struct {
	Name     string          // Derived from filename (without .yml extension)
	Topic    string          `yaml:"topic"`
	Settings ConfigSettings  `yaml:"settings"`
	Filters  []scrape.Filter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled      bool     `yaml:"enabled"`
	Interval     int      `yaml:"interval"` // seconds between runs
	TargetCount  int      `yaml:"target_count"`
	MediaMode    string   `yaml:"media_mode"`
	Providers    []string `yaml:"providers"`
	SearchDates  string   `yaml:"search_dates"`
	ExtractNotes bool     `yaml:"extract_notes"`
}
