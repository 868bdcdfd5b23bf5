package scrape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmaslov/media-scrape/app/provider"
)

// ErrInvalidRequest marks caller mistakes that are rejected before any
// network call is made.
var ErrInvalidRequest = errors.New("invalid scrape request")

type MediaMode string

const (
	MediaModeImages MediaMode = "Images"
	MediaModeVideos MediaMode = "Videos"
	MediaModeBoth   MediaMode = "Both"
)

// ParseMediaMode accepts the inbound mediaMode value case-insensitively.
// An empty value defaults to Both.
func ParseMediaMode(value string) (MediaMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "both":
		return MediaModeBoth, nil
	case "images", "image":
		return MediaModeImages, nil
	case "videos", "video":
		return MediaModeVideos, nil
	default:
		return "", fmt.Errorf("%w: unsupported media mode '%s'", ErrInvalidRequest, value)
	}
}

// Types returns the concrete media types covered by the mode, images
// before videos. This order is the within-provider tie-break for which
// duplicate survives dedup.
func (m MediaMode) Types() []provider.MediaType {
	switch m {
	case MediaModeImages:
		return []provider.MediaType{provider.MediaTypeImage}
	case MediaModeVideos:
		return []provider.MediaType{provider.MediaTypeVideo}
	default:
		return []provider.MediaType{provider.MediaTypeImage, provider.MediaTypeVideo}
	}
}

type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

type Request struct {
	Topic        string
	SearchDates  string
	TargetCount  int
	Providers    []string
	MediaMode    MediaMode
	RunID        string
	ExtractNotes bool
	Filters      []Filter
}

type InsertedItem struct {
	Title         string `json:"title"`
	Provider      string `json:"provider"`
	MediaType     string `json:"mediaType"`
	SourceURL     string `json:"sourceUrl"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	License       string `json:"license,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type Summary struct {
	RunID           string         `json:"runId"`
	RequestedTarget int            `json:"requestedTarget"`
	Providers       []string       `json:"providers"`
	MediaMode       MediaMode      `json:"mediaMode"`
	InsertedCount   int            `json:"insertedCount"`
	SkippedCount    int            `json:"skippedCount"`
	FilteredCount   int            `json:"filteredCount"`
	Inserted        []InsertedItem `json:"inserted"`
}

// Stats are process-lifetime run counters, exposed via the stats endpoint.
type Stats struct {
	Runs     int64 `json:"runs"`
	Inserted int64 `json:"inserted"`
	Skipped  int64 `json:"skipped"`
}
