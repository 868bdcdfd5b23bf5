package provider

import (
	"context"
)

type MediaType string

const (
	MediaTypeImage MediaType = "Image"
	MediaTypeVideo MediaType = "Video"
)

// Item is the common currency between provider adapters and the scrape
// orchestrator. SourceURL is the sole identity key for deduplication;
// adapters may emit items without one, the orchestrator drops them.
type Item struct {
	Title         string
	Provider      string
	MediaType     MediaType
	SourceURL     string
	ThumbnailURL  string
	PublishedDate string
	License       string
	Notes         string
}

type Query struct {
	Topic     string
	MediaType MediaType
	MaxItems  int
	Dates     DateRange
}

// ProviderInterface is implemented by each search source adapter. Search
// maps the query to the provider's endpoint and page-size limits and
// returns normalized items; transport errors and malformed payloads are
// returned as errors and degraded to zero items by the orchestrator.
// Adapters are stateless and safe to invoke concurrently.
type ProviderInterface interface {
	Name() string
	Supports(mediaType MediaType) bool
	Search(ctx context.Context, query Query) ([]Item, error)
}
