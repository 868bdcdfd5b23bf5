package scrape

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmaslov/media-scrape/app/provider"
)

// Filterer applies per-run include/exclude term filters to candidate
// items before deduplication. Scheduled jobs configure filters; the HTTP
// API does not expose them.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run returns the items that pass all filters and the number dropped.
func (f *Filterer) Run(items []provider.Item, filters []Filter) ([]provider.Item, int) {
	if len(filters) == 0 {
		return items, 0
	}

	kept := make([]provider.Item, 0, len(items))
	dropped := 0

	for _, item := range items {
		if excluded, reason := f.applyFilters(item, filters); excluded {
			slog.Debug("Candidate filtered", "title", item.Title, "reason", reason)
			dropped++
			continue
		}
		kept = append(kept, item)
	}

	return kept, dropped
}

func (f *Filterer) applyFilters(item provider.Item, filters []Filter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item provider.Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "provider":
		return item.Provider
	case "license":
		return item.License
	case "notes":
		return item.Notes
	default:
		return ""
	}
}
