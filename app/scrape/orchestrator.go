package scrape

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmaslov/media-scrape/app/airtable"
	"github.com/dmaslov/media-scrape/app/provider"
	"github.com/dmaslov/media-scrape/app/urlnorm"
)

const insertedPreviewLimit = 25

// RecordStore is the slice of the record store client the orchestrator
// needs: existence lookup by canonical source URL and chunked creation.
type RecordStore interface {
	Exists(ctx context.Context, sourceURL string) (bool, error)
	BatchCreate(ctx context.Context, records []airtable.Fields) ([]airtable.Record, error)
}

var _ RecordStore = (*airtable.Client)(nil)

// Orchestrator drives a scrape run through its states: collect candidates
// from the requested providers concurrently, dedupe them in memory and
// against the record store, persist the survivors, and summarize.
type Orchestrator struct {
	registry *provider.Registry
	store    RecordStore
	filterer *Filterer
	enricher *NotesEnricher

	mu       sync.Mutex
	runs     int64
	inserted int64
	skipped  int64
}

func NewOrchestrator(registry *provider.Registry, store RecordStore, enricher *NotesEnricher) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		store:    store,
		filterer: NewFilterer(),
		enricher: enricher,
	}
}

func (o *Orchestrator) Run(ctx context.Context, req Request) (*Summary, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}

	runID := cmp.Or(req.RunID, uuid.NewString())

	slog.Info("Run started", "run_id", runID, "topic", req.Topic,
		"providers", strings.Join(req.Providers, ","), "media_mode", string(req.MediaMode),
		"target_count", req.TargetCount)

	candidates := o.collect(ctx, req)

	kept, filteredCount := o.filterer.Run(candidates, req.Filters)

	accepted, skippedCount := o.dedupe(ctx, kept, req.TargetCount)

	if req.ExtractNotes {
		o.enrichNotes(ctx, accepted)
	}

	created, skippedWrites := o.persist(ctx, accepted)

	summary := &Summary{
		RunID:           runID,
		RequestedTarget: req.TargetCount,
		Providers:       req.Providers,
		MediaMode:       req.MediaMode,
		InsertedCount:   len(created),
		SkippedCount:    skippedCount + skippedWrites,
		FilteredCount:   filteredCount,
		Inserted:        insertedPreview(created),
	}

	o.recordRun(summary)

	slog.Info("Run completed", "run_id", runID, "candidates", len(candidates),
		"inserted", summary.InsertedCount, "skipped", summary.SkippedCount,
		"filtered", summary.FilteredCount)

	return summary, nil
}

func (o *Orchestrator) validate(req Request) error {
	if strings.TrimSpace(req.Topic) == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if req.TargetCount < 1 {
		return fmt.Errorf("%w: targetCount must be at least 1", ErrInvalidRequest)
	}
	if len(req.Providers) == 0 {
		return fmt.Errorf("%w: at least one provider is required", ErrInvalidRequest)
	}
	switch req.MediaMode {
	case MediaModeImages, MediaModeVideos, MediaModeBoth:
	default:
		return fmt.Errorf("%w: unsupported media mode '%s'", ErrInvalidRequest, req.MediaMode)
	}
	for _, name := range req.Providers {
		if _, err := o.registry.Get(name); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidRequest, err)
		}
	}
	return nil
}

type invocation struct {
	provider  provider.ProviderInterface
	mediaType provider.MediaType
}

// collect fans out to every matching (provider, media type) pair
// concurrently and concatenates the results in request order. A provider
// failure contributes zero items and never aborts the run.
func (o *Orchestrator) collect(ctx context.Context, req Request) []provider.Item {
	dates := provider.ParseSearchDates(req.SearchDates)

	var invocations []invocation
	for _, name := range req.Providers {
		p, err := o.registry.Get(name)
		if err != nil {
			continue // validated earlier
		}
		for _, mediaType := range req.MediaMode.Types() {
			if p.Supports(mediaType) {
				invocations = append(invocations, invocation{provider: p, mediaType: mediaType})
			}
		}
	}

	results := make([][]provider.Item, len(invocations))

	var g errgroup.Group
	for i, inv := range invocations {
		g.Go(func() error {
			items, err := inv.provider.Search(ctx, provider.Query{
				Topic:     req.Topic,
				MediaType: inv.mediaType,
				MaxItems:  req.TargetCount,
				Dates:     dates,
			})
			if err != nil {
				slog.Warn("Provider search failed", "provider", inv.provider.Name(),
					"media_type", string(inv.mediaType), "error", err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	g.Wait()

	var candidates []provider.Item
	for _, items := range results {
		candidates = append(candidates, items...)
	}

	return candidates
}

// dedupe drops candidates without a source URL, normalizes the rest,
// removes in-batch duplicates by first occurrence, and checks the record
// store for each survivor in order until targetCount are accepted.
// A failed existence lookup counts as "not found" so new data is not
// silently lost.
func (o *Orchestrator) dedupe(ctx context.Context, candidates []provider.Item, targetCount int) ([]provider.Item, int) {
	seen := make(map[string]bool)
	var unique []provider.Item

	for _, item := range candidates {
		if item.SourceURL == "" {
			continue
		}

		item.SourceURL = urlnorm.Normalize(item.SourceURL)
		if seen[item.SourceURL] {
			continue
		}
		seen[item.SourceURL] = true
		unique = append(unique, item)
	}

	var accepted []provider.Item
	skipped := 0

	for _, item := range unique {
		if len(accepted) >= targetCount {
			break
		}

		exists, err := o.store.Exists(ctx, item.SourceURL)
		if err != nil {
			slog.Warn("Existence lookup failed, treating as not found", "url", item.SourceURL, "error", err)
			exists = false
		}

		if exists {
			skipped++
			continue
		}

		accepted = append(accepted, item)
	}

	return accepted, skipped
}

func (o *Orchestrator) enrichNotes(ctx context.Context, items []provider.Item) {
	if o.enricher == nil {
		return
	}

	for i := range items {
		if items[i].Notes != "" {
			continue
		}

		excerpt, err := o.enricher.Run(ctx, items[i].SourceURL)
		if err != nil {
			slog.Debug("Notes enrichment failed", "url", items[i].SourceURL, "error", err)
			continue
		}
		items[i].Notes = excerpt
	}
}

// persist maps the accepted items to store records and writes them in one
// chunked batch. Write failures reduce the inserted count and surface as
// skips, not as a run-wide error.
func (o *Orchestrator) persist(ctx context.Context, accepted []provider.Item) ([]airtable.Record, int) {
	if len(accepted) == 0 {
		return nil, 0
	}

	records := make([]airtable.Fields, 0, len(accepted))
	for _, item := range accepted {
		records = append(records, toFields(item))
	}

	created, err := o.store.BatchCreate(ctx, records)
	if err != nil {
		slog.Error("Record store write failed for some items", "accepted", len(accepted),
			"created", len(created), "error", err)
	}

	return created, len(accepted) - len(created)
}

// toFields is the single total mapping from a normalized item to the
// destination's fixed column names.
func toFields(item provider.Item) airtable.Fields {
	return airtable.Fields{
		Title:         item.Title,
		Provider:      item.Provider,
		MediaType:     string(item.MediaType),
		SourceURL:     item.SourceURL,
		ThumbnailURL:  item.ThumbnailURL,
		PublishedDate: item.PublishedDate,
		Copyright:     item.License,
		Notes:         item.Notes,
	}
}

func insertedPreview(created []airtable.Record) []InsertedItem {
	preview := make([]InsertedItem, 0, min(len(created), insertedPreviewLimit))
	for _, record := range created {
		if len(preview) >= insertedPreviewLimit {
			break
		}
		preview = append(preview, InsertedItem{
			Title:         record.Fields.Title,
			Provider:      record.Fields.Provider,
			MediaType:     record.Fields.MediaType,
			SourceURL:     record.Fields.SourceURL,
			ThumbnailURL:  record.Fields.ThumbnailURL,
			PublishedDate: record.Fields.PublishedDate,
			License:       record.Fields.Copyright,
			Notes:         record.Fields.Notes,
		})
	}
	return preview
}

func (o *Orchestrator) recordRun(summary *Summary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs++
	o.inserted += int64(summary.InsertedCount)
	o.skipped += int64(summary.SkippedCount)
}

func (o *Orchestrator) GetStats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Stats{Runs: o.runs, Inserted: o.inserted, Skipped: o.skipped}
}
