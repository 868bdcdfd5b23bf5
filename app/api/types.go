package api

import (
	"context"
	"time"

	"github.com/dmaslov/media-scrape/app/jobs"
	"github.com/dmaslov/media-scrape/app/provider"
	"github.com/dmaslov/media-scrape/app/scrape"
)

type OrchestratorInterface interface {
	Run(ctx context.Context, req scrape.Request) (*scrape.Summary, error)
	GetStats() scrape.Stats
}

var _ OrchestratorInterface = (*scrape.Orchestrator)(nil)

type Handler struct {
	orchestrator OrchestratorInterface
	registry     *provider.Registry
	configCache  *jobs.ConfigCache
	startedAt    time.Time
}
