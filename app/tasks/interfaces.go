package tasks

import (
	"context"

	"github.com/dmaslov/media-scrape/app/scrape"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background scrape job processing.
// Example usage:
//
//	scheduler := NewScheduler(configCache, orchestrator)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRunScrapeJobTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// OrchestratorInterface is the slice of the scrape orchestrator the tasks
// package needs.
type OrchestratorInterface interface {
	Run(ctx context.Context, req scrape.Request) (*scrape.Summary, error)
}

var _ OrchestratorInterface = (*scrape.Orchestrator)(nil)
