package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmaslov/media-scrape/app/jobs"
	"github.com/dmaslov/media-scrape/app/scrape"
)

type RunScrapeJobTask struct {
	Task
	JobConfig    *jobs.Config
	orchestrator OrchestratorInterface
}

func NewRunScrapeJobTask(jobName string, jobConfig *jobs.Config, orchestrator OrchestratorInterface) *RunScrapeJobTask {
	return &RunScrapeJobTask{
		Task:         NewTask(TaskTypeRunScrapeJob, jobName),
		JobConfig:    jobConfig,
		orchestrator: orchestrator,
	}
}

func (t *RunScrapeJobTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.JobConfig.Settings.Enabled {
		slog.Debug("Job disabled, skipping", "job", t.JobName)
		return nil
	}

	mediaMode, err := scrape.ParseMediaMode(t.JobConfig.Settings.MediaMode)
	if err != nil {
		return fmt.Errorf("failed to parse job media mode: %w", err)
	}

	summary, err := t.orchestrator.Run(ctx, scrape.Request{
		Topic:        t.JobConfig.Topic,
		SearchDates:  t.JobConfig.Settings.SearchDates,
		TargetCount:  t.JobConfig.Settings.TargetCount,
		Providers:    t.JobConfig.Settings.Providers,
		MediaMode:    mediaMode,
		RunID:        "job-" + t.JobName + "-" + t.ID,
		ExtractNotes: t.JobConfig.Settings.ExtractNotes,
		Filters:      t.JobConfig.Filters,
	})
	if err != nil {
		return fmt.Errorf("failed to run scrape job: %w", err)
	}

	slog.Info("Task completed",
		"type", "RunScrapeJob",
		"job", t.JobName,
		"duration", t.GetDuration(),
		"inserted", summary.InsertedCount,
		"skipped", summary.SkippedCount,
		"filtered", summary.FilteredCount)

	return nil
}
