package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmaslov/media-scrape/app/cfg"
	"github.com/dmaslov/media-scrape/app/jobs"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache  *jobs.ConfigCache
	orchestrator OrchestratorInterface
	interval     time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface

	// Next-run times are in-process only; dedup correctness never
	// depends on them, it is re-derived from the record store each run
	nextRunsMu sync.Mutex
	nextRuns   map[string]time.Time
}

func NewScheduler(configCache *jobs.ConfigCache, orchestrator OrchestratorInterface) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache:  configCache,
		orchestrator: orchestrator,
		interval:     time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:  cfg.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 300),
		nextRuns:     make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueDueTasks() {
	jobConfigs := s.configCache.GetEnabledConfigs()
	if len(jobConfigs) == 0 {
		slog.Debug("No enabled job configurations found")
		return
	}

	slog.Debug("Checking job configurations for due runs", "count", len(jobConfigs))

	now := time.Now().UTC()

	for _, jobConfig := range jobConfigs {
		if !s.isDue(jobConfig.Name, now) {
			slog.Debug("Job not due yet", "job", jobConfig.Name, "next_run_at", s.getNextRun(jobConfig.Name))
			continue
		}

		task := NewRunScrapeJobTask(jobConfig.Name, jobConfig, s.orchestrator)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue RunScrapeJobTask", "job", jobConfig.Name, "error", err)
			continue
		}

		s.setNextRun(jobConfig.Name, now.Add(time.Duration(jobConfig.Settings.Interval)*time.Second))
	}
}

func (s *Scheduler) isDue(jobName string, now time.Time) bool {
	s.nextRunsMu.Lock()
	defer s.nextRunsMu.Unlock()

	nextRun, ok := s.nextRuns[jobName]
	return !ok || !nextRun.After(now)
}

func (s *Scheduler) getNextRun(jobName string) time.Time {
	s.nextRunsMu.Lock()
	defer s.nextRunsMu.Unlock()
	return s.nextRuns[jobName]
}

func (s *Scheduler) setNextRun(jobName string, nextRun time.Time) {
	s.nextRunsMu.Lock()
	defer s.nextRunsMu.Unlock()
	s.nextRuns[jobName] = nextRun
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "job", task.GetJobName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
