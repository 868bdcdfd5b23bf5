package tasks

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmaslov/media-scrape/app/jobs"
	"github.com/dmaslov/media-scrape/app/scrape"
)

// MockOrchestrator implements a simple mock for testing
type MockOrchestrator struct {
	mu          sync.Mutex
	runRequests []scrape.Request
	shouldError bool
}

var _ OrchestratorInterface = (*MockOrchestrator)(nil)

func (m *MockOrchestrator) Run(ctx context.Context, req scrape.Request) (*scrape.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runRequests = append(m.runRequests, req)
	if m.shouldError {
		return nil, &testError{"mock run error"}
	}
	return &scrape.Summary{RunID: req.RunID, InsertedCount: 1}, nil
}

func (m *MockOrchestrator) RunCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runRequests)
}

// MockTask implements TaskInterface for testing worker execution
type MockTask struct {
	Task
	executed chan struct{}
	execErr  error
}

func NewMockTask() *MockTask {
	return &MockTask{
		Task:     NewTask(TaskTypeRunScrapeJob, "test-job"),
		executed: make(chan struct{}, 10),
	}
}

func (t *MockTask) Execute(ctx context.Context) error {
	t.executed <- struct{}{}
	return t.execErr
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

// newTestScheduler bypasses NewScheduler so tests do not depend on the
// process-wide configuration being loaded.
func newTestScheduler(configCache *jobs.ConfigCache, orchestrator OrchestratorInterface, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		configCache:  configCache,
		orchestrator: orchestrator,
		interval:     interval,
		workerCount:  workerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 300),
		nextRuns:     make(map[string]time.Time),
	}
}

func emptyConfigCache(t *testing.T) *jobs.ConfigCache {
	t.Helper()

	configCache := jobs.NewConfigCache(t.TempDir())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}
	return configCache
}

func TestEnqueueTask(t *testing.T) {
	scheduler := newTestScheduler(emptyConfigCache(t), &MockOrchestrator{}, time.Second, 1)

	task := NewMockTask()
	if err := scheduler.EnqueueTask(task); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if len(scheduler.taskQueue) != 1 {
		t.Errorf("Expected queue size 1, got %d", len(scheduler.taskQueue))
	}
}

func TestEnqueueTaskQueueFull(t *testing.T) {
	scheduler := newTestScheduler(emptyConfigCache(t), &MockOrchestrator{}, time.Second, 1)
	scheduler.taskQueue = make(chan TaskInterface, 1)

	if err := scheduler.EnqueueTask(NewMockTask()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := scheduler.EnqueueTask(NewMockTask()); err == nil {
		t.Error("Expected error when queue is full")
	}
}

func TestEnqueueTaskAfterStop(t *testing.T) {
	scheduler := newTestScheduler(emptyConfigCache(t), &MockOrchestrator{}, time.Second, 1)
	scheduler.cancel()

	scheduler.taskQueue = make(chan TaskInterface)
	if err := scheduler.EnqueueTask(NewMockTask()); err == nil {
		t.Error("Expected error after scheduler is stopped")
	}
}

func TestSchedulerExecutesQueuedTasks(t *testing.T) {
	scheduler := newTestScheduler(emptyConfigCache(t), &MockOrchestrator{}, time.Hour, 2)

	task := NewMockTask()
	if err := scheduler.EnqueueTask(task); err != nil {
		t.Fatal(err)
	}

	scheduler.Start()
	defer scheduler.Stop()

	select {
	case <-task.executed:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected task to be executed")
	}
}

func TestSchedulerEnqueuesDueJobs(t *testing.T) {
	tempDir := t.TempDir()

	content := `
topic: "vintage cars"

settings:
  enabled: true
  interval: 3600
  providers: [openverse]
`
	if err := os.WriteFile(filepath.Join(tempDir, "cars.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := jobs.NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	orchestrator := &MockOrchestrator{}
	scheduler := newTestScheduler(configCache, orchestrator, 50*time.Millisecond, 1)

	scheduler.Start()
	time.Sleep(300 * time.Millisecond)
	scheduler.Stop()

	// The job interval is one hour, so only the initial check should fire
	if orchestrator.RunCount() != 1 {
		t.Errorf("Expected 1 orchestrator run, got %d", orchestrator.RunCount())
	}

	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	req := orchestrator.runRequests[0]
	if req.Topic != "vintage cars" {
		t.Errorf("Expected topic 'vintage cars', got '%s'", req.Topic)
	}
	if len(req.Providers) != 1 || req.Providers[0] != "openverse" {
		t.Errorf("Expected providers [openverse], got %v", req.Providers)
	}
}

func TestIsDue(t *testing.T) {
	scheduler := newTestScheduler(emptyConfigCache(t), &MockOrchestrator{}, time.Second, 1)

	now := time.Now().UTC()

	if !scheduler.isDue("unknown", now) {
		t.Error("Expected unknown job to be due immediately")
	}

	scheduler.setNextRun("later", now.Add(time.Hour))
	if scheduler.isDue("later", now) {
		t.Error("Expected job with future next run to not be due")
	}

	scheduler.setNextRun("past", now.Add(-time.Minute))
	if !scheduler.isDue("past", now) {
		t.Error("Expected job with past next run to be due")
	}
}
