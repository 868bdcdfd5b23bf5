package jobs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Create test YAML file
	content := `
topic: "wildlife photography"

settings:
  enabled: true
  interval: 1800
  target_count: 25
  media_mode: Images
  providers: [openverse, flickr]
  search_dates: "2015-2020"
  extract_notes: true

filters:
  - field: "title"
    includes:
      - "wildlife"
    excludes:
      - "advertisement"
`

	err := os.WriteFile(filepath.Join(tempDir, "wildlife.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// Load jobConfig
	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 jobConfig, got %d", configCache.GetConfigCount())
	}

	// Get the jobConfig by name
	jobConfig, err := configCache.GetConfig("wildlife")
	if err != nil {
		t.Fatal(err)
	}

	// Validate loaded values
	if jobConfig.Name != "wildlife" {
		t.Errorf("Expected name 'wildlife', got '%s'", jobConfig.Name)
	}
	if jobConfig.Topic != "wildlife photography" {
		t.Errorf("Expected topic 'wildlife photography', got '%s'", jobConfig.Topic)
	}
	if jobConfig.Settings.Interval != 1800 {
		t.Errorf("Expected interval 1800, got %d", jobConfig.Settings.Interval)
	}
	if jobConfig.Settings.TargetCount != 25 {
		t.Errorf("Expected target count 25, got %d", jobConfig.Settings.TargetCount)
	}
	if jobConfig.Settings.MediaMode != "Images" {
		t.Errorf("Expected media mode 'Images', got '%s'", jobConfig.Settings.MediaMode)
	}
	if len(jobConfig.Settings.Providers) != 2 {
		t.Errorf("Expected 2 providers, got %d", len(jobConfig.Settings.Providers))
	}
	if jobConfig.Settings.SearchDates != "2015-2020" {
		t.Errorf("Expected search dates '2015-2020', got '%s'", jobConfig.Settings.SearchDates)
	}
	if !jobConfig.Settings.ExtractNotes {
		t.Error("Expected extract_notes to be enabled")
	}
	if len(jobConfig.Filters) != 1 {
		t.Errorf("Expected 1 filter, got %d", len(jobConfig.Filters))
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Create minimal test YAML file
	content := `
topic: "steam trains"

settings:
  enabled: true
  providers: [openverse]
`

	err := os.WriteFile(filepath.Join(tempDir, "trains.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// Load jobConfig
	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	// Get the jobConfig by name
	jobConfig, err := configCache.GetConfig("trains")
	if err != nil {
		t.Fatal(err)
	}

	// Validate default values
	if jobConfig.Settings.Interval != 3600 {
		t.Errorf("Expected default interval 3600, got %d", jobConfig.Settings.Interval)
	}
	if jobConfig.Settings.TargetCount != 10 {
		t.Errorf("Expected default target count 10, got %d", jobConfig.Settings.TargetCount)
	}
	if jobConfig.Settings.MediaMode != "Both" {
		t.Errorf("Expected default media mode 'Both', got '%s'", jobConfig.Settings.MediaMode)
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name: "missing topic",
			content: `
settings:
  enabled: true
  providers: [openverse]
`,
			errPart: "topic is required",
		},
		{
			name: "missing providers",
			content: `
topic: "cats"
settings:
  enabled: true
`,
			errPart: "at least one provider",
		},
		{
			name: "invalid media mode",
			content: `
topic: "cats"
settings:
  enabled: true
  media_mode: Sounds
  providers: [openverse]
`,
			errPart: "invalid media mode",
		},
		{
			name: "invalid filter field",
			content: `
topic: "cats"
settings:
  enabled: true
  providers: [openverse]
filters:
  - field: "description"
    excludes: ["x"]
`,
			errPart: "invalid filter field",
		},
		{
			name: "empty filter",
			content: `
topic: "cats"
settings:
  enabled: true
  providers: [openverse]
filters:
  - field: "title"
`,
			errPart: "at least one include or exclude",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()

			err := os.WriteFile(filepath.Join(tempDir, "bad.yml"), []byte(tt.content), 0644)
			if err != nil {
				t.Fatal(err)
			}

			configCache := NewConfigCache(tempDir)
			err = configCache.Run()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Expected error containing '%s', got '%v'", tt.errPart, err)
			}
		})
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache("/nonexistent/path")

	// A missing jobs directory is not an error, the service just has no jobs
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected no error for missing directory, got %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheGetEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()

	enabled := `
topic: "cats"
settings:
  enabled: true
  providers: [openverse]
`
	disabled := `
topic: "dogs"
settings:
  enabled: false
  providers: [openverse]
`

	if err := os.WriteFile(filepath.Join(tempDir, "cats.yml"), []byte(enabled), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "dogs.yml"), []byte(disabled), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 2 {
		t.Errorf("Expected 2 configs, got %d", configCache.GetConfigCount())
	}

	enabledConfigs := configCache.GetEnabledConfigs()
	if len(enabledConfigs) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabledConfigs))
	}
	if _, ok := enabledConfigs["cats"]; !ok {
		t.Error("Expected 'cats' to be enabled")
	}
}

func TestConfigCacheGetMissingConfig(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())

	if _, err := configCache.GetConfig("nope"); err == nil {
		t.Error("Expected error for unknown job name")
	}
}
