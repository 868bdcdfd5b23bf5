package jobs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dmaslov/media-scrape/app/scrape"
)

type ConfigCache struct {
	jobsDir string
	cache   map[string]*Config
	mu      sync.RWMutex
}

func NewConfigCache(jobsDir string) *ConfigCache {
	return &ConfigCache{
		jobsDir: jobsDir,
		cache:   make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.jobsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.jobsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		// Derive job name from filename (remove .yml extension)
		fileName := filepath.Base(file)
		jobName := fileName[:len(fileName)-4] // Remove .yml extension

		config, err := cc.LoadConfig(jobName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Job configuration loaded", "job", jobName, "enabled", config.Settings.Enabled, "interval", config.Settings.Interval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(jobName string) (*Config, error) {
	configFile := cc.getConfigFilePath(jobName)
	jobConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	// Set job name from parameter
	jobConfig.Name = jobName

	if err := cc.validateConfig(jobConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	// Store in cache
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[jobConfig.Name] = jobConfig

	return jobConfig, nil
}

func (cc *ConfigCache) GetConfig(jobName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	jobConfig, ok := cc.cache[jobName]
	if !ok {
		return nil, fmt.Errorf("job config with name '%s' not found", jobName)
	}
	return jobConfig, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var jobConfig Config
	if err := yaml.Unmarshal(data, &jobConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if jobConfig.Settings.Interval == 0 {
		jobConfig.Settings.Interval = 3600
	}
	if jobConfig.Settings.TargetCount == 0 {
		jobConfig.Settings.TargetCount = 10
	}
	if jobConfig.Settings.MediaMode == "" {
		jobConfig.Settings.MediaMode = string(scrape.MediaModeBoth)
	}

	return &jobConfig, nil
}

func (cc *ConfigCache) validateConfig(jobConfig *Config) error {
	if jobConfig == nil {
		return fmt.Errorf("jobConfig is nil")
	}

	if jobConfig.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if jobConfig.Topic == "" {
		return fmt.Errorf("job topic is required")
	}
	if len(jobConfig.Settings.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}

	if _, err := scrape.ParseMediaMode(jobConfig.Settings.MediaMode); err != nil {
		return fmt.Errorf("invalid media mode: %w", err)
	}

	nonNegativeFields := map[string]int{
		"interval":     jobConfig.Settings.Interval,
		"target count": jobConfig.Settings.TargetCount,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	validFields := map[string]bool{
		"title":    true,
		"provider": true,
		"license":  true,
		"notes":    true,
	}

	for i, filter := range jobConfig.Filters {
		if !validFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(jobName string) string {
	return filepath.Join(cc.jobsDir, jobName+".yml")
}
