package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

const DefaultRuntimeSettingsFile = "/app/data/settings.json"

// RuntimeSettings is the subset of configuration adjustable while the
// service runs. Changes are persisted to a JSON file and survive restarts.
type RuntimeSettings struct {
	CleanupCron    string `json:"cleanup_cron"`
	RetentionHours int    `json:"retention_hours"`
	FillLanguage   string `json:"fill_language"`
}

func RuntimeSettingsFilePath() string {
	return getEnvString("SETTINGS_FILE", DefaultRuntimeSettingsFile)
}

func (s RuntimeSettings) Validate() error {
	if strings.TrimSpace(s.CleanupCron) == "" {
		return fmt.Errorf("cleanup_cron is required")
	}
	if _, err := cron.ParseStandard(s.CleanupCron); err != nil {
		return fmt.Errorf("invalid cleanup_cron: %w", err)
	}
	if s.RetentionHours <= 0 {
		return fmt.Errorf("retention_hours must be positive")
	}
	if strings.TrimSpace(s.FillLanguage) == "" {
		return fmt.Errorf("fill_language is required")
	}
	if _, err := language.Parse(s.FillLanguage); err != nil {
		return fmt.Errorf("invalid fill_language: %w", err)
	}
	return nil
}

func (c *Config) RuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		CleanupCron:    c.Cleanup.CronExpr,
		RetentionHours: c.Cleanup.RetentionHours,
		FillLanguage:   c.Fill.Language.String(),
	}
}

func WithRuntimeSettings(settings RuntimeSettings) Option {
	return func(c *Config) {
		if strings.TrimSpace(settings.CleanupCron) != "" {
			c.Cleanup.CronExpr = settings.CleanupCron
		}
		if settings.RetentionHours > 0 {
			c.Cleanup.RetentionHours = settings.RetentionHours
		}
		if tag, err := language.Parse(settings.FillLanguage); err == nil {
			c.Fill.Language = tag
		}
	}
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

type RuntimeSettingsStore struct {
	path string

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:    path,
		current: initial,
	}, nil
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	if err := next.Validate(); err != nil {
		return RuntimeSettings{}, err
	}
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}
