package config

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"github.com/ytget/m3u8-downloader/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadSettings   = "m3u8-downloader-settings"
	KeyDownloadDir        = "download_directory"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
	KeyServerURL          = "server_url"
)

// Default values
const (
	DefaultMaxThreads         = 10
	DefaultMaxConcurrentTasks = 5
	DefaultLanguage           = "system"
	DefaultAutoRevealComplete = true
)

// Accepted ranges
const (
	MinMaxThreads         = 1
	MaxMaxThreads         = 20
	MinMaxConcurrentTasks = 1
	MaxMaxConcurrentTasks = 10
)

// ConcurrencyUpdateTimeout bounds the scheduler notification sent by Save
const ConcurrencyUpdateTimeout = 10 * time.Second

// Config is the persisted download configuration. MaxThreads applies to newly
// created tasks; MaxConcurrentTasks is the remote scheduler's budget.
type Config struct {
	MaxThreads         int `json:"maxThreads"`
	MaxConcurrentTasks int `json:"maxConcurrentTasks"`
}

// DefaultConfig returns the configuration used when nothing valid is stored
func DefaultConfig() Config {
	return Config{
		MaxThreads:         DefaultMaxThreads,
		MaxConcurrentTasks: DefaultMaxConcurrentTasks,
	}
}

// Clamp forces both fields into their accepted ranges
func (c Config) Clamp() Config {
	c.MaxThreads = clampInt(c.MaxThreads, MinMaxThreads, MaxMaxThreads)
	c.MaxConcurrentTasks = clampInt(c.MaxConcurrentTasks, MinMaxConcurrentTasks, MaxMaxConcurrentTasks)
	return c
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ConcurrencyUpdater informs the remote scheduler of a new concurrency budget
type ConcurrencyUpdater interface {
	UpdateConcurrency(ctx context.Context, maxTasks int) error
}

// Settings manages application configuration
type Settings struct {
	app fyne.App

	mu      sync.Mutex
	updater ConcurrencyUpdater
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// SetConcurrencyUpdater sets the collaborator notified on every Save
func (s *Settings) SetConcurrencyUpdater(updater ConcurrencyUpdater) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updater = updater
}

// Load returns the stored configuration, falling back to defaults for a
// missing or malformed value. Stored values outside their ranges are clamped.
func (s *Settings) Load() Config {
	raw := strings.TrimSpace(s.app.Preferences().String(KeyDownloadSettings))
	if raw == "" {
		return DefaultConfig()
	}

	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		log.Printf("settings: malformed %s, using defaults: %v", KeyDownloadSettings, err)
		return DefaultConfig()
	}

	if cfg.MaxThreads == 0 {
		cfg.MaxThreads = DefaultMaxThreads
	}
	if cfg.MaxConcurrentTasks == 0 {
		cfg.MaxConcurrentTasks = DefaultMaxConcurrentTasks
	}
	return cfg.Clamp()
}

// Save clamps and persists cfg, then tells the remote scheduler about the new
// concurrency budget. The notification is fire-and-forget: its failure is
// logged and the local value stays saved.
func (s *Settings) Save(cfg Config) Config {
	cfg = cfg.Clamp()

	data, err := json.Marshal(cfg)
	if err != nil {
		// Config only holds ints; Marshal cannot fail here.
		log.Printf("settings: encode failed: %v", err)
		return cfg
	}
	s.app.Preferences().SetString(KeyDownloadSettings, string(data))

	s.mu.Lock()
	updater := s.updater
	s.mu.Unlock()

	if updater != nil {
		go func(maxTasks int) {
			ctx, cancel := context.WithTimeout(context.Background(), ConcurrencyUpdateTimeout)
			defer cancel()
			if err := updater.UpdateConcurrency(ctx, maxTasks); err != nil {
				log.Printf("settings: scheduler concurrency update to %d failed: %v", maxTasks, err)
			}
		}(cfg.MaxConcurrentTasks)
	}

	return cfg
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "/tmp/downloads"
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetServerURL returns the service base URL, or fallback when none is stored
func (s *Settings) GetServerURL(fallback string) string {
	return s.app.Preferences().StringWithFallback(KeyServerURL, fallback)
}

// SetServerURL stores the service base URL
func (s *Settings) SetServerURL(url string) {
	s.app.Preferences().SetString(KeyServerURL, strings.TrimRight(strings.TrimSpace(url), "/"))
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetAutoRevealOnComplete returns whether to reveal retrieved files
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to reveal retrieved files
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"zh":     "中文",
	}
}
