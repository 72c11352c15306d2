package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
)

type recordingUpdater struct {
	calls chan int
	err   error
}

func newRecordingUpdater(err error) *recordingUpdater {
	return &recordingUpdater{calls: make(chan int, 4), err: err}
}

func (r *recordingUpdater) UpdateConcurrency(ctx context.Context, maxTasks int) error {
	r.calls <- maxTasks
	return r.err
}

func (r *recordingUpdater) wait(t *testing.T) int {
	t.Helper()
	select {
	case v := <-r.calls:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("Expected concurrency update call, got none")
		return 0
	}
}

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.app != app {
		t.Error("Settings app reference should match provided app")
	}
}

func TestLoad_Defaults(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	cfg := settings.Load()
	if cfg != DefaultConfig() {
		t.Errorf("Expected defaults %+v, got %+v", DefaultConfig(), cfg)
	}
}

func TestLoad_StoredValues(t *testing.T) {
	tests := []struct {
		stored   string
		expected Config
	}{
		{`{"maxThreads":12,"maxConcurrentTasks":3}`, Config{12, 3}},
		{`{"maxThreads":99,"maxConcurrentTasks":-4}`, Config{20, 1}},
		{`{"maxThreads":7}`, Config{7, DefaultMaxConcurrentTasks}},
		{`{}`, DefaultConfig()},
		{`not json`, DefaultConfig()},
		{`{"maxThreads":"many"}`, DefaultConfig()},
	}

	for _, tt := range tests {
		app := test.NewApp()
		app.Preferences().SetString(KeyDownloadSettings, tt.stored)

		result := NewSettings(app).Load()
		if result != tt.expected {
			t.Errorf("Load() with %s = %+v, expected %+v", tt.stored, result, tt.expected)
		}
	}
}

func TestSave_ClampsAndPersists(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	stored := settings.Save(Config{MaxThreads: 99, MaxConcurrentTasks: 0})
	if stored != (Config{MaxThreads: 20, MaxConcurrentTasks: 1}) {
		t.Errorf("Expected stored {20 1}, got %+v", stored)
	}

	if loaded := settings.Load(); loaded != stored {
		t.Errorf("Expected Load() to return %+v, got %+v", stored, loaded)
	}
}

func TestSave_NotifiesScheduler(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)
	updater := newRecordingUpdater(nil)
	settings.SetConcurrencyUpdater(updater)

	settings.Save(Config{MaxThreads: 4, MaxConcurrentTasks: 42})

	if got := updater.wait(t); got != MaxMaxConcurrentTasks {
		t.Errorf("Expected scheduler update with %d, got %d", MaxMaxConcurrentTasks, got)
	}
}

func TestSave_SchedulerFailureKeepsValue(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)
	updater := newRecordingUpdater(errors.New("unreachable"))
	settings.SetConcurrencyUpdater(updater)

	settings.Save(Config{MaxThreads: 6, MaxConcurrentTasks: 2})
	updater.wait(t)

	if loaded := settings.Load(); loaded != (Config{MaxThreads: 6, MaxConcurrentTasks: 2}) {
		t.Errorf("Expected saved value to survive scheduler failure, got %+v", loaded)
	}
}

func TestDownloadDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	dir := settings.GetDownloadDirectory()
	if dir == "" {
		t.Error("Download directory should not be empty")
	}

	// Test setting custom value
	customDir := "/custom/downloads"
	settings.SetDownloadDirectory(customDir)

	retrievedDir := settings.GetDownloadDirectory()
	if retrievedDir != customDir {
		t.Errorf("Expected download directory %s, got %s", customDir, retrievedDir)
	}
}

func TestServerURL(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if got := settings.GetServerURL(DefaultAPIURL); got != DefaultAPIURL {
		t.Errorf("Expected fallback %s, got %s", DefaultAPIURL, got)
	}

	settings.SetServerURL(" http://nas.local:8000/api/ ")
	if got := settings.GetServerURL(DefaultAPIURL); got != "http://nas.local:8000/api" {
		t.Errorf("Expected trimmed server URL, got %s", got)
	}
}

func TestAutoRevealOnComplete(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if !settings.GetAutoRevealOnComplete() {
		t.Error("Auto reveal should default to true")
	}

	settings.SetAutoRevealOnComplete(false)
	if settings.GetAutoRevealOnComplete() {
		t.Error("Auto reveal should be false after setting it")
	}
}

func TestLanguage(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	lang := settings.GetLanguage()
	if lang != DefaultLanguage {
		t.Errorf("Expected default language %s, got %s", DefaultLanguage, lang)
	}

	// Test setting custom value
	settings.SetLanguage("en")

	retrievedLang := settings.GetLanguage()
	if retrievedLang != "en" {
		t.Errorf("Expected language 'en', got %s", retrievedLang)
	}
}

func TestGetLanguageOptions(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	options := settings.GetLanguageOptions()

	expectedLangs := []string{"system", "en", "zh"}
	for _, lang := range expectedLangs {
		if _, exists := options[lang]; !exists {
			t.Errorf("Expected language option '%s' to exist", lang)
		}
	}

	if len(options) != len(expectedLangs) {
		t.Errorf("Expected %d language options, got %d", len(expectedLangs), len(options))
	}
}
