package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Runtime defaults
const (
	DefaultAPIURL             = "http://localhost:8000/api"
	DefaultPollInterval       = 3 * time.Second
	DefaultSystemInfoInterval = 10 * time.Second
	DefaultCommandTimeout     = 10 * time.Second
	DefaultStaleAfter         = 3
	DefaultPurgeConcurrency   = 4
	DefaultPurgeRate          = 5.0
	DefaultPurgeBurst         = 2
)

// Runtime holds process-level options read from the environment. User-facing
// values live in Settings instead.
type Runtime struct {
	APIURL             string
	PollInterval       time.Duration
	SystemInfoInterval time.Duration
	CommandTimeout     time.Duration
	StaleAfter         int
	PurgeConcurrency   int
	PurgeRate          float64
	PurgeBurst         int
	DataDir            string
}

// LoadRuntime reads M3U8_* environment variables, falling back to defaults for
// missing or unparseable values.
func LoadRuntime() Runtime {
	rt := Runtime{
		APIURL:             strings.TrimRight(getEnv("M3U8_API_URL", DefaultAPIURL), "/"),
		PollInterval:       getEnvDuration("M3U8_POLL_INTERVAL", DefaultPollInterval),
		SystemInfoInterval: getEnvDuration("M3U8_SYSINFO_INTERVAL", DefaultSystemInfoInterval),
		CommandTimeout:     getEnvDuration("M3U8_COMMAND_TIMEOUT", DefaultCommandTimeout),
		StaleAfter:         getEnvInt("M3U8_STALE_AFTER", DefaultStaleAfter),
		PurgeConcurrency:   getEnvInt("M3U8_PURGE_CONCURRENCY", DefaultPurgeConcurrency),
		PurgeRate:          getEnvFloat("M3U8_PURGE_RATE", DefaultPurgeRate),
		PurgeBurst:         getEnvInt("M3U8_PURGE_BURST", DefaultPurgeBurst),
		DataDir:            getEnv("M3U8_DATA_DIR", defaultDataDir()),
	}

	if rt.PollInterval <= 0 {
		rt.PollInterval = DefaultPollInterval
	}
	if rt.SystemInfoInterval <= 0 {
		rt.SystemInfoInterval = DefaultSystemInfoInterval
	}
	if rt.CommandTimeout <= 0 {
		rt.CommandTimeout = DefaultCommandTimeout
	}
	if rt.StaleAfter < 1 {
		rt.StaleAfter = DefaultStaleAfter
	}
	if rt.PurgeConcurrency < 1 {
		rt.PurgeConcurrency = DefaultPurgeConcurrency
	}
	if rt.PurgeRate <= 0 {
		rt.PurgeRate = DefaultPurgeRate
	}
	if rt.PurgeBurst < 1 {
		rt.PurgeBurst = DefaultPurgeBurst
	}
	return rt
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "m3u8-downloader")
	}
	return filepath.Join(dir, "m3u8-downloader")
}

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}
