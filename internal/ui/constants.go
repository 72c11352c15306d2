package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconPlay     = "▶"
	IconPause    = "⏸"
	IconSave     = "💾"
	IconFolder   = "📁"
	IconRestore  = "↩"
	IconDelete   = "🗑"
	IconClose    = "×"
	IconError    = "❌"
	IconProbe    = "🔍"
	IconStale    = "⚠"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
)

// Layout sizing (TaskRow / lists)
const (
	StatusLabelWidth  float32 = 110
	InfoLabelWidth    float32 = 220
	PercentLabelWidth float32 = 48

	RowMinWidth  float32 = 400
	RowMinHeight float32 = 64
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 320
	ToastHeight   float32 = 120
	ToastMargin   float32 = 20
	ToastAutoHide         = 5 * time.Second
)

// Debounce durations
const (
	UIUpdateDebounce = 100 * time.Millisecond
)

// Timeouts for work started from the UI
const (
	ProbeTimeout    = 15 * time.Second
	CommandTimeout  = 30 * time.Second
	DownloadTimeout = 30 * time.Minute

	// EmptyBinItemTimeout is the budget per purge when emptying the recycle bin
	EmptyBinItemTimeout = time.Second
)
