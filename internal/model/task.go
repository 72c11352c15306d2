package model

import (
	"encoding/json"
	"math"
	"path"
	"strings"
	"time"
)

// createdAtLayouts lists accepted encodings of created_at. The service emits
// naive ISO timestamps; RFC3339 is accepted as well.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Task is the client-side record of one remote download job
type Task struct {
	ID            string     `json:"task_id"`
	URL           string     `json:"url"`
	Filename      string     `json:"filename"`
	Status        TaskStatus `json:"status"`
	Progress      float64    `json:"progress"` // 0 to 100
	FileSize      string     `json:"file_size,omitempty"`
	DownloadSpeed string     `json:"download_speed,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"-"`
	MaxThreads    int        `json:"max_threads"`
	SpeedLimit    *float64   `json:"speed_limit,omitempty"`
}

type taskAlias Task

type taskJSON struct {
	taskAlias
	CreatedAt string `json:"created_at"`
}

// UnmarshalJSON decodes a task record, tolerating the naive timestamps the service sends
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task(raw.taskAlias)
	t.CreatedAt = ParseTimestamp(raw.CreatedAt)
	return nil
}

// MarshalJSON encodes created_at as RFC3339
func (t Task) MarshalJSON() ([]byte, error) {
	raw := taskJSON{taskAlias: taskAlias(t)}
	if !t.CreatedAt.IsZero() {
		raw.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(raw)
}

// ParseTimestamp parses a created_at value; unparseable input yields the zero time.
func ParseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// Normalize clamps progress into [0, 100] and materialises 100 for completed tasks
func (t Task) Normalize() Task {
	switch {
	case math.IsNaN(t.Progress) || t.Progress < 0:
		t.Progress = 0
	case t.Progress > 100:
		t.Progress = 100
	}
	if t.Status == TaskStatusCompleted {
		t.Progress = 100
	}
	if t.Status != TaskStatusFailed {
		t.ErrorMessage = ""
	}
	return t
}

// Percent returns progress rounded down to a whole percentage
func (t *Task) Percent() int {
	return int(math.Floor(t.Progress))
}

// GetDisplayTitle returns the filename, or the last URL path element, or the URL
func (t *Task) GetDisplayTitle() string {
	if name := strings.TrimSpace(t.Filename); name != "" {
		return name
	}

	if t.URL == "" {
		return ""
	}
	trimmed := strings.SplitN(t.URL, "?", 2)[0]
	if base := path.Base(trimmed); base != "." && base != "/" && !strings.HasSuffix(trimmed, "/") {
		return base
	}
	return t.URL
}

// CreateRequest is the payload sent to the service to create a task
type CreateRequest struct {
	URL        string   `json:"url"`
	Filename   string   `json:"filename"`
	MaxThreads int      `json:"max_threads"`
	SpeedLimit *float64 `json:"speed_limit,omitempty"`
	Cookies    string   `json:"cookies,omitempty"`
	QualityURL string   `json:"quality_url,omitempty"`
}
