package ui

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"github.com/ytget/m3u8-downloader/internal/model"
	"github.com/ytget/m3u8-downloader/internal/sysinfo"
)

func TestRowActions(t *testing.T) {
	tests := []struct {
		status   model.TaskStatus
		expected []RowAction
	}{
		{model.TaskStatusPending, []RowAction{ActionDelete}},
		{model.TaskStatusQueued, []RowAction{ActionDelete}},
		{model.TaskStatusDownloading, []RowAction{ActionPause, ActionDelete}},
		{model.TaskStatusPaused, []RowAction{ActionResume, ActionDelete}},
		{model.TaskStatusFailed, []RowAction{ActionDelete}},
		{model.TaskStatusCompleted, []RowAction{ActionSave, ActionDelete}},
		{model.TaskStatusDeleted, []RowAction{ActionRestore, ActionPurge}},
		{model.TaskStatus("archived"), []RowAction{ActionDelete}},
	}

	for _, tt := range tests {
		if got := RowActions(tt.status); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("RowActions(%s) = %v, expected %v", tt.status, got, tt.expected)
		}
	}
}

func TestTaskInfo(t *testing.T) {
	failed := model.Task{Status: model.TaskStatusFailed, ErrorMessage: "403 Forbidden", FileSize: "1 MB"}
	if got := taskInfo(failed); got != "403 Forbidden" {
		t.Errorf("Expected error message, got %s", got)
	}

	downloading := model.Task{
		Status:        model.TaskStatusDownloading,
		FileSize:      "12.5 MB",
		DownloadSpeed: "2.1 MB/s",
		CreatedAt:     time.Now().Add(-2 * time.Hour),
	}
	got := taskInfo(downloading)
	if !strings.HasPrefix(got, "12.5 MB"+MiddleDotSeparator+"2.1 MB/s"+MiddleDotSeparator) || !strings.HasSuffix(got, "ago") {
		t.Errorf("Unexpected info line %q", got)
	}

	paused := model.Task{Status: model.TaskStatusPaused, DownloadSpeed: "2.1 MB/s"}
	if got := taskInfo(paused); got != DashPlaceholder {
		t.Errorf("Expected placeholder for paused task without size, got %q", got)
	}
}

func TestTaskRow_ButtonsFollowStatus(t *testing.T) {
	test.NewApp()

	var clicked []RowAction
	row := NewTaskRow(NewLocalization(), func(action RowAction, task model.Task) {
		clicked = append(clicked, action)
	})

	row.UpdateTask(model.Task{ID: "a", Status: model.TaskStatusDownloading, Progress: 42.7}, false)
	if row.buttons[0].Text != "Pause" || row.buttons[0].Disabled() {
		t.Errorf("Expected enabled Pause button, got %q disabled=%v", row.buttons[0].Text, row.buttons[0].Disabled())
	}
	if row.percentLabel.Text != "42%" {
		t.Errorf("Expected 42%%, got %s", row.percentLabel.Text)
	}

	test.Tap(row.buttons[0])
	if len(clicked) != 1 || clicked[0] != ActionPause {
		t.Errorf("Expected pause action, got %v", clicked)
	}

	row.UpdateTask(model.Task{ID: "a", Status: model.TaskStatusPending}, false)
	if row.buttons[1].Visible() {
		t.Error("Pending task should offer a single action")
	}
	if row.progressBar.Visible() {
		t.Error("Progress bar should be hidden for pending task")
	}

	row.UpdateTask(model.Task{ID: "a", Status: model.TaskStatusDeleted}, true)
	if row.buttons[0].Text != IconRestore+" Restore" || !row.buttons[0].Disabled() {
		t.Errorf("Expected disabled Restore while a command is pending, got %q disabled=%v",
			row.buttons[0].Text, row.buttons[0].Disabled())
	}
}

func TestRowAction_Label(t *testing.T) {
	l := NewLocalization()
	tests := []struct {
		action   RowAction
		expected string
	}{
		{ActionSave, IconSave + " " + l.GetText(KeySaveFile)},
		{ActionRestore, IconRestore + " " + l.GetText(KeyRestore)},
		{ActionPause, l.GetText(KeyPause)},
		{ActionPurge, l.GetText(KeyPurge)},
	}

	for _, test := range tests {
		if got := test.action.label(l); got != test.expected {
			t.Errorf("label(%d) = %q, expected %q", test.action, got, test.expected)
		}
	}
}

func TestStatusLine(t *testing.T) {
	l := NewLocalization()
	info := model.SystemInfo{Version: "1.2.0", Status: "running", ActiveTasks: 2, TotalTasks: 7, MaxConcurrentTasks: 3, DiskUsage: "1.4 GB"}

	if got := statusLine(l, info, sysinfo.StateUnknown); got != l.GetText(KeyStatusUnknown) {
		t.Errorf("Expected connecting text, got %s", got)
	}

	live := statusLine(l, info, sysinfo.StateLive)
	for _, part := range []string{"v1.2.0", "Running", "2/7 active (max 3)", "1.4 GB"} {
		if !strings.Contains(live, part) {
			t.Errorf("Expected %q in %q", part, live)
		}
	}

	stale := statusLine(l, info, sysinfo.StateStale)
	if !strings.HasPrefix(stale, IconStale) || !strings.Contains(stale, "v1.2.0") {
		t.Errorf("Expected stale marker with last snapshot, got %q", stale)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"", true},
		{"https://cdn.example.com/live/index.m3u8", true},
		{"http://10.0.0.5/a.m3u8?token=x", true},
		{"ftp://example.com/a.m3u8", false},
		{"https://", false},
		{"index.m3u8", false},
	}

	for _, tt := range tests {
		err := validateURL(tt.input)
		if (err == nil) != tt.valid {
			t.Errorf("validateURL(%q) error = %v, expected valid=%v", tt.input, err, tt.valid)
		}
	}
}

func TestParseSpeedLimit(t *testing.T) {
	if v, err := parseSpeedLimit(" "); err != nil || v != nil {
		t.Errorf("Expected nil limit for empty input, got %v %v", v, err)
	}
	if v, err := parseSpeedLimit("2.5"); err != nil || v == nil || *v != 2.5 {
		t.Errorf("Expected 2.5, got %v %v", v, err)
	}
	for _, input := range []string{"0", "-1", "fast"} {
		if _, err := parseSpeedLimit(input); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}
