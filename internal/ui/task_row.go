package ui

import (
	"fmt"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/ytget/m3u8-downloader/internal/model"
)

// RowAction is a command offered by a task row
type RowAction int

const (
	ActionPause RowAction = iota
	ActionResume
	ActionDelete
	ActionRestore
	ActionPurge
	ActionSave
)

// textKey returns the localization key of the action's button label
func (a RowAction) textKey() string {
	switch a {
	case ActionPause:
		return KeyPause
	case ActionResume:
		return KeyResume
	case ActionDelete:
		return KeyDelete
	case ActionRestore:
		return KeyRestore
	case ActionPurge:
		return KeyPurge
	case ActionSave:
		return KeySaveFile
	default:
		return ""
	}
}

// label returns the button text, with an icon for the actions that carry one
func (a RowAction) label(l *Localization) string {
	text := l.GetText(a.textKey())
	switch a {
	case ActionSave:
		return IconSave + " " + text
	case ActionRestore:
		return IconRestore + " " + text
	default:
		return text
	}
}

// RowActions returns the actions available for a task, primary action first
func RowActions(status model.TaskStatus) []RowAction {
	switch {
	case status.InRecycleBin():
		return []RowAction{ActionRestore, ActionPurge}
	case status.CanDownload():
		return []RowAction{ActionSave, ActionDelete}
	case status.CanPause():
		return []RowAction{ActionPause, ActionDelete}
	case status.CanResume():
		return []RowAction{ActionResume, ActionDelete}
	default:
		return []RowAction{ActionDelete}
	}
}

// TaskRow represents a compact task row widget
type TaskRow struct {
	widget.BaseWidget

	task         model.Task
	pending      bool
	localization *Localization

	// UI components
	titleLabel   *widget.Label
	statusLabel  *widget.Label
	infoLabel    *widget.Label
	percentLabel *widget.Label
	progressBar  *widget.ProgressBar

	// Action buttons; hidden when the task offers fewer actions
	buttons [2]*widget.Button
	actions []RowAction

	onAction func(action RowAction, task model.Task)
}

// NewTaskRow creates a new task row widget
func NewTaskRow(localization *Localization, onAction func(RowAction, model.Task)) *TaskRow {
	tr := &TaskRow{
		localization: localization,
		onAction:     onAction,
	}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	return tr
}

// UpdateTask updates the row with new task data. pending disables the
// actions while a command for the task awaits its response.
func (tr *TaskRow) UpdateTask(task model.Task, pending bool) {
	tr.task = task
	tr.pending = pending
	tr.updateFromTask()
}

// Task returns the task currently shown
func (tr *TaskRow) Task() model.Task {
	return tr.task
}

func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.statusLabel.Alignment = fyne.TextAlignTrailing

	tr.infoLabel = widget.NewLabel("")
	tr.infoLabel.TextStyle = fyne.TextStyle{Monospace: true}
	tr.infoLabel.Truncation = fyne.TextTruncateEllipsis

	tr.percentLabel = widget.NewLabel("")
	tr.percentLabel.Alignment = fyne.TextAlignTrailing

	tr.progressBar = widget.NewProgressBar()
	tr.progressBar.Max = 100
	tr.progressBar.TextFormatter = func() string { return "" }

	for i := range tr.buttons {
		index := i
		tr.buttons[i] = widget.NewButton("", func() {
			if index < len(tr.actions) && tr.onAction != nil {
				tr.onAction(tr.actions[index], tr.task)
			}
		})
	}
	tr.buttons[0].Importance = widget.MediumImportance
	tr.buttons[1].Importance = widget.LowImportance
}

// updateFromTask updates UI components based on task state
func (tr *TaskRow) updateFromTask() {
	task := tr.task

	tr.titleLabel.SetText(strings.Join(strings.Fields(task.GetDisplayTitle()), " "))

	status := tr.localization.StatusText(task.Status.String())
	switch task.Status {
	case model.TaskStatusFailed:
		tr.statusLabel.Importance = widget.DangerImportance
		status = IconError + " " + status
	case model.TaskStatusCompleted:
		tr.statusLabel.Importance = widget.SuccessImportance
	case model.TaskStatusDownloading:
		tr.statusLabel.Importance = widget.HighImportance
		status = IconPlay + " " + status
	case model.TaskStatusPaused:
		tr.statusLabel.Importance = widget.WarningImportance
		status = IconPause + " " + status
	default:
		tr.statusLabel.Importance = widget.MediumImportance
	}
	tr.statusLabel.SetText(status)

	tr.progressBar.SetValue(task.Progress)
	if task.Status.HasProgress() {
		tr.progressBar.Show()
		tr.percentLabel.SetText(fmt.Sprintf(ProgressLabelFormat, task.Percent()))
	} else {
		tr.progressBar.Hide()
		tr.percentLabel.SetText("")
	}

	tr.infoLabel.SetText(taskInfo(task))
	tr.updateButtons()
}

// taskInfo builds the secondary line: error, or size, speed and age
func taskInfo(task model.Task) string {
	if task.Status == model.TaskStatusFailed && task.ErrorMessage != "" {
		return task.ErrorMessage
	}

	parts := make([]string, 0, 3)
	if task.FileSize != "" {
		parts = append(parts, task.FileSize)
	}
	if task.Status == model.TaskStatusDownloading && task.DownloadSpeed != "" {
		parts = append(parts, task.DownloadSpeed)
	}
	if !task.CreatedAt.IsZero() {
		parts = append(parts, humanize.Time(task.CreatedAt))
	}
	if len(parts) == 0 {
		return DashPlaceholder
	}
	return strings.Join(parts, MiddleDotSeparator)
}

// updateButtons shows one button per available action
func (tr *TaskRow) updateButtons() {
	tr.actions = RowActions(tr.task.Status)
	for i, btn := range tr.buttons {
		if i >= len(tr.actions) {
			btn.Hide()
			continue
		}
		btn.SetText(tr.actions[i].label(tr.localization))
		if tr.pending {
			btn.Disable()
		} else {
			btn.Enable()
		}
		btn.Show()
	}
}

// CreateRenderer creates the widget renderer
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.Transparent)
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	actions := container.NewHBox(tr.buttons[0], tr.buttons[1])
	header := container.NewBorder(nil, nil, nil,
		container.NewHBox(fixedWidth(StatusLabelWidth, tr.statusLabel), actions),
		tr.titleLabel)
	progress := container.NewBorder(nil, nil, nil,
		fixedWidth(PercentLabelWidth, tr.percentLabel),
		tr.progressBar)
	details := container.NewBorder(nil, nil, fixedWidth(InfoLabelWidth, tr.infoLabel), nil, progress)

	content := container.NewVBox(header, details, widget.NewSeparator())
	return widget.NewSimpleRenderer(content)
}

// MinSize keeps rows readable in narrow windows
func (tr *TaskRow) MinSize() fyne.Size {
	size := tr.BaseWidget.MinSize()
	return fyne.NewSize(max(size.Width, RowMinWidth), max(size.Height, RowMinHeight))
}
