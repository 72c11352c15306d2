package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/m3u8-downloader/internal/config"
	"github.com/ytget/m3u8-downloader/internal/download"
	"github.com/ytget/m3u8-downloader/internal/model"
	"github.com/ytget/m3u8-downloader/internal/platform"
	"github.com/ytget/m3u8-downloader/internal/probe"
	"github.com/ytget/m3u8-downloader/internal/store"
	"github.com/ytget/m3u8-downloader/internal/sysinfo"
)

// Dependencies are the collaborators the main window drives
type Dependencies struct {
	Controller download.Controller
	Tasks      *store.TaskStore
	Status     *sysinfo.View
	Prober     *probe.Prober
	Settings   *config.Settings
	ServerURL  string // effective service URL, shown as settings fallback
}

// view is one tab's list and the snapshot it renders
type view struct {
	partition model.Partition
	list      *widget.List
	tasks     []model.Task
	empty     *widget.Label
}

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	controller   download.Controller
	tasks        *store.TaskStore
	status       *sysinfo.View
	prober       *probe.Prober
	settings     *config.Settings
	serverURL    string
	localization *Localization

	// Create form
	urlEntry        *widget.Entry
	filenameEntry   *widget.Entry
	cookiesEntry    *widget.Entry
	speedLimitEntry *widget.Entry
	qualitySelect   *widget.Select
	probeBtn        *widget.Button
	createBtn       *widget.Button
	variants        []probe.Variant

	tabs      *container.AppTabs
	views     [3]*view
	statusBar *widget.Label

	// Notification panel
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite

	// UI update debouncing
	refreshScheduled atomic.Bool

	// statuses remembers the last rendered status per task to detect completions
	statusesMutex sync.Mutex
	statuses      map[string]model.TaskStatus
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, deps Dependencies) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(deps.Settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		controller:   deps.Controller,
		tasks:        deps.Tasks,
		status:       deps.Status,
		prober:       deps.Prober,
		settings:     deps.Settings,
		serverURL:    deps.ServerURL,
		localization: localization,
		statuses:     make(map[string]model.TaskStatus),
	}

	for _, task := range ui.tasks.All() {
		ui.statuses[task.ID] = task.Status
	}

	ui.setupUI()

	ui.controller.SetUpdateCallback(ui.onTasksChanged)
	if ui.status != nil {
		ui.status.SetChangeCallback(ui.onStatusChanged)
	}

	log.Printf("RootUI initialized with %d cached tasks", ui.tasks.Len())
	return ui
}

// setupUI creates and arranges all UI components. It is called again after a
// language change; the selected tab is kept.
func (ui *RootUI) setupUI() {
	selected := 0
	if ui.tabs != nil {
		selected = ui.tabs.SelectedIndex()
	}

	l := ui.localization
	ui.window.SetTitle(l.GetText(KeyAppTitle))
	ui.createMenu()

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(l.GetText(KeyEnterURL))
	ui.urlEntry.Validator = validateURL
	ui.urlEntry.OnSubmitted = func(string) { ui.onCreateClick() }
	ui.urlEntry.OnChanged = func(string) { ui.resetQuality() }

	ui.filenameEntry = widget.NewEntry()
	ui.filenameEntry.SetPlaceHolder(l.GetText(KeyFilename))

	ui.cookiesEntry = widget.NewEntry()
	ui.cookiesEntry.SetPlaceHolder(l.GetText(KeyCookies))

	ui.speedLimitEntry = widget.NewEntry()
	ui.speedLimitEntry.SetPlaceHolder(l.GetText(KeySpeedLimit))

	ui.variants = nil
	ui.qualitySelect = widget.NewSelect(nil, nil)
	ui.qualitySelect.PlaceHolder = l.GetText(KeyQuality)
	ui.qualitySelect.Hide()

	ui.probeBtn = widget.NewButton(IconProbe+" "+l.GetText(KeyProbe), ui.onProbeClick)
	ui.createBtn = widget.NewButton(l.GetText(KeyCreate), ui.onCreateClick)
	ui.createBtn.Importance = widget.HighImportance

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	urlRow := container.NewBorder(nil, nil, settingsBtn, container.NewHBox(ui.probeBtn, ui.createBtn), ui.urlEntry)
	optionsRow := container.NewGridWithColumns(3, ui.filenameEntry, ui.speedLimitEntry, ui.cookiesEntry)

	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Wrapping = fyne.TextWrapWord
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewBorder(nil, nil, ui.notificationSpinner, nil, ui.notificationLabel)
	ui.notificationContainer.Hide()

	top := container.NewVBox(urlRow, optionsRow, ui.qualitySelect, ui.notificationContainer)

	ui.views = [3]*view{
		ui.newView(model.PartitionActive),
		ui.newView(model.PartitionCompleted),
		ui.newView(model.PartitionRecycleBin),
	}

	emptyBinBtn := widget.NewButton(IconDelete+" "+l.GetText(KeyEmptyRecycleBin), ui.onEmptyRecycleBin)
	emptyBinBtn.Importance = widget.DangerImportance

	ui.tabs = container.NewAppTabs(
		container.NewTabItem(l.GetText(KeyTabDownloading), ui.views[0].content(nil)),
		container.NewTabItem(l.GetText(KeyTabCompleted), ui.views[1].content(nil)),
		container.NewTabItem(l.GetText(KeyTabRecycleBin), ui.views[2].content(emptyBinBtn)),
	)
	ui.tabs.SelectIndex(selected)

	ui.statusBar = widget.NewLabel("")
	ui.statusBar.Truncation = fyne.TextTruncateEllipsis

	ui.window.SetContent(container.NewBorder(top, ui.statusBar, nil, nil, ui.tabs))

	ui.refreshViews()
	ui.refreshStatusBar()
}

func (ui *RootUI) newView(partition model.Partition) *view {
	v := &view{partition: partition}
	v.list = widget.NewList(
		func() int { return len(v.tasks) },
		func() fyne.CanvasObject { return NewTaskRow(ui.localization, ui.onRowAction) },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(v.tasks) {
				return
			}
			task := v.tasks[id]
			if row, ok := obj.(*TaskRow); ok {
				row.UpdateTask(task, ui.controller.IsPending(task.ID))
			}
		},
	)
	v.empty = widget.NewLabel(ui.localization.GetText(KeyEmptyView))
	v.empty.Alignment = fyne.TextAlignCenter
	return v
}

func (v *view) content(toolbar fyne.CanvasObject) fyne.CanvasObject {
	body := container.NewStack(v.list, container.NewCenter(v.empty))
	if toolbar == nil {
		return body
	}
	return container.NewBorder(container.NewHBox(toolbar), nil, nil, nil, body)
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	l := ui.localization
	settingsItem := fyne.NewMenuItem(l.GetText(KeySettings), ui.onShowSettings)
	clearItem := fyne.NewMenuItem(l.GetText(KeyClearServerCache), ui.onClearServerCache)

	languages := l.GetAvailableLanguages()
	codes := make([]string, 0, len(languages))
	for code := range languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	languageMenu := fyne.NewMenu(l.GetText(KeyLanguage))
	for _, code := range codes {
		langCode := code
		item := fyne.NewMenuItem(languages[code], func() { ui.onLanguageChange(langCode) })
		item.Checked = l.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(l.GetText(KeyFile), settingsItem, fyne.NewMenuItemSeparator(), clearItem),
		languageMenu,
	))
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.settings.SetLanguage(langCode)
	ui.localization.SetLanguage(langCode)
	ui.setupUI()
}

// validateURL accepts an empty value or an absolute http(s) URL
func validateURL(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// parseSpeedLimit returns nil for an empty value
func parseSpeedLimit(input string) (*float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil || value <= 0 {
		return nil, fmt.Errorf("invalid speed limit %q", input)
	}
	return &value, nil
}

// cleanInput removes line breaks pasted together with URLs
func cleanInput(s string) string {
	s = strings.NewReplacer("\n", "", "\r", "", "\t", " ").Replace(s)
	return strings.TrimSpace(s)
}

// resetQuality drops probe results that belong to a previous URL
func (ui *RootUI) resetQuality() {
	if len(ui.variants) == 0 {
		return
	}
	ui.variants = nil
	ui.qualitySelect.Options = nil
	ui.qualitySelect.ClearSelected()
	ui.qualitySelect.Hide()
}

// onProbeClick reads the playlist behind the URL and offers its variants
func (ui *RootUI) onProbeClick() {
	rawURL := cleanInput(ui.urlEntry.Text)
	if rawURL == "" {
		ui.showNotification(ui.localization.GetText(KeyPleaseEnterURL), false)
		return
	}
	if err := validateURL(rawURL); err != nil {
		ui.showNotification(ui.localization.GetText(KeyInvalidURL)+": "+err.Error(), false)
		return
	}
	cookies := strings.TrimSpace(ui.cookiesEntry.Text)

	ui.probeBtn.Disable()
	ui.showNotification(ui.localization.GetText(KeyProbing), true)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ProbeTimeout)
		defer cancel()
		result, err := ui.prober.Probe(ctx, rawURL, cookies)

		fyne.Do(func() {
			ui.probeBtn.Enable()
			if err != nil {
				log.Printf("probe %s failed: %v", rawURL, err)
				ui.showNotification(ui.localization.GetText(KeyProbeFailed)+": "+err.Error(), false)
				return
			}
			ui.applyProbeResult(rawURL, result)
		})
	}()
}

func (ui *RootUI) applyProbeResult(rawURL string, result *probe.Result) {
	if strings.TrimSpace(ui.filenameEntry.Text) == "" {
		ui.filenameEntry.SetText(probe.SuggestFilename(rawURL))
	}

	if !result.Master {
		summary := fmt.Sprintf("%d segments%s%s", result.Segments, MiddleDotSeparator, result.Duration.Round(time.Second))
		if result.Live {
			summary += MiddleDotSeparator + "live"
		}
		ui.showNotification(summary, false)
		return
	}

	ui.variants = result.Variants
	labels := make([]string, len(result.Variants))
	for i, v := range result.Variants {
		labels[i] = v.Label()
	}
	ui.qualitySelect.Options = labels
	ui.qualitySelect.Show()
	if len(labels) > 0 {
		ui.qualitySelect.SetSelectedIndex(0)
	}
	ui.showNotification(fmt.Sprintf("%s: %d", ui.localization.GetText(KeyQuality), len(labels)), false)
}

// onCreateClick handles the download button click
func (ui *RootUI) onCreateClick() {
	l := ui.localization

	rawURL := cleanInput(ui.urlEntry.Text)
	if rawURL == "" {
		ui.showNotification(l.GetText(KeyPleaseEnterURL), false)
		return
	}
	if err := validateURL(rawURL); err != nil {
		ui.showNotification(l.GetText(KeyInvalidURL)+": "+err.Error(), false)
		return
	}
	speedLimit, err := parseSpeedLimit(ui.speedLimitEntry.Text)
	if err != nil {
		ui.showNotification(l.GetText(KeyInvalidSpeedLimit), false)
		return
	}

	filename := strings.TrimSpace(ui.filenameEntry.Text)
	if filename == "" {
		filename = probe.SuggestFilename(rawURL)
	}

	opts := download.CreateOptions{
		URL:        rawURL,
		Filename:   filename,
		SpeedLimit: speedLimit,
		Cookies:    ui.cookiesEntry.Text,
	}
	if index := ui.qualitySelect.SelectedIndex(); index >= 0 && index < len(ui.variants) {
		opts.QualityURL = ui.variants[index].URL
	}

	ui.createBtn.Disable()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
		defer cancel()
		task, err := ui.controller.CreateTask(ctx, opts)

		fyne.Do(func() {
			ui.createBtn.Enable()
			if err != nil {
				log.Printf("create task for %s failed: %v", rawURL, err)
				ui.showNotification(l.GetText(KeyCommandFailed)+": "+err.Error(), false)
				return
			}
			log.Printf("Task created: ID=%s, Status=%s", task.ID, task.Status)
			ui.urlEntry.SetText("")
			ui.filenameEntry.SetText("")
			ui.resetQuality()
			ui.tabs.SelectIndex(0)
			ui.showNotification(l.GetText(KeyTaskCreated)+": "+task.GetDisplayTitle(), false)
		})
	}()
}

// onRowAction dispatches a row button to the controller
func (ui *RootUI) onRowAction(action RowAction, task model.Task) {
	switch action {
	case ActionPause:
		ui.runCommand(task, ui.controller.Pause)
	case ActionResume:
		ui.runCommand(task, ui.controller.Resume)
	case ActionDelete:
		ui.runCommand(task, ui.controller.SoftDelete)
	case ActionRestore:
		ui.runCommand(task, ui.controller.Restore)
	case ActionPurge:
		dialog.ShowConfirm(ui.localization.GetText(KeyPurge), ui.localization.GetText(KeyConfirmPurge), func(ok bool) {
			if ok {
				ui.runCommand(task, ui.controller.Purge)
			}
		}, ui.window)
	case ActionSave:
		ui.saveFile(task)
	}
}

// runCommand runs a lifecycle command off the UI thread. The store already
// reflects the outcome when it returns; failures are reported to the user.
func (ui *RootUI) runCommand(task model.Task, command func(context.Context, string) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
		defer cancel()
		if err := command(ctx, task.ID); err != nil {
			log.Printf("command on task %s failed: %v", task.ID, err)
			ui.showNotification(fmt.Sprintf("%s (%s): %v", ui.localization.GetText(KeyCommandFailed), task.GetDisplayTitle(), err), false)
		}
	}()
}

// saveFile retrieves a completed task's artifact into the download directory
func (ui *RootUI) saveFile(task model.Task) {
	ui.showNotification(task.GetDisplayTitle(), true)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), DownloadTimeout)
		defer cancel()
		path, err := ui.controller.Download(ctx, task.ID, task.Filename)
		if err != nil {
			log.Printf("save task %s failed: %v", task.ID, err)
			ui.showNotification(ui.localization.GetText(KeyCommandFailed)+": "+err.Error(), false)
			return
		}
		if path == "" {
			ui.hideNotification()
			return
		}

		ui.hideNotification()
		if ui.settings.GetAutoRevealOnComplete() {
			ui.onRevealFile(path)
		}
		fyne.Do(func() { ui.showToastNotification(ui.localization.GetText(KeyFileSaved), path) })
	}()
}

// onEmptyRecycleBin purges every task in the recycle bin after confirmation
func (ui *RootUI) onEmptyRecycleBin() {
	l := ui.localization
	count := len(ui.tasks.ViewRecycleBin())
	if count == 0 {
		return
	}
	dialog.ShowConfirm(l.GetText(KeyEmptyRecycleBin), l.GetText(KeyConfirmEmpty), func(ok bool) {
		if !ok {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), emptyBinTimeout(count))
			defer cancel()
			err := ui.controller.EmptyRecycleBin(ctx)
			var bulk *download.BulkError
			switch {
			case errors.As(err, &bulk):
				ui.showNotification(fmt.Sprintf("%s (%d)", l.GetText(KeyPurgePartialFailed), len(bulk.Failed)), false)
			case err != nil:
				ui.showNotification(l.GetText(KeyCommandFailed)+": "+err.Error(), false)
			}
		}()
	}, ui.window)
}

// emptyBinTimeout bounds the whole rate-limited purge of items tasks
func emptyBinTimeout(items int) time.Duration {
	return max(CommandTimeout, time.Duration(items)*EmptyBinItemTimeout)
}

// onClearServerCache removes every task and file on the service after confirmation
func (ui *RootUI) onClearServerCache() {
	l := ui.localization
	dialog.ShowConfirm(l.GetText(KeyClearServerCache), l.GetText(KeyConfirmClear), func(ok bool) {
		if !ok {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
			defer cancel()
			result, err := ui.controller.ClearServerCache(ctx)
			if err != nil {
				ui.showNotification(l.GetText(KeyCommandFailed)+": "+err.Error(), false)
				return
			}
			message := result.Message
			if message == "" {
				message = l.GetText(KeyCleanupDone)
			}
			ui.showNotification(message, false)
		}()
	}, ui.window)
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.window, ui.settings, ui.controller, ui.localization, ui.serverURL, func(languageChanged bool) {
		if languageChanged {
			ui.localization.SetLanguage(ui.settings.GetLanguage())
			ui.setupUI()
		}
	}).Show()
}

// onRevealFile handles revealing a file in the system file manager
func (ui *RootUI) onRevealFile(filePath string) {
	if err := platform.OpenFileInManager(filePath); err != nil {
		log.Printf("Error revealing file %s: %v", filePath, err)
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

// onOpenFile handles opening a saved file with the default application
func (ui *RootUI) onOpenFile(filePath string) {
	if err := platform.OpenFileWithDefaultApp(filePath); err != nil {
		log.Printf("Error opening file %s: %v", filePath, err)
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

// showNotification displays a message in the notification panel under the form.
// When spinning is true, a spinner is shown to indicate background activity.
func (ui *RootUI) showNotification(message string, spinning bool) {
	fyne.Do(func() {
		ui.notificationLabel.SetText(message)
		if spinning {
			ui.notificationSpinner.Show()
		} else {
			ui.notificationSpinner.Hide()
		}
		ui.notificationContainer.Show()
	})
}

// hideNotification hides the notification panel.
func (ui *RootUI) hideNotification() {
	fyne.Do(func() {
		ui.notificationSpinner.Hide()
		ui.notificationContainer.Hide()
	})
}

// onTasksChanged is the controller's update callback; it may run on any goroutine
func (ui *RootUI) onTasksChanged() {
	ui.scheduleRefresh()
}

// scheduleRefresh coalesces bursts of store changes into one repaint
func (ui *RootUI) scheduleRefresh() {
	if !ui.refreshScheduled.CompareAndSwap(false, true) {
		return
	}
	time.AfterFunc(UIUpdateDebounce, func() {
		ui.refreshScheduled.Store(false)
		fyne.Do(ui.refreshViews)
	})
}

// refreshViews re-reads the three partitions from the store. Must run on the UI thread.
func (ui *RootUI) refreshViews() {
	for _, v := range ui.views {
		v.tasks = ui.tasks.View(v.partition)
		if len(v.tasks) == 0 {
			v.empty.Show()
		} else {
			v.empty.Hide()
		}
		v.list.Refresh()
	}

	for _, task := range ui.completedSinceLastRefresh() {
		fyne.CurrentApp().SendNotification(&fyne.Notification{
			Title:   ui.localization.GetText(KeyDownloadCompleted),
			Content: task.GetDisplayTitle(),
		})
	}
}

// completedSinceLastRefresh returns tasks whose download finished since the
// last refresh. Finished tasks restored from the recycle bin are not included.
func (ui *RootUI) completedSinceLastRefresh() []model.Task {
	ui.statusesMutex.Lock()
	defer ui.statusesMutex.Unlock()

	var completed []model.Task
	next := make(map[string]model.TaskStatus, len(ui.statuses))
	for _, task := range ui.tasks.All() {
		previous, known := ui.statuses[task.ID]
		if known && task.Status == model.TaskStatusCompleted &&
			previous != model.TaskStatusCompleted && !previous.InRecycleBin() {
			completed = append(completed, task)
		}
		next[task.ID] = task.Status
	}
	ui.statuses = next
	return completed
}

// onStatusChanged is the status view's change callback
func (ui *RootUI) onStatusChanged() {
	fyne.Do(ui.refreshStatusBar)
}

// refreshStatusBar renders the service status line. Must run on the UI thread.
func (ui *RootUI) refreshStatusBar() {
	if ui.status == nil {
		ui.statusBar.SetText("")
		return
	}
	info, state := ui.status.Snapshot()
	ui.statusBar.SetText(statusLine(ui.localization, info, state))
	if state == sysinfo.StateStale {
		ui.statusBar.Importance = widget.WarningImportance
	} else {
		ui.statusBar.Importance = widget.MediumImportance
	}
	ui.statusBar.Refresh()
}

// statusLine formats a SystemInfo snapshot for the status bar
func statusLine(l *Localization, info model.SystemInfo, state sysinfo.State) string {
	if state == sysinfo.StateUnknown {
		return l.GetText(KeyStatusUnknown)
	}

	parts := make([]string, 0, 5)
	if state == sysinfo.StateStale {
		parts = append(parts, IconStale+" "+l.GetText(KeyStatusStale))
	}
	if info.Version != "" {
		parts = append(parts, "v"+info.Version)
	}
	if info.IsRunning() {
		parts = append(parts, l.GetText(KeyStatusRunning))
	} else {
		parts = append(parts, l.GetText(KeyStatusStopped))
	}
	active := fmt.Sprintf("%d/%d %s", info.ActiveTasks, info.TotalTasks, l.GetText(KeyActiveTasks))
	if info.MaxConcurrentTasks > 0 {
		active += fmt.Sprintf(" (max %d)", info.MaxConcurrentTasks)
	}
	parts = append(parts, active)
	if info.DiskUsage != "" {
		parts = append(parts, IconFolder+" "+info.DiskUsage)
	}
	return strings.Join(parts, MiddleDotSeparator)
}

// showToastNotification shows an in-app toast with reveal and open actions
func (ui *RootUI) showToastNotification(title, filePath string) {
	titleLabel := widget.NewLabel(title)
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	messageLabel := widget.NewLabel(filePath)
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	revealBtn := widget.NewButton(ui.localization.GetText(KeyReveal), func() { ui.onRevealFile(filePath) })
	revealBtn.Importance = widget.HighImportance
	openBtn := widget.NewButton(ui.localization.GetText(KeyOpen), func() { ui.onOpenFile(filePath) })

	var toast *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() { toast.Hide() })
	closeBtn.Importance = widget.LowImportance

	content := container.NewVBox(
		container.NewBorder(nil, nil, titleLabel, closeBtn),
		messageLabel,
		container.NewHBox(revealBtn, openBtn),
	)

	toast = widget.NewPopUp(content, ui.window.Canvas())
	canvasSize := ui.window.Canvas().Size()
	toast.Resize(fyne.NewSize(ToastWidth, ToastHeight))
	toast.Move(fyne.NewPos(canvasSize.Width-ToastWidth-ToastMargin, ToastMargin))
	toast.Show()

	time.AfterFunc(ToastAutoHide, func() { fyne.Do(toast.Hide) })
}
