package ui

import (
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/m3u8-downloader/internal/config"
	"github.com/ytget/m3u8-downloader/internal/download"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	controller   download.Controller
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	serverURL    string // fallback shown when none is stored

	// UI components
	maxThreadsEntry    *widget.Entry
	maxConcurrentEntry *widget.Entry
	downloadDirEntry   *widget.Entry
	serverURLEntry     *widget.Entry
	autoRevealCheck    *widget.Check
	languageSelect     *widget.Select
	languageCodes      []string

	onSaved func(languageChanged bool)
}

// NewSettingsDialog creates a new settings dialog. Concurrency values are
// saved through controller so the service scheduler is notified.
func NewSettingsDialog(window fyne.Window, settings *config.Settings, controller download.Controller,
	localization *Localization, serverURL string, onSaved func(languageChanged bool)) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		controller:   controller,
		localization: localization,
		window:       window,
		serverURL:    serverURL,
		onSaved:      onSaved,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func rangeValidator(lo, hi int) fyne.StringValidator {
	return func(text string) error {
		value, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return err
		}
		if value < lo || value > hi {
			return strconv.ErrRange
		}
		return nil
	}
}

func (sd *SettingsDialog) createUI() {
	l := sd.localization

	sd.maxThreadsEntry = widget.NewEntry()
	sd.maxThreadsEntry.Validator = rangeValidator(config.MinMaxThreads, config.MaxMaxThreads)

	sd.maxConcurrentEntry = widget.NewEntry()
	sd.maxConcurrentEntry.Validator = rangeValidator(config.MinMaxConcurrentTasks, config.MaxMaxConcurrentTasks)

	sd.downloadDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(l.GetText(KeyBrowse), sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	sd.serverURLEntry = widget.NewEntry()
	sd.serverURLEntry.SetPlaceHolder(config.DefaultAPIURL)

	sd.autoRevealCheck = widget.NewCheck(l.GetText(KeyAutoReveal), nil)

	options := sd.settings.GetLanguageOptions()
	for code := range options {
		sd.languageCodes = append(sd.languageCodes, code)
	}
	sort.Strings(sd.languageCodes)
	labels := make([]string, len(sd.languageCodes))
	for i, code := range sd.languageCodes {
		labels[i] = options[code]
	}
	sd.languageSelect = widget.NewSelect(labels, nil)

	form := container.NewVBox(
		widget.NewLabel(l.GetText(KeyMaxThreads)),
		sd.maxThreadsEntry,
		widget.NewLabel(l.GetText(KeyMaxConcurrent)),
		sd.maxConcurrentEntry,

		widget.NewSeparator(),

		widget.NewLabel(l.GetText(KeyDownloadDirectory)),
		downloadDirRow,
		sd.autoRevealCheck,
		widget.NewLabel(l.GetText(KeyServerURL)),
		sd.serverURLEntry,

		widget.NewSeparator(),

		widget.NewLabel(l.GetText(KeyLanguage)),
		sd.languageSelect,
	)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)
	sd.dialog.Resize(fyne.NewSize(500, 460))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	cfg := sd.settings.Load()
	sd.maxThreadsEntry.SetText(strconv.Itoa(cfg.MaxThreads))
	sd.maxConcurrentEntry.SetText(strconv.Itoa(cfg.MaxConcurrentTasks))
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.serverURLEntry.SetText(sd.settings.GetServerURL(sd.serverURL))
	sd.autoRevealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())

	current := sd.settings.GetLanguage()
	for i, code := range sd.languageCodes {
		if code == current {
			sd.languageSelect.SetSelectedIndex(i)
		}
	}
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

// parseOr returns the integer in text, or fallback when it is not a number.
// Out-of-range numbers pass through and are clamped on save.
func parseOr(text string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return fallback
	}
	return value
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	current := sd.settings.Load()
	stored := sd.controller.UpdateSettings(config.Config{
		MaxThreads:         parseOr(sd.maxThreadsEntry.Text, current.MaxThreads),
		MaxConcurrentTasks: parseOr(sd.maxConcurrentEntry.Text, current.MaxConcurrentTasks),
	})

	if dir := strings.TrimSpace(sd.downloadDirEntry.Text); dir != "" {
		sd.settings.SetDownloadDirectory(dir)
	}
	sd.settings.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)

	message := sd.localization.GetText(KeySettingsSaved)
	previousURL := sd.settings.GetServerURL(sd.serverURL)
	if url := strings.TrimSpace(sd.serverURLEntry.Text); url != "" && strings.TrimRight(url, "/") != previousURL {
		sd.settings.SetServerURL(url)
		message += "\n" + sd.localization.GetText(KeyRestartRequired)
	}

	languageChanged := false
	if index := sd.languageSelect.SelectedIndex(); index >= 0 && index < len(sd.languageCodes) {
		if code := sd.languageCodes[index]; code != sd.settings.GetLanguage() {
			sd.settings.SetLanguage(code)
			languageChanged = true
		}
	}

	sd.maxThreadsEntry.SetText(strconv.Itoa(stored.MaxThreads))
	sd.maxConcurrentEntry.SetText(strconv.Itoa(stored.MaxConcurrentTasks))

	if sd.onSaved != nil {
		sd.onSaved(languageChanged)
	}
	dialog.ShowInformation(sd.localization.GetText(KeySettings), message, sd.window)
}
