package ui

// Package ui contains the Fyne-based desktop user interface for the application.
// It renders the Downloading, Completed and Recycle Bin views of the task store,
// forwards user actions to the download controller and shows the service status.
// All UI strings are localized via Localization.
