package ui

import (
	"os"
	"strings"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle           = "app_title"
	KeySettings           = "settings"
	KeyFile               = "file"
	KeyLanguage           = "language"
	KeyTabDownloading     = "tab_downloading"
	KeyTabCompleted       = "tab_completed"
	KeyTabRecycleBin      = "tab_recycle_bin"
	KeyEnterURL           = "enter_url"
	KeyFilename           = "filename"
	KeyCookies            = "cookies"
	KeySpeedLimit         = "speed_limit"
	KeyCreate             = "create"
	KeyProbe              = "probe"
	KeyQuality            = "quality"
	KeyPause              = "pause"
	KeyResume             = "resume"
	KeyDelete             = "delete"
	KeyRestore            = "restore"
	KeyPurge              = "purge"
	KeySaveFile           = "save_file"
	KeyReveal             = "reveal"
	KeyOpen               = "open"
	KeyEmptyRecycleBin    = "empty_recycle_bin"
	KeyClearServerCache   = "clear_server_cache"
	KeyConfirmPurge       = "confirm_purge"
	KeyConfirmEmpty       = "confirm_empty"
	KeyConfirmClear       = "confirm_clear"
	KeyMaxThreads         = "max_threads"
	KeyMaxConcurrent      = "max_concurrent"
	KeyDownloadDirectory  = "download_directory"
	KeyServerURL          = "server_url"
	KeyAutoReveal         = "auto_reveal"
	KeyRestartRequired    = "restart_required"
	KeySave               = "save"
	KeyCancel             = "cancel"
	KeyBrowse             = "browse"
	KeySettingsSaved      = "settings_saved"
	KeyTaskCreated        = "task_created"
	KeyDownloadCompleted  = "download_completed"
	KeyFileSaved          = "file_saved"
	KeyPleaseEnterURL     = "please_enter_url"
	KeyInvalidURL         = "invalid_url"
	KeyInvalidSpeedLimit  = "invalid_speed_limit"
	KeyCommandFailed      = "command_failed"
	KeyProbeFailed        = "probe_failed"
	KeyProbing            = "probing"
	KeyErrorOpeningFile   = "error_opening_file"
	KeyStatusUnknown      = "status_unknown"
	KeyStatusStale        = "status_stale"
	KeyStatusRunning      = "status_running"
	KeyStatusStopped      = "status_stopped"
	KeyActiveTasks        = "active_tasks"
	KeyEmptyView          = "empty_view"
	KeyCleanupDone        = "cleanup_done"
	KeyPurgePartialFailed = "purge_partial_failed"
)

// statusKey returns the text key of a task status label
func statusKey(status string) string {
	return "task_status_" + status
}

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// systemLanguage derives a supported language code from the locale environment
func systemLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if value := strings.ToLower(os.Getenv(key)); value != "" {
			if strings.HasPrefix(value, "zh") {
				return "zh"
			}
			return "en"
		}
	}
	return "en"
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// StatusText returns the label of a task status; unknown statuses are shown verbatim
func (l *Localization) StatusText(status string) string {
	if text := l.GetText(statusKey(status)); text != statusKey(status) {
		return text
	}
	return status
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"zh": "中文",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:           "M3U8 Downloader",
		KeySettings:           "Settings",
		KeyFile:               "File",
		KeyLanguage:           "Language",
		KeyTabDownloading:     "Downloading",
		KeyTabCompleted:       "Completed",
		KeyTabRecycleBin:      "Recycle Bin",
		KeyEnterURL:           "Enter m3u8 URL (https://example.com/index.m3u8)",
		KeyFilename:           "File name (e.g. video.mp4)",
		KeyCookies:            "Cookies (optional)",
		KeySpeedLimit:         "Speed limit, MB/s (optional)",
		KeyCreate:             "Download",
		KeyProbe:              "Probe",
		KeyQuality:            "Quality",
		KeyPause:              "Pause",
		KeyResume:             "Resume",
		KeyDelete:             "Delete",
		KeyRestore:            "Restore",
		KeyPurge:              "Delete forever",
		KeySaveFile:           "Save",
		KeyReveal:             "Reveal",
		KeyOpen:               "Open",
		KeyEmptyRecycleBin:    "Empty recycle bin",
		KeyClearServerCache:   "Clear server cache",
		KeyConfirmPurge:       "Permanently delete this task and its files?",
		KeyConfirmEmpty:       "Permanently delete every task in the recycle bin?",
		KeyConfirmClear:       "Delete all tasks and files on the server?",
		KeyMaxThreads:         "Threads per task (1-20)",
		KeyMaxConcurrent:      "Concurrent tasks (1-10)",
		KeyDownloadDirectory:  "Save directory",
		KeyServerURL:          "Service URL",
		KeyAutoReveal:         "Reveal saved files",
		KeyRestartRequired:    "The new service URL is used after restart",
		KeySave:               "Save",
		KeyCancel:             "Cancel",
		KeyBrowse:             "Browse",
		KeySettingsSaved:      "Settings saved",
		KeyTaskCreated:        "Task created",
		KeyDownloadCompleted:  "Download completed",
		KeyFileSaved:          "File saved",
		KeyPleaseEnterURL:     "Please enter a URL",
		KeyInvalidURL:         "Invalid URL",
		KeyInvalidSpeedLimit:  "Speed limit must be a positive number",
		KeyCommandFailed:      "Command failed",
		KeyProbeFailed:        "Probe failed",
		KeyProbing:            "Reading playlist...",
		KeyErrorOpeningFile:   "Error opening file",
		KeyStatusUnknown:      "Connecting...",
		KeyStatusStale:        "Service unreachable, data may be stale",
		KeyStatusRunning:      "Running",
		KeyStatusStopped:      "Stopped",
		KeyActiveTasks:        "active",
		KeyEmptyView:          "Nothing here",
		KeyCleanupDone:        "Server cache cleared",
		KeyPurgePartialFailed: "Some tasks could not be deleted",

		statusKey("pending"):     "Pending",
		statusKey("queued"):      "Queued",
		statusKey("downloading"): "Downloading",
		statusKey("paused"):      "Paused",
		statusKey("completed"):   "Completed",
		statusKey("failed"):      "Failed",
		statusKey("deleted"):     "Deleted",
	}

	l.texts["zh"] = map[string]string{
		KeyAppTitle:           "M3U8 下载器",
		KeySettings:           "设置",
		KeyFile:               "文件",
		KeyLanguage:           "语言",
		KeyTabDownloading:     "下载中",
		KeyTabCompleted:       "已完成",
		KeyTabRecycleBin:      "回收站",
		KeyEnterURL:           "输入 m3u8 链接 (https://example.com/index.m3u8)",
		KeyFilename:           "文件名 (例如 video.mp4)",
		KeyCookies:            "Cookies (可选)",
		KeySpeedLimit:         "限速 MB/s (可选)",
		KeyCreate:             "下载",
		KeyProbe:              "解析",
		KeyQuality:            "画质",
		KeyPause:              "暂停",
		KeyResume:             "继续",
		KeyDelete:             "删除",
		KeyRestore:            "恢复",
		KeyPurge:              "彻底删除",
		KeySaveFile:           "保存",
		KeyReveal:             "显示",
		KeyOpen:               "打开",
		KeyEmptyRecycleBin:    "清空回收站",
		KeyClearServerCache:   "清理服务器缓存",
		KeyConfirmPurge:       "彻底删除此任务及其文件？",
		KeyConfirmEmpty:       "彻底删除回收站中的所有任务？",
		KeyConfirmClear:       "删除服务器上的所有任务和文件？",
		KeyMaxThreads:         "单任务线程数 (1-20)",
		KeyMaxConcurrent:      "同时下载任务数 (1-10)",
		KeyDownloadDirectory:  "保存目录",
		KeyServerURL:          "服务地址",
		KeyAutoReveal:         "保存后显示文件",
		KeyRestartRequired:    "新的服务地址将在重启后生效",
		KeySave:               "保存",
		KeyCancel:             "取消",
		KeyBrowse:             "浏览",
		KeySettingsSaved:      "设置已保存",
		KeyTaskCreated:        "任务已创建",
		KeyDownloadCompleted:  "下载完成",
		KeyFileSaved:          "文件已保存",
		KeyPleaseEnterURL:     "请输入链接",
		KeyInvalidURL:         "链接无效",
		KeyInvalidSpeedLimit:  "限速必须为正数",
		KeyCommandFailed:      "操作失败",
		KeyProbeFailed:        "解析失败",
		KeyProbing:            "正在读取播放列表...",
		KeyErrorOpeningFile:   "打开文件出错",
		KeyStatusUnknown:      "连接中...",
		KeyStatusStale:        "无法连接服务，数据可能已过期",
		KeyStatusRunning:      "运行中",
		KeyStatusStopped:      "已停止",
		KeyActiveTasks:        "进行中",
		KeyEmptyView:          "暂无内容",
		KeyCleanupDone:        "服务器缓存已清理",
		KeyPurgePartialFailed: "部分任务删除失败",

		statusKey("pending"):     "等待中",
		statusKey("queued"):      "排队中",
		statusKey("downloading"): "下载中",
		statusKey("paused"):      "已暂停",
		statusKey("completed"):   "已完成",
		statusKey("failed"):      "失败",
		statusKey("deleted"):     "已删除",
	}
}
