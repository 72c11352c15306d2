package model

// SystemInfo is a read-only snapshot of the remote service state
type SystemInfo struct {
	Version            string `json:"version"`
	Status             string `json:"status"` // "running" or "stopped"
	ActiveTasks        int    `json:"active_tasks"`
	TotalTasks         int    `json:"total_tasks"`
	DownloadDir        string `json:"download_dir"`
	DiskUsage          string `json:"disk_usage,omitempty"`
	FileCount          int    `json:"file_count"`
	MaxConcurrentTasks int    `json:"max_concurrent_tasks,omitempty"`
	MaxConcurrentLimit int    `json:"max_concurrent_limit,omitempty"`
	NextCleanup        string `json:"next_cleanup,omitempty"`
}

// IsRunning reports whether the service declared itself running
func (s *SystemInfo) IsRunning() bool {
	return s.Status == "running"
}
