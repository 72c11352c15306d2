package model

// TaskStatus represents the lifecycle state of a remote download task
type TaskStatus string

const (
	// TaskStatusPending means the service accepted the task but has not scheduled it
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusQueued means the task waits for a free concurrency slot
	TaskStatusQueued TaskStatus = "queued"

	// TaskStatusDownloading means segments are being fetched
	TaskStatusDownloading TaskStatus = "downloading"

	// TaskStatusPaused means the task was paused by the user
	TaskStatusPaused TaskStatus = "paused"

	// TaskStatusCompleted means the artifact is ready for retrieval
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed means the task stopped with an error
	TaskStatusFailed TaskStatus = "failed"

	// TaskStatusDeleted means the task sits in the recycle bin
	TaskStatusDeleted TaskStatus = "deleted"
)

// AllStatuses lists every known status in lifecycle order.
var AllStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusQueued,
	TaskStatusDownloading,
	TaskStatusPaused,
	TaskStatusCompleted,
	TaskStatusFailed,
	TaskStatusDeleted,
}

// Partition is the view a task belongs to.
type Partition int

const (
	PartitionActive Partition = iota
	PartitionCompleted
	PartitionRecycleBin
)

// String returns a short name for the partition
func (p Partition) String() string {
	switch p {
	case PartitionActive:
		return "active"
	case PartitionCompleted:
		return "completed"
	case PartitionRecycleBin:
		return "recycle_bin"
	default:
		return "unknown"
	}
}

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// Valid reports whether the status is one the client knows about
func (ts TaskStatus) Valid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusQueued, TaskStatusDownloading, TaskStatusPaused,
		TaskStatusCompleted, TaskStatusFailed, TaskStatusDeleted:
		return true
	}
	return false
}

// Partition maps a status to the view it is shown in. This is the only place
// that decides partition membership; unknown statuses stay in the active view.
func (ts TaskStatus) Partition() Partition {
	switch ts {
	case TaskStatusCompleted:
		return PartitionCompleted
	case TaskStatusDeleted:
		return PartitionRecycleBin
	case TaskStatusPending, TaskStatusQueued, TaskStatusDownloading, TaskStatusPaused, TaskStatusFailed:
		return PartitionActive
	default:
		return PartitionActive
	}
}

// IsActive returns true if the service is working on the task
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusQueued || ts == TaskStatusDownloading
}

// IsFinished returns true if the task will not progress without user action
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusFailed || ts == TaskStatusDeleted
}

// CanPause reports whether a pause command applies
func (ts TaskStatus) CanPause() bool {
	return ts == TaskStatusDownloading
}

// CanResume reports whether a resume command applies
func (ts TaskStatus) CanResume() bool {
	return ts == TaskStatusPaused
}

// CanDownload reports whether the finished artifact can be retrieved
func (ts TaskStatus) CanDownload() bool {
	return ts == TaskStatusCompleted
}

// InRecycleBin reports whether restore and purge apply
func (ts TaskStatus) InRecycleBin() bool {
	return ts == TaskStatusDeleted
}

// HasProgress reports whether the progress value carries meaning
func (ts TaskStatus) HasProgress() bool {
	return ts == TaskStatusDownloading || ts == TaskStatusPaused || ts == TaskStatusCompleted
}
