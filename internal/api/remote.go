package api

import (
	"context"
	"io"

	"github.com/ytget/m3u8-downloader/internal/model"
)

// Remote is the download service as seen by the client. Implementations must
// be safe for concurrent use.
type Remote interface {
	CreateTask(ctx context.Context, req model.CreateRequest) (model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	PauseTask(ctx context.Context, id string) error
	ResumeTask(ctx context.Context, id string) error
	// DeleteTask moves the task to the recycle bin
	DeleteTask(ctx context.Context, id string) error
	RestoreTask(ctx context.Context, id string) error
	// PurgeTask deletes the task and its artifact permanently
	PurgeTask(ctx context.Context, id string) error
	GetSystemInfo(ctx context.Context) (model.SystemInfo, error)
	UpdateConcurrency(ctx context.Context, maxTasks int) error
	// DownloadFile streams the finished artifact of a completed task into w
	DownloadFile(ctx context.Context, id string, w io.Writer) (int64, error)
	CleanupAll(ctx context.Context) (CleanupResult, error)
}

// CleanupResult reports what the service removed in CleanupAll
type CleanupResult struct {
	Message        string `json:"message"`
	DeletedFiles   int    `json:"deleted_files"`
	DeletedRecords int    `json:"deleted_records"`
}
