package download

import (
	"context"

	"github.com/ytget/m3u8-downloader/internal/api"
	"github.com/ytget/m3u8-downloader/internal/config"
	"github.com/ytget/m3u8-downloader/internal/model"
)

// Controller is the command surface the UI drives
type Controller interface {
	SetUpdateCallback(func())
	CreateTask(ctx context.Context, opts CreateOptions) (model.Task, error)
	Pause(ctx context.Context, id string) error
	Resume(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	EmptyRecycleBin(ctx context.Context) error
	Download(ctx context.Context, id, filename string) (string, error)
	ClearServerCache(ctx context.Context) (api.CleanupResult, error)
	UpdateSettings(cfg config.Config) config.Config
	IsPending(id string) bool
}

// Settings is the configuration the controller reads
type Settings interface {
	Load() config.Config
	Save(cfg config.Config) config.Config
	GetDownloadDirectory() string
}

// StatusSink receives the poller's view of service reachability
type StatusSink interface {
	MarkStale()
	MarkFresh()
}

// Snapshotter persists the merged task list after each successful poll
type Snapshotter interface {
	SaveTasks(ctx context.Context, tasks []model.Task) error
}
