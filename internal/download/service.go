package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ytget/m3u8-downloader/internal/api"
	"github.com/ytget/m3u8-downloader/internal/config"
	"github.com/ytget/m3u8-downloader/internal/model"
	"github.com/ytget/m3u8-downloader/internal/platform"
	"github.com/ytget/m3u8-downloader/internal/store"
)

// Options tunes the controller
type Options struct {
	CommandTimeout   time.Duration
	PurgeConcurrency int
	PurgeRate        float64 // purges per second in EmptyRecycleBin
	PurgeBurst       int
}

// OptionsFromRuntime copies the controller tunables from rt
func OptionsFromRuntime(rt config.Runtime) Options {
	return Options{
		CommandTimeout:   rt.CommandTimeout,
		PurgeConcurrency: rt.PurgeConcurrency,
		PurgeRate:        rt.PurgeRate,
		PurgeBurst:       rt.PurgeBurst,
	}
}

// CreateOptions describes a new task. SpeedLimit, Cookies and QualityURL are
// passed to the service verbatim.
type CreateOptions struct {
	URL        string
	Filename   string
	SpeedLimit *float64
	Cookies    string
	QualityURL string
}

// Service dispatches user commands against the remote service and keeps the
// task store consistent with their outcome
type Service struct {
	remote   api.Remote
	store    *store.TaskStore
	settings Settings
	ledger   *ledger

	// syncMutex makes "check ledger, then write store" atomic for both
	// commands and poll merges
	syncMutex sync.Mutex

	commandTimeout   time.Duration
	purgeConcurrency int
	purgeRate        float64
	purgeBurst       int

	onUpdate func() // callback for UI updates
}

// NewService creates a new controller
func NewService(remote api.Remote, tasks *store.TaskStore, settings Settings, opts Options) *Service {
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = config.DefaultCommandTimeout
	}
	if opts.PurgeConcurrency < 1 {
		opts.PurgeConcurrency = config.DefaultPurgeConcurrency
	}
	if opts.PurgeRate <= 0 {
		opts.PurgeRate = config.DefaultPurgeRate
	}
	if opts.PurgeBurst < 1 {
		opts.PurgeBurst = config.DefaultPurgeBurst
	}

	return &Service{
		remote:           remote,
		store:            tasks,
		settings:         settings,
		ledger:           newLedger(),
		commandTimeout:   opts.CommandTimeout,
		purgeConcurrency: opts.PurgeConcurrency,
		purgeRate:        opts.PurgeRate,
		purgeBurst:       opts.PurgeBurst,
	}
}

// SetUpdateCallback sets the callback function for store changes
func (s *Service) SetUpdateCallback(callback func()) {
	s.onUpdate = callback
}

func (s *Service) notifyUpdate() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

// Store returns the task store the service writes to
func (s *Service) Store() *store.TaskStore {
	return s.store
}

// IsPending reports whether a command for id awaits its response
func (s *Service) IsPending(id string) bool {
	return s.ledger.isPending(id)
}

// CreateTask validates opts, sends a creation request carrying the configured
// thread count and stores the returned task. Nothing is stored on failure.
func (s *Service) CreateTask(ctx context.Context, opts CreateOptions) (model.Task, error) {
	url := strings.TrimSpace(opts.URL)
	filename := strings.TrimSpace(opts.Filename)
	if url == "" {
		return model.Task{}, api.Validationf("url is required")
	}
	if filename == "" {
		return model.Task{}, api.Validationf("filename is required")
	}
	if opts.SpeedLimit != nil && *opts.SpeedLimit <= 0 {
		return model.Task{}, api.Validationf("speed limit must be positive")
	}

	req := model.CreateRequest{
		URL:        url,
		Filename:   filename,
		MaxThreads: s.settings.Load().MaxThreads,
		SpeedLimit: opts.SpeedLimit,
		Cookies:    strings.TrimSpace(opts.Cookies),
		QualityURL: strings.TrimSpace(opts.QualityURL),
	}

	callCtx, cancel := context.WithTimeout(ctx, s.commandTimeout)
	defer cancel()

	task, err := s.remote.CreateTask(callCtx, req)
	if err != nil {
		return model.Task{}, err
	}
	if task.ID == "" {
		return model.Task{}, fmt.Errorf("create task: service returned a task without id")
	}

	s.syncMutex.Lock()
	stored := s.store.Upsert(task)
	s.syncMutex.Unlock()
	s.notifyUpdate()

	log.Printf("task %s created: %s -> %s (threads=%d)", stored.ID, req.URL, req.Filename, req.MaxThreads)
	return stored, nil
}

// Pause pauses a downloading task; other statuses make it a no-op
func (s *Service) Pause(ctx context.Context, id string) error {
	return s.runOptimistic(ctx, "pause", id,
		func(current model.Task) (model.TaskStatus, bool) {
			return model.TaskStatusPaused, current.Status.CanPause()
		},
		func(ctx context.Context) (*model.Task, error) {
			return nil, s.remote.PauseTask(ctx, id)
		})
}

// Resume resumes a paused task; other statuses make it a no-op
func (s *Service) Resume(ctx context.Context, id string) error {
	return s.runOptimistic(ctx, "resume", id,
		func(current model.Task) (model.TaskStatus, bool) {
			return model.TaskStatusDownloading, current.Status.CanResume()
		},
		func(ctx context.Context) (*model.Task, error) {
			return nil, s.remote.ResumeTask(ctx, id)
		})
}

// SoftDelete moves a task to the recycle bin
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	return s.runOptimistic(ctx, "delete", id,
		func(current model.Task) (model.TaskStatus, bool) {
			return model.TaskStatusDeleted, !current.Status.InRecycleBin()
		},
		func(ctx context.Context) (*model.Task, error) {
			return nil, s.remote.DeleteTask(ctx, id)
		})
}

// Restore takes a task out of the recycle bin. The local placeholder status
// is only a guess; after the service confirms, its record for the task
// replaces the placeholder.
func (s *Service) Restore(ctx context.Context, id string) error {
	return s.runOptimistic(ctx, "restore", id,
		func(current model.Task) (model.TaskStatus, bool) {
			return restorePlaceholder(current), current.Status.InRecycleBin()
		},
		func(ctx context.Context) (*model.Task, error) {
			if err := s.remote.RestoreTask(ctx, id); err != nil {
				return nil, err
			}
			task, err := s.remote.GetTask(ctx, id)
			if err != nil {
				// restore succeeded; the next poll replaces the placeholder
				log.Printf("restore %s: refresh failed: %v", id, err)
				return nil, nil
			}
			return &task, nil
		})
}

// restorePlaceholder guesses where a restored task lands: finished artifacts
// come back completed, everything else paused.
func restorePlaceholder(task model.Task) model.TaskStatus {
	if task.Progress >= 100 {
		return model.TaskStatusCompleted
	}
	return model.TaskStatusPaused
}

// Purge permanently deletes a task from the recycle bin. The record is
// removed only after the service confirms.
func (s *Service) Purge(ctx context.Context, id string) error {
	s.syncMutex.Lock()
	current, ok := s.store.Get(id)
	if !ok || !current.Status.InRecycleBin() {
		s.syncMutex.Unlock()
		return nil
	}
	t := s.ledger.issue(id)
	s.syncMutex.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, s.commandTimeout)
	err := s.remote.PurgeTask(callCtx, id)
	cancel()

	s.syncMutex.Lock()
	if err == nil {
		s.store.Remove(id)
	}
	s.ledger.release(t)
	s.syncMutex.Unlock()

	if err != nil {
		log.Printf("purge %s failed: %v", id, err)
		return err
	}
	s.notifyUpdate()
	return nil
}

// Download saves the finished artifact of a completed task into the download
// directory and returns the local path. The store is not modified.
func (s *Service) Download(ctx context.Context, id, filename string) (string, error) {
	task, ok := s.store.Get(id)
	if !ok || !task.Status.CanDownload() {
		return "", nil
	}

	name := strings.TrimSpace(filename)
	if name == "" {
		name = task.GetDisplayTitle()
	}
	name = platform.SanitizeFilename(name)

	dir := s.settings.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return "", fmt.Errorf("download %s: %w", id, err)
	}
	target, err := platform.UniquePath(dir, name)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", id, err)
	}

	partial := target + ".part"
	file, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, platform.DefaultFilePermissions)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", id, err)
	}

	written, err := s.remote.DownloadFile(ctx, id, file)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(partial)
		return "", err
	}
	if err := os.Rename(partial, target); err != nil {
		_ = os.Remove(partial)
		return "", fmt.Errorf("download %s: %w", id, err)
	}

	log.Printf("task %s saved to %s (%d bytes)", id, filepath.Base(target), written)
	return target, nil
}

// ClearServerCache asks the service to drop every file and task record. On
// success the tasks known before the call are removed locally as well.
func (s *Service) ClearServerCache(ctx context.Context) (api.CleanupResult, error) {
	s.syncMutex.Lock()
	known := s.store.All()
	tickets := make([]ticket, 0, len(known))
	for _, task := range known {
		tickets = append(tickets, s.ledger.issue(task.ID))
	}
	s.syncMutex.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, s.commandTimeout)
	result, err := s.remote.CleanupAll(callCtx)
	cancel()

	s.syncMutex.Lock()
	for _, t := range tickets {
		if err == nil {
			s.store.Remove(t.id)
		}
		s.ledger.release(t)
	}
	s.syncMutex.Unlock()

	if err != nil {
		log.Printf("cleanup failed: %v", err)
		return api.CleanupResult{}, err
	}
	s.notifyUpdate()

	log.Printf("cleanup removed %d files and %d records", result.DeletedFiles, result.DeletedRecords)
	return result, nil
}

// UpdateSettings stores cfg (clamped) and returns the stored value
func (s *Service) UpdateSettings(cfg config.Config) config.Config {
	return s.settings.Save(cfg)
}

// reconcile merges one poll response. A record is skipped when the ledger
// shows a command for its task that the poll may predate.
func (s *Service) reconcile(mark uint64, tasks []model.Task) (merged, deferred int) {
	s.syncMutex.Lock()
	for _, task := range tasks {
		if task.ID == "" {
			continue
		}
		if s.ledger.shouldDefer(task.ID, mark) {
			deferred++
			continue
		}
		s.store.Upsert(task)
		merged++
	}
	s.syncMutex.Unlock()

	if merged > 0 {
		s.notifyUpdate()
	}
	return merged, deferred
}

// IsValidation reports whether err was rejected before reaching the service
func IsValidation(err error) bool {
	return errors.Is(err, api.ErrValidation)
}
