package download

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ytget/m3u8-downloader/internal/api"
	"github.com/ytget/m3u8-downloader/internal/config"
	"github.com/ytget/m3u8-downloader/internal/model"
	"github.com/ytget/m3u8-downloader/internal/store"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeRemote is an in-memory service. Calls can be made to fail per op and id,
// and held at a gate until the test releases them.
type fakeRemote struct {
	mu       sync.Mutex
	tasks    map[string]model.Task
	failures map[string]error
	gates    map[string]chan struct{}
	calls    []string
	created  []model.CreateRequest
	listErr  error
	getErr   error
	artifact []byte

	entered chan string
}

func newFakeRemote(tasks ...model.Task) *fakeRemote {
	f := &fakeRemote{
		tasks:    make(map[string]model.Task),
		failures: make(map[string]error),
		gates:    make(map[string]chan struct{}),
		entered:  make(chan string, 64),
	}
	for _, task := range tasks {
		f.tasks[task.ID] = task
	}
	return f
}

func (f *fakeRemote) failOn(op, id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op+":"+id] = err
}

// hold makes the next calls of op block until the returned func is called
func (f *fakeRemote) hold(op string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[op] = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.gates[op] == gate {
				delete(f.gates, op)
			}
			f.mu.Unlock()
			close(gate)
		})
	}
}

func (f *fakeRemote) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeRemote) setServerTask(task model.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.ID] = task
}

func (f *fakeRemote) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.calls {
		if call == op {
			n++
		}
	}
	return n
}

// enter records the call, signals it and waits at the op's gate
func (f *fakeRemote) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	gate := f.gates[op]
	f.mu.Unlock()

	select {
	case f.entered <- op:
	default:
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeRemote) failure(op, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[op+":"+id]
}

func (f *fakeRemote) transition(ctx context.Context, op, id string, apply func(*model.Task)) error {
	if err := f.enter(ctx, op); err != nil {
		return err
	}
	if err := f.failure(op, id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return &api.APIError{StatusCode: 404, Detail: "task not found"}
	}
	if apply != nil {
		apply(&task)
		f.tasks[id] = task
	}
	return nil
}

func (f *fakeRemote) CreateTask(ctx context.Context, req model.CreateRequest) (model.Task, error) {
	if err := f.enter(ctx, "create"); err != nil {
		return model.Task{}, err
	}
	if err := f.failure("create", req.URL); err != nil {
		return model.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	task := model.Task{
		ID:         "new-task",
		URL:        req.URL,
		Filename:   req.Filename,
		Status:     model.TaskStatusPending,
		CreatedAt:  baseTime,
		MaxThreads: req.MaxThreads,
		SpeedLimit: req.SpeedLimit,
	}
	f.tasks[task.ID] = task
	return task, nil
}

func (f *fakeRemote) ListTasks(ctx context.Context) ([]model.Task, error) {
	// the response reflects server state at dispatch time
	f.mu.Lock()
	snapshot := make([]model.Task, 0, len(f.tasks))
	for _, task := range f.tasks {
		snapshot = append(snapshot, task)
	}
	listErr := f.listErr
	f.mu.Unlock()

	if err := f.enter(ctx, "list"); err != nil {
		return nil, err
	}
	if listErr != nil {
		return nil, listErr
	}
	return snapshot, nil
}

func (f *fakeRemote) GetTask(ctx context.Context, id string) (model.Task, error) {
	if err := f.enter(ctx, "get"); err != nil {
		return model.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return model.Task{}, f.getErr
	}
	task, ok := f.tasks[id]
	if !ok {
		return model.Task{}, &api.APIError{StatusCode: 404, Detail: "task not found"}
	}
	return task, nil
}

func (f *fakeRemote) PauseTask(ctx context.Context, id string) error {
	return f.transition(ctx, "pause", id, func(t *model.Task) { t.Status = model.TaskStatusPaused })
}

func (f *fakeRemote) ResumeTask(ctx context.Context, id string) error {
	return f.transition(ctx, "resume", id, func(t *model.Task) { t.Status = model.TaskStatusQueued })
}

func (f *fakeRemote) DeleteTask(ctx context.Context, id string) error {
	return f.transition(ctx, "delete", id, func(t *model.Task) { t.Status = model.TaskStatusDeleted })
}

func (f *fakeRemote) RestoreTask(ctx context.Context, id string) error {
	return f.transition(ctx, "restore", id, func(t *model.Task) {
		if t.Progress >= 100 {
			t.Status = model.TaskStatusCompleted
		} else {
			t.Status = model.TaskStatusPaused
		}
	})
}

func (f *fakeRemote) PurgeTask(ctx context.Context, id string) error {
	if err := f.transition(ctx, "purge", id, nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, id)
	return nil
}

func (f *fakeRemote) GetSystemInfo(ctx context.Context) (model.SystemInfo, error) {
	if err := f.enter(ctx, "info"); err != nil {
		return model.SystemInfo{}, err
	}
	return model.SystemInfo{Version: "1.5.0", Status: "running"}, nil
}

func (f *fakeRemote) UpdateConcurrency(ctx context.Context, maxTasks int) error {
	return f.enter(ctx, "concurrency")
}

func (f *fakeRemote) DownloadFile(ctx context.Context, id string, w io.Writer) (int64, error) {
	if err := f.enter(ctx, "download"); err != nil {
		return 0, err
	}
	if err := f.failure("download", id); err != nil {
		return 0, err
	}
	f.mu.Lock()
	data := f.artifact
	f.mu.Unlock()
	n, err := w.Write(data)
	return int64(n), err
}

func (f *fakeRemote) CleanupAll(ctx context.Context) (api.CleanupResult, error) {
	if err := f.enter(ctx, "cleanup"); err != nil {
		return api.CleanupResult{}, err
	}
	if err := f.failure("cleanup", ""); err != nil {
		return api.CleanupResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.tasks)
	f.tasks = make(map[string]model.Task)
	return api.CleanupResult{Message: "done", DeletedRecords: n}, nil
}

// waitEntered blocks until op reaches the fake
func (f *fakeRemote) waitEntered(t *testing.T, op string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-f.entered:
			if got == op {
				return
			}
		case <-deadline:
			t.Fatalf("Expected %s call to reach the service", op)
		}
	}
}

type fakeSettings struct {
	mu    sync.Mutex
	cfg   config.Config
	dir   string
	saves int
}

func (s *fakeSettings) Load() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *fakeSettings) Save(cfg config.Config) config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clamp()
	s.saves++
	return s.cfg
}

func (s *fakeSettings) GetDownloadDirectory() string {
	return s.dir
}

type fakeStatus struct {
	mu     sync.Mutex
	stale  bool
	events []string
}

func (s *fakeStatus) MarkStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
	s.events = append(s.events, "stale")
}

func (s *fakeStatus) MarkFresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = false
	s.events = append(s.events, "fresh")
}

func (s *fakeStatus) isStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

type fakeSnapshot struct {
	mu    sync.Mutex
	saved [][]model.Task
}

func (s *fakeSnapshot) SaveTasks(ctx context.Context, tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, tasks)
	return nil
}

var errRejected = errors.New("rejected by service")

func testTask(id string, status model.TaskStatus, progress float64) model.Task {
	return model.Task{
		ID:         id,
		URL:        "https://x/" + id + ".m3u8",
		Filename:   id + ".mp4",
		Status:     status,
		Progress:   progress,
		CreatedAt:  baseTime,
		MaxThreads: 10,
	}
}

// newTestService seeds the local store and the fake service with tasks
func newTestService(t *testing.T, tasks ...model.Task) (*Service, *fakeRemote, *fakeSettings) {
	t.Helper()
	remote := newFakeRemote(tasks...)
	local := store.New()
	local.UpsertAll(tasks)
	settings := &fakeSettings{cfg: config.DefaultConfig(), dir: t.TempDir()}
	svc := NewService(remote, local, settings, Options{
		CommandTimeout:   time.Second,
		PurgeConcurrency: 2,
		PurgeRate:        1000,
		PurgeBurst:       10,
	})
	return svc, remote, settings
}

// async runs fn in a goroutine and returns a channel with its error
func async(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return done
}

func await(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Expected command to finish")
		return nil
	}
}
