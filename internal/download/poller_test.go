package download

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ytget/m3u8-downloader/internal/model"
)

func newTestPoller(svc *Service, remote *fakeRemote) (*Poller, *fakeStatus, *fakeSnapshot) {
	status := &fakeStatus{}
	snapshot := &fakeSnapshot{}
	poller := NewPoller(svc, remote, PollerOptions{
		Interval:   5 * time.Millisecond,
		Timeout:    time.Second,
		StaleAfter: 3,
		Status:     status,
		Snapshot:   snapshot,
	})
	return poller, status, snapshot
}

func TestPoll_MergesServerState(t *testing.T) {
	svc, remote, _ := newTestService(t, testTask("x", model.TaskStatusQueued, 0))
	poller, status, snapshot := newTestPoller(svc, remote)

	remote.setServerTask(testTask("x", model.TaskStatusDownloading, 25))
	remote.setServerTask(testTask("y", model.TaskStatusCompleted, 90))

	if !poller.PollOnce(context.Background()) {
		t.Fatal("Expected poll to run")
	}

	x, _ := svc.Store().Get("x")
	if x.Status != model.TaskStatusDownloading || x.Progress != 25 {
		t.Errorf("Expected x downloading at 25, got %s at %v", x.Status, x.Progress)
	}
	y, ok := svc.Store().Get("y")
	if !ok || y.Progress != 100 {
		t.Errorf("Expected y merged with progress 100, got %v %v", ok, y.Progress)
	}
	if status.isStale() {
		t.Error("Expected fresh status after a successful poll")
	}
	if len(snapshot.saved) != 1 || len(snapshot.saved[0]) != 2 {
		t.Errorf("Expected one snapshot of 2 tasks, got %v", snapshot.saved)
	}
}

func TestPoll_CommandAfterDispatchWins(t *testing.T) {
	svc, remote, _ := newTestService(t, testTask("x", model.TaskStatusDownloading, 40))
	poller, _, _ := newTestPoller(svc, remote)

	// poll dispatched at T0, sees x downloading
	release := remote.hold("list")
	polled := async(func() error {
		poller.PollOnce(context.Background())
		return nil
	})
	remote.waitEntered(t, "list")

	// pause dispatched at T1 > T0 and confirmed before the poll returns
	if err := svc.Pause(context.Background(), "x"); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	release()
	await(t, polled)

	task, _ := svc.Store().Get("x")
	if task.Status != model.TaskStatusPaused {
		t.Errorf("Expected stale poll not to overwrite pause, got %s", task.Status)
	}

	// the next poll postdates the command and merges normally
	poller.PollOnce(context.Background())
	task, _ = svc.Store().Get("x")
	if task.Status != model.TaskStatusPaused {
		t.Errorf("Expected paused from server, got %s", task.Status)
	}
}

func TestPoll_CommandResolvedDuringPollWins(t *testing.T) {
	svc, remote, _ := newTestService(t, testTask("x", model.TaskStatusDownloading, 40))
	poller, _, _ := newTestPoller(svc, remote)

	// pause in flight
	releasePause := remote.hold("pause")
	paused := async(func() error { return svc.Pause(context.Background(), "x") })
	remote.waitEntered(t, "pause")

	// poll dispatched while the pause is unresolved, sees x downloading
	releaseList := remote.hold("list")
	polled := async(func() error {
		poller.PollOnce(context.Background())
		return nil
	})
	remote.waitEntered(t, "list")

	// the server confirms the pause before the poll returns
	releasePause()
	if err := await(t, paused); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	releaseList()
	await(t, polled)

	task, _ := svc.Store().Get("x")
	if task.Status != model.TaskStatusPaused {
		t.Errorf("Expected confirmed pause to survive a poll dispatched mid-command, got %s", task.Status)
	}

	poller.PollOnce(context.Background())
	task, _ = svc.Store().Get("x")
	if task.Status != model.TaskStatusPaused {
		t.Errorf("Expected paused from server on the next poll, got %s", task.Status)
	}
}

func TestPoll_PendingCommandDefersMerge(t *testing.T) {
	svc, remote, _ := newTestService(t, testTask("x", model.TaskStatusDownloading, 40))
	poller, _, _ := newTestPoller(svc, remote)

	release := remote.hold("pause")
	paused := async(func() error { return svc.Pause(context.Background(), "x") })
	remote.waitEntered(t, "pause")

	poller.PollOnce(context.Background())

	task, _ := svc.Store().Get("x")
	if task.Status != model.TaskStatusPaused {
		t.Errorf("Expected optimistic pause to survive poll, got %s", task.Status)
	}

	release()
	if err := await(t, paused); err != nil {
		t.Fatalf("Pause: %v", err)
	}
}

func TestPoll_DeferralDoesNotBlockOtherTasks(t *testing.T) {
	svc, remote, _ := newTestService(t,
		testTask("x", model.TaskStatusDownloading, 40),
		testTask("y", model.TaskStatusDownloading, 10),
	)
	poller, _, _ := newTestPoller(svc, remote)

	release := remote.hold("pause")
	paused := async(func() error { return svc.Pause(context.Background(), "x") })
	remote.waitEntered(t, "pause")

	remote.setServerTask(testTask("y", model.TaskStatusDownloading, 70))
	poller.PollOnce(context.Background())

	y, _ := svc.Store().Get("y")
	if y.Progress != 70 {
		t.Errorf("Expected y to merge, got progress %v", y.Progress)
	}

	release()
	await(t, paused)
}

func TestPoll_ProgressMonotonic(t *testing.T) {
	svc, remote, _ := newTestService(t, testTask("x", model.TaskStatusDownloading, 0))
	poller, _, _ := newTestPoller(svc, remote)

	reported := []float64{40, 35, 60, 59, 100}
	expected := []float64{40, 40, 60, 60, 100}
	for i, progress := range reported {
		remote.setServerTask(testTask("x", model.TaskStatusDownloading, progress))
		poller.PollOnce(context.Background())

		task, _ := svc.Store().Get("x")
		if task.Progress != expected[i] {
			t.Errorf("poll %d: progress = %v, expected %v", i, task.Progress, expected[i])
		}
	}
}

func TestPoll_AbsentTasksUntouched(t *testing.T) {
	svc, remote, _ := newTestService(t)
	svc.Store().Upsert(testTask("local-only", model.TaskStatusPaused, 30))
	poller, _, _ := newTestPoller(svc, remote)

	poller.PollOnce(context.Background())

	task, ok := svc.Store().Get("local-only")
	if !ok || task.Status != model.TaskStatusPaused {
		t.Errorf("Expected absent task to be left alone, got %v %s", ok, task.Status)
	}
}

func TestPoll_FailuresMarkStale(t *testing.T) {
	svc, remote, _ := newTestService(t, testTask("x", model.TaskStatusDownloading, 40))
	poller, status, snapshot := newTestPoller(svc, remote)
	remote.setListErr(errors.New("connection refused"))

	for i := 1; i <= 3; i++ {
		poller.PollOnce(context.Background())
		if poller.ConsecutiveFailures() != i {
			t.Errorf("Expected %d consecutive failures, got %d", i, poller.ConsecutiveFailures())
		}
		if stale := status.isStale(); stale != (i >= 3) {
			t.Errorf("After %d failures: stale = %v", i, stale)
		}
	}

	if svc.Store().Len() != 1 {
		t.Error("Expected failed polls to keep the store")
	}
	if len(snapshot.saved) != 0 {
		t.Error("Expected no snapshot after failed polls")
	}

	remote.setListErr(nil)
	poller.PollOnce(context.Background())
	if status.isStale() || poller.ConsecutiveFailures() != 0 {
		t.Error("Expected a successful poll to clear the stale state")
	}
}

func TestPoll_SkipsWhileInFlight(t *testing.T) {
	svc, remote, _ := newTestService(t)
	poller, _, _ := newTestPoller(svc, remote)

	release := remote.hold("list")
	first := async(func() error {
		poller.PollOnce(context.Background())
		return nil
	})
	remote.waitEntered(t, "list")

	if poller.PollOnce(context.Background()) {
		t.Error("Expected overlapping poll to be skipped")
	}

	release()
	await(t, first)

	if remote.callCount("list") != 1 {
		t.Errorf("Expected a single fetch, got %d", remote.callCount("list"))
	}
}

func TestPoller_StartStop(t *testing.T) {
	svc, remote, _ := newTestService(t)
	poller, _, _ := newTestPoller(svc, remote)

	poller.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for remote.callCount("list") < 3 {
		if time.Now().After(deadline) {
			t.Fatal("Expected repeated polls")
		}
		time.Sleep(5 * time.Millisecond)
	}

	poller.Stop()
	after := remote.callCount("list")
	time.Sleep(30 * time.Millisecond)
	if remote.callCount("list") != after {
		t.Error("Expected no polls after Stop")
	}

	// second Stop is harmless
	poller.Stop()
}
