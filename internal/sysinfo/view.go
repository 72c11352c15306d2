package sysinfo

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ytget/m3u8-downloader/internal/model"
)

// State describes how trustworthy the current snapshot is
type State int

const (
	// StateUnknown means no snapshot was fetched yet
	StateUnknown State = iota
	// StateLive means the last contact with the service succeeded
	StateLive
	// StateStale means polls have been failing; the snapshot is old
	StateStale
)

func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Source fetches the service's system information
type Source interface {
	GetSystemInfo(ctx context.Context) (model.SystemInfo, error)
}

// View holds the latest SystemInfo snapshot. Snapshots are replaced whole.
type View struct {
	source Source

	mu        sync.RWMutex
	info      model.SystemInfo
	fetched   bool
	stale     bool
	updatedAt time.Time
	onChange  func()

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewView creates a view fed by source
func NewView(source Source) *View {
	return &View{source: source}
}

// SetChangeCallback sets the function called after every change
func (v *View) SetChangeCallback(callback func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = callback
}

// Refresh fetches a new snapshot. On failure the previous one is kept.
func (v *View) Refresh(ctx context.Context) error {
	info, err := v.source.GetSystemInfo(ctx)
	if err != nil {
		return fmt.Errorf("refresh system info: %w", err)
	}

	v.mu.Lock()
	v.info = info
	v.fetched = true
	v.updatedAt = time.Now()
	callback := v.onChange
	v.mu.Unlock()

	if callback != nil {
		callback()
	}
	return nil
}

// MarkStale flags the snapshot as out of date
func (v *View) MarkStale() {
	v.setStale(true)
}

// MarkFresh clears the stale flag
func (v *View) MarkFresh() {
	v.setStale(false)
}

func (v *View) setStale(stale bool) {
	v.mu.Lock()
	changed := v.stale != stale
	v.stale = stale
	callback := v.onChange
	v.mu.Unlock()

	if changed && callback != nil {
		callback()
	}
}

// Snapshot returns the current info and its state
func (v *View) Snapshot() (model.SystemInfo, State) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	switch {
	case v.stale:
		return v.info, StateStale
	case v.fetched:
		return v.info, StateLive
	default:
		return v.info, StateUnknown
	}
}

// UpdatedAt returns when the snapshot was last replaced
func (v *View) UpdatedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.updatedAt
}

// Start refreshes immediately and then every interval until Stop
func (v *View) Start(ctx context.Context, interval time.Duration) {
	v.loopMu.Lock()
	defer v.loopMu.Unlock()
	if v.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := v.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.Printf("sysinfo: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}(v.done)
}

// Stop ends the refresh loop
func (v *View) Stop() {
	v.loopMu.Lock()
	cancel, done := v.cancel, v.done
	v.cancel, v.done = nil, nil
	v.loopMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
