package download

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ytget/m3u8-downloader/internal/api"
	"github.com/ytget/m3u8-downloader/internal/config"
)

// Poller periodically fetches the remote task list and merges it through the
// service. At most one poll is in flight; a tick that finds one running is
// skipped.
type Poller struct {
	service    *Service
	remote     api.Remote
	interval   time.Duration
	timeout    time.Duration
	staleAfter int

	status   StatusSink
	snapshot Snapshotter

	inFlight atomic.Bool
	failures atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// PollerOptions configures a Poller
type PollerOptions struct {
	Interval   time.Duration
	Timeout    time.Duration // per fetch
	StaleAfter int           // consecutive failures before MarkStale
	Status     StatusSink
	Snapshot   Snapshotter
}

// NewPoller creates a poller merging into service
func NewPoller(service *Service, remote api.Remote, opts PollerOptions) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = config.DefaultPollInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultCommandTimeout
	}
	if opts.StaleAfter < 1 {
		opts.StaleAfter = config.DefaultStaleAfter
	}
	return &Poller{
		service:    service,
		remote:     remote,
		interval:   opts.Interval,
		timeout:    opts.Timeout,
		staleAfter: opts.StaleAfter,
		status:     opts.Status,
		snapshot:   opts.Snapshot,
	}
}

// Start polls immediately and then on every interval until Stop or ctx ends
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(ctx, p.done)
}

// Stop ends the loop and waits for it to exit
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	var polls sync.WaitGroup
	defer polls.Wait()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		// Polls run in their own goroutine so a slow round trip lets the
		// next tick observe the in-flight flag and skip.
		polls.Add(1)
		go func() {
			defer polls.Done()
			p.PollOnce(ctx)
		}()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PollOnce performs one fetch and merge. It returns false without doing
// anything when another poll is in flight.
func (p *Poller) PollOnce(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer p.inFlight.Store(false)

	mark := p.service.ledger.mark()

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	tasks, err := p.remote.ListTasks(fetchCtx)
	cancel()

	if err != nil {
		failures := int(p.failures.Add(1))
		log.Printf("poll failed (%d in a row): %v", failures, err)
		if failures >= p.staleAfter && p.status != nil {
			p.status.MarkStale()
		}
		return true
	}

	if p.failures.Swap(0) > 0 {
		log.Printf("poll recovered")
	}
	if p.status != nil {
		p.status.MarkFresh()
	}

	merged, deferred := p.service.reconcile(mark, tasks)
	if deferred > 0 {
		log.Printf("poll merged %d task(s), deferred %d with newer commands", merged, deferred)
	}

	if p.snapshot != nil {
		if err := p.snapshot.SaveTasks(ctx, p.service.store.All()); err != nil {
			log.Printf("snapshot save failed: %v", err)
		}
	}
	return true
}

// ConsecutiveFailures returns the current run of failed polls
func (p *Poller) ConsecutiveFailures() int {
	return int(p.failures.Load())
}
