package download

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ticket identifies one dispatched command against one task
type ticket struct {
	id       string
	owner    uuid.UUID
	seq      uint64
	issuedAt time.Time
}

// ledger records which commands were dispatched for which task, in dispatch
// order. It is the only place that decides whether a poll result may be
// merged for a task.
type ledger struct {
	mu  sync.Mutex
	seq uint64

	// latest holds the sequence of the newest command per task; entries
	// survive release until the next poll mark makes them irrelevant
	latest  map[string]uint64
	pending map[string]map[uuid.UUID]ticket
}

func newLedger() *ledger {
	return &ledger{
		latest:  make(map[string]uint64),
		pending: make(map[string]map[uuid.UUID]ticket),
	}
}

// issue records a new command for id
func (l *ledger) issue(id string) ticket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	t := ticket{id: id, owner: uuid.New(), seq: l.seq, issuedAt: time.Now()}

	l.latest[id] = t.seq
	owners, ok := l.pending[id]
	if !ok {
		owners = make(map[uuid.UUID]ticket)
		l.pending[id] = owners
	}
	owners[t.owner] = t
	return t
}

// release marks the command's response as applied. The release takes a
// sequence of its own: a poll dispatched while the command was in flight
// predates the applied response and must not overwrite it.
func (l *ledger) release(t ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()

	owners, ok := l.pending[t.id]
	if !ok {
		return
	}
	if _, held := owners[t.owner]; !held {
		return
	}
	delete(owners, t.owner)
	if len(owners) == 0 {
		delete(l.pending, t.id)
	}

	l.seq++
	l.latest[t.id] = l.seq
}

// mark returns the sequence a poll is dispatched at. Every resolved command
// is at or below the mark and can no longer conflict with this or any later
// poll, so its entry is dropped.
func (l *ledger) mark() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id := range l.latest {
		if len(l.pending[id]) == 0 {
			delete(l.latest, id)
		}
	}
	return l.seq
}

// shouldDefer reports whether a poll dispatched at mark must skip id: a
// command is still unresolved, or one was dispatched or resolved after the
// poll.
func (l *ledger) shouldDefer(id string, mark uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending[id]) > 0 {
		return true
	}
	return l.latest[id] > mark
}

func (l *ledger) isPending(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending[id]) > 0
}
