package download

import (
	"context"
	"log"
	"time"

	"github.com/ytget/m3u8-downloader/internal/model"
)

// proposal returns the status a command moves a task to, or false when the
// task's current status does not permit the command
type proposal func(current model.Task) (model.TaskStatus, bool)

// remoteCall performs the command remotely. A non-nil task is the service's
// authoritative record after the call and replaces the optimistic one.
type remoteCall func(ctx context.Context) (*model.Task, error)

// runOptimistic applies the proposed status, performs call and reconciles the
// outcome. A command whose precondition fails is a no-op and returns nil.
//
// On failure the pre-command status is restored only while the record still
// carries this command's status, so an earlier command never undoes a later
// one and a record purged meanwhile is not recreated.
func (s *Service) runOptimistic(ctx context.Context, op, id string, propose proposal, call remoteCall) error {
	s.syncMutex.Lock()
	current, ok := s.store.Get(id)
	if !ok {
		s.syncMutex.Unlock()
		return nil
	}
	next, ok := propose(current)
	if !ok {
		s.syncMutex.Unlock()
		return nil
	}
	t := s.ledger.issue(id)
	previous := current.Status
	s.store.Update(id, func(task *model.Task) bool {
		task.Status = next
		return true
	})
	s.syncMutex.Unlock()
	s.notifyUpdate()

	callCtx, cancel := context.WithTimeout(ctx, s.commandTimeout)
	confirmed, err := call(callCtx)
	cancel()

	s.syncMutex.Lock()
	if err != nil {
		s.store.Update(id, func(task *model.Task) bool {
			if task.Status != next {
				return false
			}
			task.Status = previous
			return true
		})
		log.Printf("%s %s failed after %s: %v", op, id, time.Since(t.issuedAt).Round(time.Millisecond), err)
	} else if confirmed != nil {
		if existing, ok := s.store.Get(id); ok && existing.Status == next && confirmed.ID == id {
			s.store.Upsert(*confirmed)
		}
	}
	s.ledger.release(t)
	s.syncMutex.Unlock()
	s.notifyUpdate()

	return err
}
