package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// BulkError reports the tasks a fan-out command could not process
type BulkError struct {
	Op     string
	Failed []string
	Err    error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("%s failed for %d task(s): %s", e.Op, len(e.Failed), strings.Join(e.Failed, ", "))
}

func (e *BulkError) Unwrap() error {
	return e.Err
}

// EmptyRecycleBin purges every task currently in the recycle bin. Purges run
// with bounded concurrency and rate; failed tasks stay in the recycle bin and
// are reported together in a *BulkError.
func (s *Service) EmptyRecycleBin(ctx context.Context) error {
	bin := s.store.ViewRecycleBin()
	if len(bin) == 0 {
		return nil
	}

	limiter := rate.NewLimiter(rate.Limit(s.purgeRate), s.purgeBurst)

	var (
		mu     sync.Mutex
		failed []string
		errs   []error
	)
	record := func(id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, id)
		errs = append(errs, fmt.Errorf("%s: %w", id, err))
	}

	var g errgroup.Group
	g.SetLimit(s.purgeConcurrency)
	for _, task := range bin {
		id := task.ID
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				record(id, err)
				return nil
			}
			if err := s.Purge(ctx, id); err != nil {
				record(id, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) == 0 {
		log.Printf("recycle bin emptied: %d task(s) purged", len(bin))
		return nil
	}

	sort.Strings(failed)
	log.Printf("recycle bin: %d of %d purges failed", len(failed), len(bin))
	return &BulkError{Op: "empty recycle bin", Failed: failed, Err: errors.Join(errs...)}
}
