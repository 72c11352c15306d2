package store

import (
	"sort"
	"sync"

	"github.com/ytget/m3u8-downloader/internal/model"
)

// TaskStore is the authoritative local map of task id to task record. Views
// are snapshots; callers never hold references into the map.
type TaskStore struct {
	tasks      map[string]model.Task
	tasksMutex sync.RWMutex
}

// New creates an empty store
func New() *TaskStore {
	return &TaskStore{tasks: make(map[string]model.Task)}
}

// Upsert inserts or replaces the record for task.ID and returns the stored
// value. Progress of a task that is downloading before and after the write
// never decreases.
func (s *TaskStore) Upsert(task model.Task) model.Task {
	task = task.Normalize()

	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	if prev, ok := s.tasks[task.ID]; ok {
		if prev.Status == model.TaskStatusDownloading &&
			task.Status == model.TaskStatusDownloading &&
			task.Progress < prev.Progress {
			task.Progress = prev.Progress
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = prev.CreatedAt
		}
	}
	s.tasks[task.ID] = task
	return task
}

// UpsertAll applies Upsert to each record
func (s *TaskStore) UpsertAll(tasks []model.Task) {
	for _, task := range tasks {
		s.Upsert(task)
	}
}

// Update applies fn to the record for id under the write lock. It reports
// false and leaves the store untouched when id is absent or fn declines.
func (s *TaskStore) Update(id string, fn func(*model.Task) bool) (model.Task, bool) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	if !fn(&task) {
		return task, false
	}
	task = task.Normalize()
	s.tasks[id] = task
	return task, true
}

// Remove deletes the record for id; it reports whether one existed
func (s *TaskStore) Remove(id string) bool {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	_, ok := s.tasks[id]
	delete(s.tasks, id)
	return ok
}

// Get returns a copy of the record for id
func (s *TaskStore) Get(id string) (model.Task, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, ok := s.tasks[id]
	return task, ok
}

// Len returns the number of records
func (s *TaskStore) Len() int {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	return len(s.tasks)
}

// All returns every record, newest first
func (s *TaskStore) All() []model.Task {
	return s.collect(func(model.Task) bool { return true })
}

// View returns the records belonging to partition p, newest first
func (s *TaskStore) View(p model.Partition) []model.Task {
	return s.collect(func(task model.Task) bool {
		return task.Status.Partition() == p
	})
}

// ViewActive returns tasks that are pending, queued, downloading, paused or failed
func (s *TaskStore) ViewActive() []model.Task {
	return s.View(model.PartitionActive)
}

// ViewCompleted returns completed tasks
func (s *TaskStore) ViewCompleted() []model.Task {
	return s.View(model.PartitionCompleted)
}

// ViewRecycleBin returns soft-deleted tasks
func (s *TaskStore) ViewRecycleBin() []model.Task {
	return s.View(model.PartitionRecycleBin)
}

func (s *TaskStore) collect(keep func(model.Task) bool) []model.Task {
	s.tasksMutex.RLock()
	result := make([]model.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if keep(task) {
			result = append(result, task)
		}
	}
	s.tasksMutex.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}
