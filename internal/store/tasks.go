// Package store owns the on-disk state: the task list, the task action
// log, deadlines and habit records. Each store serializes access with a
// lock and rewrites its file whole, so readers never see partial writes
// from this process.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
)

// ErrNotFound indicates a lookup matched nothing in the store.
var ErrNotFound = errors.New("not found")

// Task is one tracked task. Priorities above 7 are treated as urgent.
type Task struct {
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

// UrgentPriority is the exclusive priority threshold for urgent tasks.
const UrgentPriority = 7

// Tasks is the JSON-backed task list.
type Tasks struct {
	mu   sync.RWMutex
	path string
}

// NewTasks creates a task store at the given path.
func NewTasks(path string) *Tasks {
	return &Tasks{path: path}
}

// List returns all tasks sorted by priority, highest first. Ties keep
// file order.
func (s *Tasks) List() ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority > tasks[j].Priority
	})
	return tasks, nil
}

// Add inserts a task, or updates the priority of an existing task with
// the same description. It reports whether an existing task was updated
// and, if so, its previous priority.
func (s *Tasks) Add(description string, priority int) (updated bool, oldPriority int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return false, 0, err
	}
	for i := range tasks {
		if tasks[i].Description == description {
			old := tasks[i].Priority
			tasks[i].Priority = priority
			return true, old, s.save(tasks)
		}
	}
	tasks = append(tasks, Task{Description: description, Priority: priority})
	return false, 0, s.save(tasks)
}

// Remove deletes a task by 1-based position in the priority-sorted
// listing, or by exact description. Numeric references are tried as
// positions first.
func (s *Tasks) Remove(ref string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return Task{}, err
	}

	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	var target string
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(sorted) {
		target = sorted[n-1].Description
	} else {
		target = ref
	}

	for i := range tasks {
		if tasks[i].Description == target {
			removed := tasks[i]
			tasks = append(tasks[:i], tasks[i+1:]...)
			if err := s.save(tasks); err != nil {
				return Task{}, err
			}
			return removed, nil
		}
	}
	return Task{}, fmt.Errorf("%w: task %q", ErrNotFound, ref)
}

// Urgent returns tasks with priority above the urgency threshold,
// highest first.
func (s *Tasks) Urgent() ([]Task, error) {
	tasks, err := s.List()
	if err != nil {
		return nil, err
	}
	urgent := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Priority > UrgentPriority {
			urgent = append(urgent, t)
		}
	}
	return urgent, nil
}

func (s *Tasks) load() ([]Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Task{}, nil
		}
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	return tasks, nil
}

func (s *Tasks) save(tasks []Task) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create tasks dir: %w", err)
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}
