// Package board holds client-side state for the tracker: cached collections
// fetched through the API client, optimistic task mutations and the derived
// filtered, sorted and grouped views.
package board

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/konstanta-tech/tracker/internal/client"
	"github.com/konstanta-tech/tracker/internal/models"
)

// TaskAPI is the part of *client.Client the task store needs.
type TaskAPI interface {
	ListTasks(ctx context.Context, q client.TaskQuery) ([]models.Task, error)
	CreateTask(ctx context.Context, in client.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id uint, patch client.TaskPatch) (*models.Task, error)
	MoveTask(ctx context.Context, id uint, status string, position int) (*models.Task, error)
	DeleteTask(ctx context.Context, id uint) error
}

// ErrTaskNotLoaded is returned for ids the store does not hold.
type ErrTaskNotLoaded uint

func (e ErrTaskNotLoaded) Error() string {
	return fmt.Sprintf("task %d is not loaded", uint(e))
}

// TaskStore caches tasks and applies mutations optimistically. Reads swallow
// errors into Err; writes record and return them.
type TaskStore struct {
	api TaskAPI
	log zerolog.Logger

	mu      sync.RWMutex
	tasks   []models.Task
	filters Filters
	loading bool
	err     string
}

func NewTaskStore(api TaskAPI, log zerolog.Logger) *TaskStore {
	return &TaskStore{api: api, log: log, tasks: []models.Task{}}
}

// Fetch reloads the tasks matching the stored filters. On failure the
// previous tasks are kept.
func (s *TaskStore) Fetch(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	f := s.filters
	s.mu.Unlock()

	tasks, err := s.api.ListTasks(ctx, client.TaskQuery{
		Status:     f.Status,
		Priority:   f.Priority,
		AssignedTo: f.AssignedTo,
		ProjectID:  f.ProjectID,
		Search:     f.Search,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
		s.log.Error().Err(err).Msg("fetch tasks failed")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	s.tasks = tasks
	s.err = ""
}

func (s *TaskStore) Create(ctx context.Context, in client.TaskInput) (*models.Task, error) {
	task, err := s.api.CreateTask(ctx, in)
	if err != nil {
		s.fail("create task failed", err)
		return nil, err
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, *task)
	s.err = ""
	s.mu.Unlock()
	return task, nil
}

// Move places a task at position (1-based, clamped) in the status column,
// renumbers that column and compacts the one it left. Every task whose status
// or position changed is sent to the server; if any request fails all of
// them are restored to their state before the move.
func (s *TaskStore) Move(ctx context.Context, id uint, status string, position int) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrTaskNotLoaded(id)
	}
	source := s.tasks[idx].Status

	snapshot := make(map[uint]models.Task)
	for _, t := range s.tasks {
		if t.Status == source || t.Status == status {
			snapshot[t.ID] = t
		}
	}

	moved := s.tasks[idx]
	dest := s.column(status, id)
	at := clamp(position-1, 0, len(dest))
	dest = append(dest[:at], append([]uint{id}, dest[at:]...)...)

	s.tasks[idx].Status = status
	s.tasks[idx].Completed = status == models.TaskStatusDone
	s.renumber(dest)
	if source != status {
		s.renumber(s.column(source, 0))
	}

	var changed []models.Task
	for _, t := range s.tasks {
		before, ok := snapshot[t.ID]
		if ok && (before.Status != t.Status || before.Position != t.Position) {
			changed = append(changed, t)
		}
	}
	s.mu.Unlock()

	updated := make([]models.Task, 0, len(changed))
	for _, t := range changed {
		pos := t.Position
		patch := client.TaskPatch{Position: &pos}
		if t.ID == moved.ID && source != status {
			st, done := t.Status, t.Completed
			patch.Status = &st
			patch.Completed = &done
		}
		task, err := s.api.UpdateTask(ctx, t.ID, patch)
		if err != nil {
			s.mu.Lock()
			for i := range s.tasks {
				if before, ok := snapshot[s.tasks[i].ID]; ok {
					s.tasks[i] = before
				}
			}
			s.err = err.Error()
			s.mu.Unlock()
			s.log.Error().Err(err).Uint("task_id", id).Str("status", status).Int("position", position).Msg("move task failed, restored")
			return err
		}
		updated = append(updated, *task)
	}

	s.mu.Lock()
	for _, t := range updated {
		s.replace(t)
	}
	s.err = ""
	s.mu.Unlock()
	return nil
}

// MoveAtomic lets the server place the task and renumber both columns in
// one transaction, then refetches so the cache holds the server's order.
// Nothing changes locally before the server answers.
func (s *TaskStore) MoveAtomic(ctx context.Context, id uint, status string, position int) error {
	if _, ok := s.Get(id); !ok {
		return ErrTaskNotLoaded(id)
	}
	if position < 0 {
		position = 0
	}

	task, err := s.api.MoveTask(ctx, id, status, position)
	if err != nil {
		s.mu.Lock()
		s.err = err.Error()
		s.mu.Unlock()
		s.log.Error().Err(err).Uint("task_id", id).Str("status", status).Int("position", position).Msg("move task failed")
		return err
	}

	s.mu.Lock()
	s.replace(*task)
	s.err = ""
	s.mu.Unlock()
	s.Fetch(ctx)
	return nil
}

// Update applies patch locally, then replaces the task with the server's
// version. A failed request restores the task as it was.
func (s *TaskStore) Update(ctx context.Context, id uint, patch client.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrTaskNotLoaded(id)
	}
	before := s.tasks[idx]
	applyPatch(&s.tasks[idx], patch)
	s.mu.Unlock()

	task, err := s.api.UpdateTask(ctx, id, patch)
	if err != nil {
		s.mu.Lock()
		s.replace(before)
		s.mu.Unlock()
		s.fail("update task failed", err)
		return nil, err
	}

	s.mu.Lock()
	s.replace(*task)
	s.err = ""
	s.mu.Unlock()
	return task, nil
}

// Delete removes the task on the server, then locally.
func (s *TaskStore) Delete(ctx context.Context, id uint) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		s.fail("delete task failed", err)
		return err
	}

	s.mu.Lock()
	if idx := s.indexOf(id); idx >= 0 {
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	}
	s.err = ""
	s.mu.Unlock()
	return nil
}

// Tasks returns a copy of every cached task.
func (s *TaskStore) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *TaskStore) Get(id uint) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.tasks[idx], true
	}
	return models.Task{}, false
}

func (s *TaskStore) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

func (s *TaskStore) SetFilters(f Filters) {
	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
}

// Visible applies the stored filters and sort to the cached tasks.
func (s *TaskStore) Visible() []models.Task {
	s.mu.RLock()
	f := s.filters
	s.mu.RUnlock()
	return Sort(Filter(s.Tasks(), f), f.SortBy, f.Order)
}

// Board groups the visible tasks by column, each column ordered by position.
func (s *TaskStore) Board() Columns {
	visible := Filter(s.Tasks(), s.Filters())
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Position < visible[j].Position })
	return Group(visible)
}

func (s *TaskStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err is the message of the last failed operation, empty after a success.
func (s *TaskStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *TaskStore) fail(msg string, err error) {
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
	s.log.Error().Err(err).Msg(msg)
}

func (s *TaskStore) indexOf(id uint) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskStore) replace(t models.Task) {
	if idx := s.indexOf(t.ID); idx >= 0 {
		s.tasks[idx] = t
	}
}

// column returns the ids in status ordered by position, skipping except.
func (s *TaskStore) column(status string, except uint) []uint {
	var col []models.Task
	for _, t := range s.tasks {
		if t.Status == status && t.ID != except {
			col = append(col, t)
		}
	}
	sort.SliceStable(col, func(i, j int) bool {
		if col[i].Position != col[j].Position {
			return col[i].Position < col[j].Position
		}
		return col[i].ID < col[j].ID
	})
	ids := make([]uint, len(col))
	for i, t := range col {
		ids[i] = t.ID
	}
	return ids
}

func (s *TaskStore) renumber(ids []uint) {
	for i, id := range ids {
		if idx := s.indexOf(id); idx >= 0 {
			s.tasks[idx].Position = i + 1
		}
	}
}

func applyPatch(t *models.Task, p client.TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo.Set {
		t.AssignedTo = p.AssignedTo.Ptr()
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.Deadline.Set {
		t.Deadline = p.Deadline.Ptr()
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
