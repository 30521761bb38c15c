package board

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/konstanta-tech/tracker/internal/client"
	"github.com/konstanta-tech/tracker/internal/models"
)

// fakeTaskAPI is an in-memory task server. failOn makes UpdateTask fail for
// a given id; failAfter makes it fail once that many updates succeeded.
type fakeTaskAPI struct {
	mu        sync.Mutex
	tasks     map[uint]models.Task
	nextID    uint
	updates   []uint
	moves     []uint
	moveErr   error
	failOn    map[uint]bool
	failAfter int
	listErr   error
	deleteErr error
	lastQuery client.TaskQuery
}

var errServer = errors.New("server unavailable")

func newFakeTaskAPI(tasks ...models.Task) *fakeTaskAPI {
	f := &fakeTaskAPI{tasks: map[uint]models.Task{}, failOn: map[uint]bool{}, failAfter: -1}
	for _, t := range tasks {
		f.tasks[t.ID] = t
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
	}
	return f
}

func (f *fakeTaskAPI) ListTasks(_ context.Context, q client.TaskQuery) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Task, 0, len(f.tasks))
	for id := uint(1); id < f.nextID; id++ {
		if t, ok := f.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskAPI) CreateTask(_ context.Context, in client.TaskInput) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Title == "" {
		return nil, &client.APIError{StatusCode: 400, Message: "title is required"}
	}
	t := models.Task{ID: f.nextID, Title: in.Title, Status: in.Status, ProjectID: in.ProjectID, CreatedAt: time.Now()}
	f.nextID++
	f.tasks[t.ID] = t
	return &t, nil
}

func (f *fakeTaskAPI) UpdateTask(_ context.Context, id uint, patch client.TaskPatch) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[id] || f.failAfter == 0 {
		return nil, errServer
	}
	if f.failAfter > 0 {
		f.failAfter--
	}
	t, ok := f.tasks[id]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Message: "task not found"}
	}
	applyPatch(&t, patch)
	t.UpdatedAt = time.Now()
	f.tasks[id] = t
	f.updates = append(f.updates, id)
	return &t, nil
}

// MoveTask places the task the way the server does: clamp into the
// destination column, renumber it and compact the source column.
func (f *fakeTaskAPI) MoveTask(_ context.Context, id uint, status string, position int) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveErr != nil {
		return nil, f.moveErr
	}
	t, ok := f.tasks[id]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Message: "task not found"}
	}
	source := t.Status
	f.moves = append(f.moves, id)

	dest := f.columnLocked(status, id)
	at := clamp(position-1, 0, len(dest))
	dest = append(dest[:at], append([]uint{id}, dest[at:]...)...)

	t.Status = status
	t.Completed = status == models.TaskStatusDone
	f.tasks[id] = t
	f.renumberLocked(dest)
	if source != status {
		f.renumberLocked(f.columnLocked(source, 0))
	}
	moved := f.tasks[id]
	return &moved, nil
}

func (f *fakeTaskAPI) columnLocked(status string, except uint) []uint {
	var col []models.Task
	for _, t := range f.tasks {
		if t.Status == status && t.ID != except {
			col = append(col, t)
		}
	}
	sort.Slice(col, func(i, j int) bool {
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

func (f *fakeTaskAPI) renumberLocked(ids []uint) {
	for i, id := range ids {
		t := f.tasks[id]
		t.Position = i + 1
		f.tasks[id] = t
	}
}

func (f *fakeTaskAPI) DeleteTask(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.tasks, id)
	return nil
}
