package board

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/konstanta-tech/tracker/internal/client"
	"github.com/konstanta-tech/tracker/internal/models"
)

func boardTasks() []models.Task {
	return []models.Task{
		{ID: 1, Title: "a", Status: models.TaskStatusTodo, Position: 1, ProjectID: 1},
		{ID: 2, Title: "b", Status: models.TaskStatusTodo, Position: 2, ProjectID: 1},
		{ID: 3, Title: "c", Status: models.TaskStatusTodo, Position: 3, ProjectID: 1},
		{ID: 4, Title: "d", Status: models.TaskStatusInProgress, Position: 1, ProjectID: 1},
		{ID: 5, Title: "e", Status: models.TaskStatusInProgress, Position: 2, ProjectID: 1},
	}
}

func loadedStore(t *testing.T, api *fakeTaskAPI) *TaskStore {
	t.Helper()
	s := NewTaskStore(api, zerolog.Nop())
	s.Fetch(context.Background())
	if s.Err() != "" {
		t.Fatalf("Fetch() recorded error %q", s.Err())
	}
	return s
}

func positions(col []models.Task) []uint {
	ids := make([]uint, len(col))
	for i, t := range col {
		ids[i] = t.ID
	}
	return ids
}

func assertContiguous(t *testing.T, col []models.Task) {
	t.Helper()
	for i, task := range col {
		if task.Position != i+1 {
			t.Errorf("task %d at index %d has position %d", task.ID, i, task.Position)
		}
	}
}

func TestFetch_SwallowsErrorAndKeepsState(t *testing.T) {
	api := newFakeTaskAPI(boardTasks()...)
	s := loadedStore(t, api)

	api.listErr = errServer
	s.Fetch(context.Background())

	if s.Err() != errServer.Error() {
		t.Errorf("Err() = %q", s.Err())
	}
	if len(s.Tasks()) != 5 {
		t.Errorf("previous tasks should be kept, got %d", len(s.Tasks()))
	}
	if s.Loading() {
		t.Error("Loading() should be false after fetch")
	}
}

func TestFetch_SendsStoredFilters(t *testing.T) {
	api := newFakeTaskAPI()
	s := NewTaskStore(api, zerolog.Nop())
	project := uint(7)
	s.SetFilters(Filters{Status: models.TaskStatusDone, ProjectID: &project, Search: "auth"})

	s.Fetch(context.Background())

	if api.lastQuery.Status != models.TaskStatusDone || api.lastQuery.Search != "auth" || *api.lastQuery.ProjectID != 7 {
		t.Errorf("query = %+v", api.lastQuery)
	}
}

func TestCreate_ReturnsError(t *testing.T) {
	s := loadedStore(t, newFakeTaskAPI())

	if _, err := s.Create(context.Background(), client.TaskInput{}); err == nil {
		t.Fatal("expected error")
	}
	if s.Err() != "api error 400: title is required" {
		t.Errorf("Err() = %q", s.Err())
	}

	task, err := s.Create(context.Background(), client.TaskInput{Title: "new", Status: models.TaskStatusTodo, ProjectID: 1})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, ok := s.Get(task.ID); !ok || s.Err() != "" {
		t.Error("created task should be cached and error cleared")
	}
}

func TestMove_AcrossColumns(t *testing.T) {
	api := newFakeTaskAPI(boardTasks()...)
	s := loadedStore(t, api)

	if err := s.Move(context.Background(), 2, models.TaskStatusInProgress, 1); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	cols := s.Board()
	if got := positions(cols.InProgress); !reflect.DeepEqual(got, []uint{2, 4, 5}) {
		t.Errorf("in-progress order = %v", got)
	}
	if got := positions(cols.Todo); !reflect.DeepEqual(got, []uint{1, 3}) {
		t.Errorf("todo order = %v", got)
	}
	assertContiguous(t, cols.InProgress)
	assertContiguous(t, cols.Todo)

	if server := api.tasks[2]; server.Status != models.TaskStatusInProgress || server.Position != 1 {
		t.Errorf("server copy = %+v", server)
	}
	if api.tasks[3].Position != 2 {
		t.Errorf("source column not compacted on server: %+v", api.tasks[3])
	}
	if len(api.updates) != 4 {
		t.Errorf("expected 4 updates (moved, two shifted, one compacted), got %v", api.updates)
	}
}

func TestMove_WithinColumnClampsPosition(t *testing.T) {
	api := newFakeTaskAPI(boardTasks()...)
	s := loadedStore(t, api)

	if err := s.Move(context.Background(), 1, models.TaskStatusTodo, 99); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	todo := s.Board().Todo
	if got := positions(todo); !reflect.DeepEqual(got, []uint{2, 3, 1}) {
		t.Errorf("todo order = %v", got)
	}
	assertContiguous(t, todo)

	if err := s.Move(context.Background(), 1, models.TaskStatusTodo, -3); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if got := positions(s.Board().Todo); !reflect.DeepEqual(got, []uint{1, 2, 3}) {
		t.Errorf("todo order = %v", got)
	}
}

func TestMove_IntoEmptyColumn(t *testing.T) {
	s := loadedStore(t, newFakeTaskAPI(boardTasks()...))

	if err := s.Move(context.Background(), 5, models.TaskStatusDone, 3); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	task, _ := s.Get(5)
	if task.Status != models.TaskStatusDone || task.Position != 1 || !task.Completed {
		t.Errorf("moved task = %+v", task)
	}
}

func TestMove_RollbackRestoresExactly(t *testing.T) {
	api := newFakeTaskAPI(boardTasks()...)
	s := loadedStore(t, api)
	before := s.Tasks()

	// first update succeeds, second fails
	api.failAfter = 1
	err := s.Move(context.Background(), 3, models.TaskStatusInProgress, 1)
	if !errors.Is(err, errServer) {
		t.Fatalf("Move() error = %v", err)
	}

	if after := s.Tasks(); !reflect.DeepEqual(before, after) {
		t.Errorf("state not restored\nbefore: %+v\nafter:  %+v", before, after)
	}
	if s.Err() != errServer.Error() {
		t.Errorf("Err() = %q", s.Err())
	}
}

func TestMove_UnknownTask(t *testing.T) {
	s := loadedStore(t, newFakeTaskAPI(boardTasks()...))

	err := s.Move(context.Background(), 42, models.TaskStatusDone, 1)
	var notLoaded ErrTaskNotLoaded
	if !errors.As(err, &notLoaded) || uint(notLoaded) != 42 {
		t.Errorf("error = %v", err)
	}
}

func TestMoveAtomic(t *testing.T) {
	tests := []struct {
		name       string
		id         uint
		status     string
		position   int
		inProgress []uint
		todo       []uint
	}{
		{"across columns", 2, models.TaskStatusInProgress, 1, []uint{2, 4, 5}, []uint{1, 3}},
		{"end of column", 1, models.TaskStatusInProgress, 99, []uint{4, 5, 1}, []uint{2, 3}},
		{"negative means top", 5, models.TaskStatusTodo, -1, []uint{4}, []uint{5, 1, 2, 3}},
		{"within column", 3, models.TaskStatusTodo, 1, []uint{4, 5}, []uint{3, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeTaskAPI(boardTasks()...)
			s := loadedStore(t, api)

			if err := s.MoveAtomic(context.Background(), tt.id, tt.status, tt.position); err != nil {
				t.Fatalf("MoveAtomic() error = %v", err)
			}
			cols := s.Board()
			if got := positions(cols.InProgress); !reflect.DeepEqual(got, tt.inProgress) {
				t.Errorf("in-progress order = %v, expected %v", got, tt.inProgress)
			}
			if got := positions(cols.Todo); !reflect.DeepEqual(got, tt.todo) {
				t.Errorf("todo order = %v, expected %v", got, tt.todo)
			}
			assertContiguous(t, cols.InProgress)
			assertContiguous(t, cols.Todo)

			if !reflect.DeepEqual(api.moves, []uint{tt.id}) || len(api.updates) != 0 {
				t.Errorf("expected one move request and no updates, got moves %v updates %v", api.moves, api.updates)
			}
		})
	}
}

func TestMoveAtomic_FailureLeavesCache(t *testing.T) {
	api := newFakeTaskAPI(boardTasks()...)
	s := loadedStore(t, api)
	before := s.Tasks()

	api.moveErr = &client.APIError{StatusCode: 400, Message: "invalid status"}
	err := s.MoveAtomic(context.Background(), 1, "archived", 1)
	if client.StatusCode(err) != 400 {
		t.Fatalf("MoveAtomic() error = %v", err)
	}
	if after := s.Tasks(); !reflect.DeepEqual(before, after) {
		t.Errorf("cache changed on failure\nbefore: %+v\nafter:  %+v", before, after)
	}
	if s.Err() != err.Error() {
		t.Errorf("Err() = %q", s.Err())
	}

	if err := s.MoveAtomic(context.Background(), 42, models.TaskStatusDone, 1); !errors.As(err, new(ErrTaskNotLoaded)) {
		t.Errorf("unknown task: error = %v", err)
	}
}

func TestUpdate_ReplacesWithServerVersion(t *testing.T) {
	api := newFakeTaskAPI(boardTasks()...)
	s := loadedStore(t, api)
	title := "renamed"

	task, err := s.Update(context.Background(), 4, client.TaskPatch{Title: &title, AssignedTo: models.Some(uint(9))})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	cached, _ := s.Get(4)
	if cached.Title != "renamed" || cached.AssignedTo == nil || *cached.AssignedTo != 9 {
		t.Errorf("cached = %+v", cached)
	}
	if !cached.UpdatedAt.Equal(task.UpdatedAt) || cached.UpdatedAt.IsZero() {
		t.Error("cached task should be the server's version")
	}
}

func TestUpdate_RollbackOnFailure(t *testing.T) {
	api := newFakeTaskAPI(boardTasks()...)
	s := loadedStore(t, api)
	before, _ := s.Get(4)
	api.failOn[4] = true
	title := "renamed"

	if _, err := s.Update(context.Background(), 4, client.TaskPatch{Title: &title, AssignedTo: models.Null[uint]()}); err == nil {
		t.Fatal("expected error")
	}
	if after, _ := s.Get(4); !reflect.DeepEqual(before, after) {
		t.Errorf("task not restored: %+v", after)
	}
}

func TestDelete_ServerFirst(t *testing.T) {
	api := newFakeTaskAPI(boardTasks()...)
	s := loadedStore(t, api)

	api.deleteErr = &client.APIError{StatusCode: 403, Message: "only administrators can delete tasks"}
	if err := s.Delete(context.Background(), 1); client.StatusCode(err) != 403 {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := s.Get(1); !ok {
		t.Error("task removed locally despite server failure")
	}

	api.deleteErr = nil
	if err := s.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := s.Get(1); ok {
		t.Error("task still cached after delete")
	}
}

func TestVisible_AppliesFiltersAndSort(t *testing.T) {
	s := loadedStore(t, newFakeTaskAPI(
		models.Task{ID: 1, Title: "Fix Auth", Status: models.TaskStatusTodo, Priority: models.PriorityLow},
		models.Task{ID: 2, Title: "docs", Description: "oauth notes", Status: models.TaskStatusDone, Priority: models.PriorityHigh},
		models.Task{ID: 3, Title: "ui", Status: models.TaskStatusTodo, Priority: models.PriorityHigh},
	))
	s.SetFilters(Filters{Search: "auth", SortBy: SortPriority, Order: Asc})

	if got := positions(s.Visible()); !reflect.DeepEqual(got, []uint{2, 1}) {
		t.Errorf("visible = %v", got)
	}
}
