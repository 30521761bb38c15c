package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/konstanta-tech/tracker/internal/models"
)

// trackerStub serves the endpoints the move command touches and records
// every write it receives.
type trackerStub struct {
	mu     sync.Mutex
	tasks  map[uint]models.Task
	writes []string
}

func newTrackerStub(t *testing.T) (*httptest.Server, *trackerStub) {
	t.Helper()
	st := &trackerStub{tasks: map[uint]models.Task{
		1: {ID: 1, Title: "a", Status: models.TaskStatusTodo, Position: 1, ProjectID: 1},
		2: {ID: 2, Title: "b", Status: models.TaskStatusTodo, Position: 2, ProjectID: 1},
		3: {ID: 3, Title: "c", Status: models.TaskStatusDone, Position: 1, ProjectID: 1},
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.User{ID: 1, Name: "Ann", Role: "admin"})
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.User{{ID: 1, Name: "Ann", Role: "admin"}})
	})
	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		st.mu.Lock()
		defer st.mu.Unlock()
		out := []models.Task{}
		for id := uint(1); id <= 3; id++ {
			out = append(out, st.tasks[id])
		}
		writeJSON(w, out)
	})
	mux.HandleFunc("PATCH /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		var patch struct {
			Status   *string `json:"status"`
			Position *int    `json:"position"`
		}
		_ = json.NewDecoder(r.Body).Decode(&patch)
		st.mu.Lock()
		defer st.mu.Unlock()
		st.writes = append(st.writes, "PATCH "+r.URL.Path)
		task := st.tasks[uint(id)]
		if patch.Status != nil {
			task.Status = *patch.Status
		}
		if patch.Position != nil {
			task.Position = *patch.Position
		}
		st.tasks[uint(id)] = task
		writeJSON(w, task)
	})
	mux.HandleFunc("POST /tasks/{id}/move", func(w http.ResponseWriter, r *http.Request) {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.writes = append(st.writes, "POST "+r.URL.Path)
		// Task 2 to the top of done, the only move these tests make.
		st.tasks[2] = models.Task{ID: 2, Title: "b", Status: models.TaskStatusDone, Position: 1, ProjectID: 1, Completed: true}
		st.tasks[3] = models.Task{ID: 3, Title: "c", Status: models.TaskStatusDone, Position: 2, ProjectID: 1}
		writeJSON(w, st.tasks[2])
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, st
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestMoveCmd(t *testing.T) {
	tests := []struct {
		name   string
		flags  []string
		writes []string
	}{
		{"server places the task", []string{"--atomic"}, []string{"POST /tasks/2/move"}},
		{"board renumbers locally", nil, []string{"PATCH /tasks/2", "PATCH /tasks/3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, st := newTrackerStub(t)
			tokenFile := filepath.Join(t.TempDir(), "token")
			if err := os.WriteFile(tokenFile, []byte("tok\n"), 0600); err != nil {
				t.Fatal(err)
			}

			var out bytes.Buffer
			root := newRootCmd(&app{})
			root.SetOut(&out)
			root.SetArgs(append([]string{"--server", srv.URL, "--token-file", tokenFile, "move", "2", "done", "1"}, tt.flags...))
			if err := root.Execute(); err != nil {
				t.Fatalf("move: %v", err)
			}

			if got := strings.TrimSpace(out.String()); got != "#2 is now done #1" {
				t.Errorf("output = %q", got)
			}
			if strings.Join(st.writes, ",") != strings.Join(tt.writes, ",") {
				t.Errorf("writes = %v, expected %v", st.writes, tt.writes)
			}
			if st.tasks[3].Position != 2 {
				t.Errorf("task 3 = %+v, expected to shift down", st.tasks[3])
			}
		})
	}
}
