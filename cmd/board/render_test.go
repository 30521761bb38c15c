package main

import (
	"strings"
	"testing"

	"github.com/konstanta-tech/tracker/internal/board"
	"github.com/konstanta-tech/tracker/internal/models"
)

func names(id uint) string {
	if id == 1 {
		return "Ann"
	}
	return ""
}

func TestRenderBoard_ShowsEveryColumn(t *testing.T) {
	assignee := uint(1)
	cols := board.Group([]models.Task{
		{ID: 3, Title: "Write docs", Status: models.TaskStatusTodo, Priority: models.PriorityLow, AssignedTo: &assignee},
		{ID: 4, Title: "Ship", Status: models.TaskStatusDone, Priority: models.PriorityHigh},
	})

	out := renderBoard(cols, names)
	for _, want := range []string{"To do (1)", "In progress (0)", "Done (1)", "#3 Write docs", "@Ann", "empty"} {
		if !strings.Contains(out, want) {
			t.Errorf("board output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderList(t *testing.T) {
	other := uint(7)
	out := renderList([]models.Task{{ID: 1, Title: "x", Status: models.TaskStatusTodo, Priority: models.PriorityLow, AssignedTo: &other}}, names)
	if !strings.Contains(out, "user 7") || !strings.HasPrefix(out, "#1") {
		t.Errorf("unexpected list output %q", out)
	}
	if out := renderList(nil, names); !strings.Contains(out, "no tasks match") {
		t.Errorf("empty list output %q", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer title", 8, "much lo…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, expected %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("12"); err != nil || id != 12 {
		t.Errorf("parseID(12) = %d, %v", id, err)
	}
	for _, bad := range []string{"0", "-1", "abc", ""} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("parseID(%q) should fail", bad)
		}
	}
}

func TestFilterFlags(t *testing.T) {
	ff := filterFlags{search: "auth", project: 2, sortBy: "deadline", order: "desc"}
	f := ff.filters()
	if f.ProjectID == nil || *f.ProjectID != 2 || f.AssignedTo != nil {
		t.Errorf("filters = %+v", f)
	}
	if f.SortBy != board.SortDeadline || f.Order != board.Desc {
		t.Errorf("sort = %s %s", f.SortBy, f.Order)
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := newRootCmd(&app{})
	for _, name := range []string{"login", "show", "list", "move", "assign", "delete", "comment"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
