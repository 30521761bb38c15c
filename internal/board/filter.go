package board

import (
	"sort"
	"strings"

	"github.com/konstanta-tech/tracker/internal/models"
)

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortDeadline  SortField = "deadline"
	SortPriority  SortField = "priority"
	SortStatus    SortField = "status"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Filters is the view state of a task list. Zero values match everything.
type Filters struct {
	Search     string
	Status     string
	Priority   string
	AssignedTo *uint
	ProjectID  *uint
	SortBy     SortField
	Order      SortOrder
}

// Filter returns the tasks matching every set criterion, in input order.
func Filter(tasks []models.Task, f Filters) []models.Task {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *f.AssignedTo) {
			continue
		}
		if f.ProjectID != nil && t.ProjectID != *f.ProjectID {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Sort returns a sorted copy. Ties keep their input order.
//
// Deadline puts tasks without one last in either order. Priority ascending
// means high first. Status ascending follows the board columns. Any other
// field sorts by creation time, newest first unless Asc is asked for.
func Sort(tasks []models.Task, field SortField, order SortOrder) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	desc := order == Desc

	var less func(a, b models.Task) bool
	switch field {
	case SortDeadline:
		less = func(a, b models.Task) bool {
			if a.Deadline == nil || b.Deadline == nil {
				return a.Deadline != nil && b.Deadline == nil
			}
			if desc {
				return a.Deadline.After(*b.Deadline)
			}
			return a.Deadline.Before(*b.Deadline)
		}
	case SortPriority:
		less = func(a, b models.Task) bool {
			if desc {
				return models.PriorityRank(a.Priority) < models.PriorityRank(b.Priority)
			}
			return models.PriorityRank(a.Priority) > models.PriorityRank(b.Priority)
		}
	case SortStatus:
		less = func(a, b models.Task) bool {
			if desc {
				return models.StatusRank(a.Status) > models.StatusRank(b.Status)
			}
			return models.StatusRank(a.Status) < models.StatusRank(b.Status)
		}
	default:
		less = func(a, b models.Task) bool {
			if field == SortCreatedAt && order == Asc {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Columns holds the board buckets in column order.
type Columns struct {
	Todo       []models.Task
	InProgress []models.Task
	Done       []models.Task
}

// ByStatus returns the bucket for status, nil for unknown statuses.
func (c Columns) ByStatus(status string) []models.Task {
	switch status {
	case models.TaskStatusTodo:
		return c.Todo
	case models.TaskStatusInProgress:
		return c.InProgress
	case models.TaskStatusDone:
		return c.Done
	}
	return nil
}

// Group partitions tasks by status keeping relative order. Tasks with an
// unknown status are dropped.
func Group(tasks []models.Task) Columns {
	cols := Columns{
		Todo:       []models.Task{},
		InProgress: []models.Task{},
		Done:       []models.Task{},
	}
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusTodo:
			cols.Todo = append(cols.Todo, t)
		case models.TaskStatusInProgress:
			cols.InProgress = append(cols.InProgress, t)
		case models.TaskStatusDone:
			cols.Done = append(cols.Done, t)
		}
	}
	return cols
}
