package models

import "time"

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// TaskStatuses is the column order of the board.
var TaskStatuses = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// TaskPriorities is ordered from lowest to highest.
var TaskPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// Task is a unit of work placed in a status column of a project board.
type Task struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      string       `gorm:"size:20;not null;default:todo;index" json:"status"`
	Priority    string       `gorm:"size:10;not null;default:medium" json:"priority"`
	AssignedTo  *uint        `gorm:"index" json:"assignedTo"`
	ProjectID   uint         `gorm:"not null;index" json:"projectId"`
	Deadline    *time.Time   `json:"deadline"`
	Position    int          `gorm:"not null;default:0" json:"position"`
	Completed   bool         `gorm:"not null;default:false" json:"completed"`
	Attachments []Attachment `gorm:"foreignKey:TaskID" json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (Task) TableName() string { return "tasks" }

// StatusRank orders statuses todo < in-progress < done; unknown values sort last.
func StatusRank(status string) int {
	for i, s := range TaskStatuses {
		if s == status {
			return i
		}
	}
	return len(TaskStatuses)
}

// PriorityRank orders priorities low < medium < high; unknown values rank lowest.
func PriorityRank(priority string) int {
	for i, p := range TaskPriorities {
		if p == priority {
			return i
		}
	}
	return -1
}
