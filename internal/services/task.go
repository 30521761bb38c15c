package services

import (
	"sort"
	"strings"
	"time"

	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

// TaskFilter narrows GET /tasks. Zero values mean "any".
type TaskFilter struct {
	Status     string `form:"status" binding:"omitempty,taskstatus"`
	Priority   string `form:"priority" binding:"omitempty,taskpriority"`
	AssignedTo *uint  `form:"assignedTo"`
	ProjectID  *uint  `form:"projectId"`
	Search     string `form:"search"`
}

type CreateTaskRequest struct {
	Title       string            `json:"title" binding:"required,max=255"`
	Description string            `json:"description"`
	Status      string            `json:"status" binding:"omitempty,taskstatus"`
	Priority    string            `json:"priority" binding:"omitempty,taskpriority"`
	AssignedTo  *uint             `json:"assignedTo"`
	ProjectID   uint              `json:"projectId" binding:"required"`
	Deadline    *time.Time        `json:"deadline"`
	Position    *int              `json:"position" binding:"omitempty,min=1"`
	Completed   *bool             `json:"completed"`
	Attachments []AttachmentInput `json:"attachments" binding:"dive"`
}

// UpdateTaskRequest carries a partial update. AssignedTo and Deadline accept
// an explicit null to clear the value.
type UpdateTaskRequest struct {
	Title       *string                    `json:"title" binding:"omitempty,max=255"`
	Description *string                    `json:"description"`
	Status      *string                    `json:"status" binding:"omitempty,taskstatus"`
	Priority    *string                    `json:"priority" binding:"omitempty,taskpriority"`
	AssignedTo  models.Optional[uint]      `json:"assignedTo"`
	ProjectID   *uint                      `json:"projectId"`
	Deadline    models.Optional[time.Time] `json:"deadline"`
	Position    *int                       `json:"position" binding:"omitempty,min=0"`
	Completed   *bool                      `json:"completed"`
	Attachments *[]AttachmentInput         `json:"attachments" binding:"omitempty,dive"`
}

type MoveTaskRequest struct {
	Status   string `json:"status" binding:"required,taskstatus"`
	Position int    `json:"position" binding:"min=0"`
}

// List returns the tasks matching filter ordered by column position.
func (s *TaskService) List(filter *TaskFilter) ([]models.Task, error) {
	query := s.db.Model(&models.Task{}).Preload("Attachments")

	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Priority != "" {
			query = query.Where("priority = ?", filter.Priority)
		}
		if filter.AssignedTo != nil {
			query = query.Where("assigned_to = ?", *filter.AssignedTo)
		}
		if filter.ProjectID != nil {
			query = query.Where("project_id = ?", *filter.ProjectID)
		}
		if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
			like := "%" + search + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
	}

	tasks := []models.Task{}
	if err := query.Order("position ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) GetByID(id uint) (*models.Task, error) {
	return loadTask(s.db, id)
}

// ProjectOf returns the project of a task, or 0 when the task is unknown.
func (s *TaskService) ProjectOf(taskID uint) uint {
	var ids []uint
	s.db.Model(&models.Task{}).Where("id = ?", taskID).Limit(1).Pluck("project_id", &ids)
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}

func loadTask(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := db.Preload("Attachments").First(&task, id).Error; err != nil {
		return nil, notFoundOr(err, "task not found")
	}
	return &task, nil
}

// Create validates references, appends the task to the end of its column
// unless a position is given, and stores its attachments.
func (s *TaskService) Create(req *CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewBadRequest("title is required")
	}

	task := models.Task{
		Title:       title,
		Description: req.Description,
		Status:      defaultString(req.Status, models.TaskStatusTodo),
		Priority:    defaultString(req.Priority, models.PriorityMedium),
		AssignedTo:  req.AssignedTo,
		ProjectID:   req.ProjectID,
		Deadline:    req.Deadline,
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	} else {
		task.Completed = task.Status == models.TaskStatusDone
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureProject(tx, task.ProjectID); err != nil {
			return err
		}
		if err := ensureAssignee(tx, task.AssignedTo); err != nil {
			return err
		}

		if req.Position != nil {
			task.Position = *req.Position
		} else {
			last, err := lastPosition(tx, task.Status)
			if err != nil {
				return err
			}
			task.Position = last + 1
		}

		if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
			return err
		}
		return createAttachments(tx, req.Attachments, &task.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	return loadTask(s.db, task.ID)
}

// Update merges the supplied fields over the stored task. When the status
// changes and completion is not supplied, completion follows the done column.
func (s *TaskService) Update(id uint, req *UpdateTaskRequest) (*models.Task, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			return notFoundOr(err, "task not found")
		}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return response.NewBadRequest("title cannot be empty")
			}
			task.Title = title
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.Status != nil && *req.Status != task.Status {
			task.Status = *req.Status
			if req.Completed == nil {
				task.Completed = task.Status == models.TaskStatusDone
			}
		}
		if req.Priority != nil {
			task.Priority = *req.Priority
		}
		if req.AssignedTo.Set {
			assignee := req.AssignedTo.Ptr()
			if err := ensureAssignee(tx, assignee); err != nil {
				return err
			}
			task.AssignedTo = assignee
		}
		if req.ProjectID != nil {
			if err := ensureProject(tx, *req.ProjectID); err != nil {
				return err
			}
			task.ProjectID = *req.ProjectID
		}
		if req.Deadline.Set {
			task.Deadline = req.Deadline.Ptr()
		}
		if req.Position != nil {
			task.Position = *req.Position
		}
		if req.Completed != nil {
			task.Completed = *req.Completed
		}

		if err := tx.Omit(clause.Associations).Save(&task).Error; err != nil {
			return err
		}

		if req.Attachments != nil {
			if err := tx.Where("task_id = ?", task.ID).Delete(&models.Attachment{}).Error; err != nil {
				return err
			}
			return createAttachments(tx, *req.Attachments, &task.ID, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loadTask(s.db, id)
}

// Move places the task at position (1-based, clamped) in the status column
// and renumbers that column 1..N, closing the gap left in the source column.
// All writes happen in one transaction.
func (s *TaskService) Move(id uint, req *MoveTaskRequest) (*models.Task, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			return notFoundOr(err, "task not found")
		}
		source := task.Status

		var siblings []models.Task
		if err := tx.Where("status = ? AND id <> ?", req.Status, id).
			Order("position ASC, id ASC").
			Find(&siblings).Error; err != nil {
			return err
		}

		idx := clampIndex(req.Position-1, len(siblings))
		column := make([]models.Task, 0, len(siblings)+1)
		column = append(column, siblings[:idx]...)
		column = append(column, task)
		column = append(column, siblings[idx:]...)

		now := time.Now()
		for i := range column {
			updates := map[string]interface{}{}
			if column[i].ID == id {
				if source != req.Status {
					updates["status"] = req.Status
					updates["completed"] = req.Status == models.TaskStatusDone
				}
			}
			if column[i].Position != i+1 || len(updates) > 0 {
				updates["position"] = i + 1
				updates["updated_at"] = now
				if err := tx.Model(&models.Task{}).Where("id = ?", column[i].ID).UpdateColumns(updates).Error; err != nil {
					return err
				}
			}
		}

		if source != req.Status {
			return compactColumn(tx, source, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loadTask(s.db, id)
}

// Delete removes a task, its comments and attachments.
func (s *TaskService) Delete(actor Actor, id uint) error {
	if !actor.IsAdmin() {
		return response.NewForbidden("only administrators can delete tasks")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			return notFoundOr(err, "task not found")
		}
		if err := deleteTasks(tx, []uint{id}); err != nil {
			return err
		}
		return compactColumn(tx, task.Status, time.Now())
	})
}

// Renumber rewrites every status column to positions 1..N, keeping the
// current order. It repairs boards written by older clients.
func (s *TaskService) Renumber() error {
	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, status := range models.TaskStatuses {
			if err := compactColumn(tx, status, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func compactColumn(tx *gorm.DB, status string, now time.Time) error {
	var column []models.Task
	if err := tx.Where("status = ?", status).Order("position ASC, id ASC").Find(&column).Error; err != nil {
		return err
	}
	for i, t := range column {
		if t.Position == i+1 {
			continue
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", t.ID).UpdateColumns(map[string]interface{}{
			"position":   i + 1,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

func lastPosition(tx *gorm.DB, status string) (int, error) {
	var positions []int
	if err := tx.Model(&models.Task{}).Where("status = ?", status).Pluck("position", &positions).Error; err != nil {
		return 0, err
	}
	sort.Ints(positions)
	if len(positions) == 0 {
		return 0, nil
	}
	return positions[len(positions)-1], nil
}

func ensureProject(tx *gorm.DB, projectID uint) error {
	var count int64
	if err := tx.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return response.NewBadRequest("project does not exist")
	}
	return nil
}

func ensureAssignee(tx *gorm.DB, userID *uint) error {
	if userID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ?", *userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return response.NewBadRequest("assignee does not exist")
	}
	return nil
}

func createAttachments(tx *gorm.DB, inputs []AttachmentInput, taskID, commentID *uint) error {
	if len(inputs) == 0 {
		return nil
	}
	attachments := buildAttachments(inputs, taskID, commentID)
	return tx.Create(&attachments).Error
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
