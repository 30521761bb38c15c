package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/services"
	"github.com/konstanta-tech/tracker/internal/utils"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskService *services.TaskService
	events      *services.EventHub
}

func NewTaskHandler(db *gorm.DB, events *services.EventHub) *TaskHandler {
	return &TaskHandler{
		taskService: services.NewTaskService(db),
		events:      events,
	}
}

func (h *TaskHandler) publish(c *gin.Context, action string, task *models.Task) {
	h.events.Publish(services.ChangeEvent{
		Kind:      "task",
		Action:    action,
		ID:        task.ID,
		ProjectID: task.ProjectID,
		ActorID:   actor(c).ID,
	})
}

// List returns tasks matching the query filters
// GET /tasks?status=&priority=&assignedTo=&projectId=&search=
func (h *TaskHandler) List(c *gin.Context) {
	var filter services.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, utils.FormatBindError(err))
		return
	}

	tasks, err := h.taskService.List(&filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	task, err := h.taskService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, task)
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.publish(c, services.EventCreated, task)
	response.Created(c, task)
}

// Update merges the supplied fields; null clears assignedTo and deadline.
// PATCH /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	var req services.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.publish(c, services.EventUpdated, task)
	response.Success(c, task)
}

// Move places a task in a column and renumbers the affected columns.
// POST /tasks/:id/move
func (h *TaskHandler) Move(c *gin.Context) {
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	var req services.MoveTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Move(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.publish(c, services.EventMoved, task)
	response.Success(c, task)
}

// Delete removes a task and its comments. Admin only.
// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	projectID := h.taskService.ProjectOf(id)
	if err := h.taskService.Delete(actor(c), id); err != nil {
		response.Error(c, err)
		return
	}

	h.events.Publish(services.ChangeEvent{Kind: "task", Action: services.EventDeleted, ID: id, ProjectID: projectID, ActorID: actor(c).ID})
	response.NoContent(c)
}
