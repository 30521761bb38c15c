package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/services"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	events         *services.EventHub
}

func NewProjectHandler(db *gorm.DB, events *services.EventHub) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
		events:         events,
	}
}

// List returns all projects
// GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

// GetByID returns a project by ID
// GET /projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	project, err := h.projectService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Create creates a new project
// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.events.Publish(services.ChangeEvent{Kind: "project", Action: services.EventCreated, ID: project.ID, ProjectID: project.ID, ActorID: actor(c).ID})
	response.Created(c, project)
}

// Update updates a project
// PATCH /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	var req services.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.events.Publish(services.ChangeEvent{Kind: "project", Action: services.EventUpdated, ID: id, ProjectID: id, ActorID: actor(c).ID})
	response.Success(c, project)
}

// Delete removes a project with its tasks and comments. Admin only.
// DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	if err := h.projectService.Delete(actor(c), id); err != nil {
		response.Error(c, err)
		return
	}

	h.events.Publish(services.ChangeEvent{Kind: "project", Action: services.EventDeleted, ID: id, ProjectID: id, ActorID: actor(c).ID})
	response.NoContent(c)
}
