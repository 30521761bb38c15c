package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/services"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService *services.UserService
	events      *services.EventHub
}

func NewUserHandler(db *gorm.DB, events *services.EventHub) *UserHandler {
	return &UserHandler{
		userService: services.NewUserService(db),
		events:      events,
	}
}

// List returns every user
// GET /users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// GET /users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.userService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// Update edits a profile. Self or admin; role changes are admin only.
// PATCH /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}
	var req services.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(actor(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.events.Publish(services.ChangeEvent{Kind: "user", Action: services.EventUpdated, ID: id, ActorID: actor(c).ID})
	response.Success(c, user)
}

// Delete removes a user and detaches their work.
// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}
	if err := h.userService.Delete(actor(c), id); err != nil {
		response.Error(c, err)
		return
	}

	h.events.Publish(services.ChangeEvent{Kind: "user", Action: services.EventDeleted, ID: id, ActorID: actor(c).ID})
	response.NoContent(c)
}
