package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/services"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
)

type CommentHandler struct {
	commentService *services.CommentService
	events         *services.EventHub
}

func NewCommentHandler(db *gorm.DB, events *services.EventHub) *CommentHandler {
	return &CommentHandler{
		commentService: services.NewCommentService(db),
		events:         events,
	}
}

func (h *CommentHandler) publish(c *gin.Context, action string, comment *models.Comment) {
	h.events.Publish(services.ChangeEvent{
		Kind:      "comment",
		Action:    action,
		ID:        comment.ID,
		ProjectID: h.commentService.ProjectOf(comment.ID),
		ActorID:   actor(c).ID,
	})
}

// List returns the comments of a task, or every comment without taskId.
// GET /comments?taskId=
func (h *CommentHandler) List(c *gin.Context) {
	var taskID uint64
	if raw := c.Query("taskId"); raw != "" {
		var err error
		if taskID, err = strconv.ParseUint(raw, 10, 32); err != nil {
			response.BadRequest(c, "invalid task id")
			return
		}
	}

	comments, err := h.commentService.ListByTask(uint(taskID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comments)
}

// POST /comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req services.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(actor(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.publish(c, services.EventCreated, comment)
	response.Created(c, comment)
}

// Update edits a comment. Author only.
// PATCH /comments/:id (PUT accepted)
func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "comment")
	if !ok {
		return
	}
	var req services.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Update(actor(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.publish(c, services.EventUpdated, comment)
	response.Success(c, comment)
}

// DELETE /comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "comment")
	if !ok {
		return
	}
	projectID := h.commentService.ProjectOf(id)
	if err := h.commentService.Delete(actor(c), id); err != nil {
		response.Error(c, err)
		return
	}

	h.events.Publish(services.ChangeEvent{Kind: "comment", Action: services.EventDeleted, ID: id, ProjectID: projectID, ActorID: actor(c).ID})
	response.NoContent(c)
}

// DELETE /comments/:id/attachments/:attachmentId
func (h *CommentHandler) DeleteAttachment(c *gin.Context) {
	id, ok := parseID(c, "id", "comment")
	if !ok {
		return
	}
	if err := h.commentService.DeleteAttachment(actor(c), id, c.Param("attachmentId")); err != nil {
		response.Error(c, err)
		return
	}

	h.events.Publish(services.ChangeEvent{Kind: "comment", Action: services.EventUpdated, ID: id, ProjectID: h.commentService.ProjectOf(id), ActorID: actor(c).ID})
	response.NoContent(c)
}
