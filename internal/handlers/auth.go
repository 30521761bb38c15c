package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/config"
	"github.com/konstanta-tech/tracker/internal/middleware"
	"github.com/konstanta-tech/tracker/internal/services"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
	events      *services.EventHub
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, events *services.EventHub) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, &cfg.JWT),
		events:      events,
	}
}

// Login handles user login
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Register creates an account and signs it in. An admin caller may pick the role.
// POST /users
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(&req, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.events.Publish(services.ChangeEvent{Kind: "user", Action: services.EventCreated, ID: resp.User.ID})
	response.Created(c, resp)
}

// Me returns the current user
// GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	if user := middleware.GetUser(c); user != nil {
		response.Success(c, user)
		return
	}

	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// Authenticator exposes the service for middleware.AuthRequired.
func (h *AuthHandler) Authenticator() middleware.Authenticator {
	return h.authService
}
