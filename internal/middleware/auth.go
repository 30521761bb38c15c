package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/permission"
	"github.com/konstanta-tech/tracker/internal/services"
	"github.com/konstanta-tech/tracker/internal/utils"
	"github.com/konstanta-tech/tracker/pkg/response"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextUser   = "user"
)

// Authenticator resolves verified token claims to the current user record.
type Authenticator interface {
	Authenticate(claims *utils.Claims) (*models.User, error)
}

// AuthRequired rejects requests without a valid bearer token. An expired
// token yields 401, any other invalid token 403. When auth is non-nil the
// claims are checked against the stored user so deleted accounts and
// changed roles are refused.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "access token required")
			return
		}
		if !authenticate(c, auth, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is supplied but lets
// anonymous requests through. A supplied but bad token is still rejected.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}
		if !authenticate(c, auth, token) {
			return
		}
		c.Next()
	}
}

// TokenFromQuery turns a ?token= query parameter into a bearer header when
// no Authorization header was sent.
func TokenFromQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query("token"); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func authenticate(c *gin.Context, auth Authenticator, token string) bool {
	claims, err := utils.ParseToken(token)
	if err != nil {
		if utils.IsTokenExpired(err) {
			response.Unauthorized(c, "token expired")
		} else {
			response.Forbidden(c, "invalid token")
		}
		return false
	}

	if auth != nil {
		user, err := auth.Authenticate(claims)
		if err != nil {
			response.Error(c, err)
			return false
		}
		c.Set(ContextUser, user)
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	return true
}

// AdminRequired only lets administrators through.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != permission.Admin {
			response.Forbidden(c, "admin access required")
			return
		}
		c.Next()
	}
}

// RequirePermission lets through callers whose role grants p.
func RequirePermission(p permission.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !permission.Has(GetRole(c), p) {
			response.Forbidden(c, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetRole gets the current user role from context
func GetRole(c *gin.Context) string {
	if role, exists := c.Get(ContextRole); exists {
		return role.(string)
	}
	return ""
}

// GetUser returns the user record loaded by AuthRequired, or nil.
func GetUser(c *gin.Context) *models.User {
	if u, exists := c.Get(ContextUser); exists {
		return u.(*models.User)
	}
	return nil
}

// GetActor returns the authenticated caller, or nil for anonymous requests.
func GetActor(c *gin.Context) *services.Actor {
	id := GetUserID(c)
	if id == 0 {
		return nil
	}
	return &services.Actor{ID: id, Role: GetRole(c)}
}
