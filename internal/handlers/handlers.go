// Package handlers binds HTTP requests to the tracker services.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/middleware"
	"github.com/konstanta-tech/tracker/internal/services"
	"github.com/konstanta-tech/tracker/internal/utils"
	"github.com/konstanta-tech/tracker/pkg/response"
)

// parseID reads a numeric path parameter, writing a 400 when it is malformed.
func parseID(c *gin.Context, param, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+what+" id")
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body into req, writing a 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, utils.FormatBindError(err))
		return false
	}
	return true
}

// actor returns the authenticated caller. Routes using it sit behind
// middleware.AuthRequired.
func actor(c *gin.Context) services.Actor {
	if a := middleware.GetActor(c); a != nil {
		return *a
	}
	return services.Actor{}
}
