package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the database and the event stream.
type HealthHandler struct {
	db     *gorm.DB
	events *services.EventHub
}

func NewHealthHandler(db *gorm.DB, events *services.EventHub) *HealthHandler {
	return &HealthHandler{db: db, events: events}
}

// CheckHealth returns 200 when the database answers a ping, 503 otherwise.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	status := http.StatusOK
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	subscribers := 0
	if h.events != nil {
		subscribers = h.events.ClientCount()
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "tracker",
		"components": gin.H{
			"database":          dbStatus,
			"event_subscribers": subscribers,
		},
	})
}
