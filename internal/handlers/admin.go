package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/services"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
)

// AdminHandler serves the administrator-only views: the record document
// export and the activity log.
type AdminHandler struct {
	snapshotService *services.SnapshotService
	activityService *services.ActivityService
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{
		snapshotService: services.NewSnapshotService(db),
		activityService: services.NewActivityService(db),
	}
}

// Export returns every record as one JSON document. Password hashes stay in
// the on-disk snapshot only.
// GET /export
func (h *AdminHandler) Export(c *gin.Context) {
	doc, err := h.snapshotService.Export()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="db.json"`)
	response.Success(c, doc.Public())
}

// Activity lists recent write requests, newest first.
// GET /activity?limit=&module=
func (h *AdminHandler) Activity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := h.activityService.Recent(limit, c.Query("module"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, logs)
}
