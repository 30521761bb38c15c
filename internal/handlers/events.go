package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/konstanta-tech/tracker/internal/services"
	"github.com/konstanta-tech/tracker/pkg/logger"
	"github.com/konstanta-tech/tracker/pkg/response"
)

var eventKinds = map[string]bool{"user": true, "project": true, "task": true, "comment": true}

// EventHandler streams change events to boards over Server-Sent Events.
type EventHandler struct {
	hub *services.EventHub
}

func NewEventHandler(hub *services.EventHub) *EventHandler {
	return &EventHandler{hub: hub}
}

// eventFilter reads ?projectId= and ?kinds=task,comment.
func eventFilter(c *gin.Context) (services.EventFilter, error) {
	var f services.EventFilter
	if raw := c.Query("projectId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return f, response.NewBadRequest("invalid project id")
		}
		f.ProjectID = uint(id)
	}
	if raw := c.Query("kinds"); raw != "" {
		for _, k := range strings.Split(raw, ",") {
			k = strings.TrimSpace(k)
			if !eventKinds[k] {
				return f, response.NewBadRequest(fmt.Sprintf("unknown event kind %q", k))
			}
			f.Kinds = append(f.Kinds, k)
		}
	}
	return f, nil
}

// Stream keeps the connection open and writes one frame per change, named
// after the record kind. A `resync` frame means events were lost and the
// board must refetch. The stream of a project board ends when the project
// is deleted.
// GET /events?projectId=&kinds=
func (h *EventHandler) Stream(c *gin.Context) {
	filter, err := eventFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(uuid.NewString(), filter)
	defer h.hub.Unsubscribe(sub.ID)

	logger.Debug().
		Str("client_id", sub.ID).
		Uint("project_id", filter.ProjectID).
		Int("total", h.hub.ClientCount()).
		Msg("event stream connected")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			if lost := sub.Dropped(); lost > 0 {
				fmt.Fprintf(w, "event: resync\ndata: {\"dropped\":%d}\n\n", lost)
			}
			data, err := json.Marshal(event)
			if err != nil {
				logger.Error().Err(err).Msg("event marshal error")
				return true
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data)
			return !projectClosed(filter, event)
		case <-c.Request.Context().Done():
			logger.Debug().Str("client_id", sub.ID).Msg("event stream disconnected")
			return false
		}
	})
}

// projectClosed reports whether event deletes the project a board watches.
func projectClosed(f services.EventFilter, e services.ChangeEvent) bool {
	return f.ProjectID != 0 && e.Kind == "project" && e.Action == services.EventDeleted && e.ID == f.ProjectID
}
