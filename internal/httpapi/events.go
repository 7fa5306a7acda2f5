package httpapi

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const heartbeatInterval = 15 * time.Second

// StreamEvents streams a student's committed decisions as server-sent
// events, one event per decision named after its topic.
func (h *Handler) StreamEvents(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "event stream is not enabled", Code: "unavailable"})
		return
	}
	studentID := strings.TrimSpace(c.Param("student_id"))
	client := h.events.Subscribe(studentID)
	if client == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "event stream has stopped", Code: "unavailable"})
		return
	}
	defer h.events.Unsubscribe(client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	// Tells the client the subscription is live.
	io.WriteString(c.Writer, ": subscribed\n\n")
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			io.WriteString(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			c.SSEvent(ev.Topic, ev)
			c.Writer.Flush()
		}
	}
}
