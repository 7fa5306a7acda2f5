// Package httpapi exposes the tracker's inbound events over HTTP with gin.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/adaptutor/internal/logging"
	"github.com/abhisek/adaptutor/internal/notify"
	"github.com/abhisek/adaptutor/internal/progress"
)

// Handler serves the tutoring API.
type Handler struct {
	tracker *progress.Tracker
	events  *notify.Hub
	logger  *logging.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithEvents enables the per-student event stream backed by hub.
func WithEvents(hub *notify.Hub) Option {
	return func(h *Handler) { h.events = hub }
}

func NewHandler(tracker *progress.Tracker, logger *logging.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	h := &Handler{tracker: tracker, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(tracker *progress.Tracker, logger *logging.Logger, opts ...Option) *gin.Engine {
	h := NewHandler(tracker, logger, opts...)
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())
	h.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		modules := v1.Group("/modules")
		{
			modules.GET("", h.ListModules)
			modules.GET("/:module_id", h.GetModule)
		}

		students := v1.Group("/students/:student_id")
		{
			students.GET("", h.GetStatus)
			students.GET("/history", h.GetHistory)
			students.GET("/events", h.StreamEvents)
			students.POST("/diagnostic", h.SubmitDiagnostic)
			students.POST("/modules/:module_id", h.RequestModule)
			students.POST("/quizzes", h.SubmitQuiz)
		}
	}
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"remote_addr", c.ClientIP(),
		)
	}
}
