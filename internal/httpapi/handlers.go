package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/content"
	"github.com/abhisek/adaptutor/internal/diagnostic"
	"github.com/abhisek/adaptutor/internal/proficiency"
	"github.com/abhisek/adaptutor/internal/quiz"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// QuestionView is a quiz question without its answer.
type QuestionView struct {
	ID     string  `json:"id"`
	Prompt string  `json:"prompt"`
	Weight float64 `json:"weight"`
	Topic  string  `json:"topic,omitempty"`
}

// ModuleView is the public description of a catalog module.
type ModuleView struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Body     string              `json:"body,omitempty"`
	Levels   []proficiency.Level `json:"levels"`
	Default  bool                `json:"has_default"`
	Time     map[string]string   `json:"estimated_time,omitempty"`
	Sections []content.Section   `json:"sections,omitempty"`
	Quiz     []QuestionView      `json:"quiz,omitempty"`
}

func moduleView(m *content.Module, detail bool) ModuleView {
	v := ModuleView{ID: m.ID, Title: m.Title, Default: m.Default != nil, Time: map[string]string{}}
	for _, l := range proficiency.AllLevels() {
		if variant, ok := m.Variants[l]; ok {
			v.Levels = append(v.Levels, l)
			if variant.EstimatedTime != "" {
				v.Time[l.String()] = variant.EstimatedTime
			}
		}
	}
	if !detail {
		return v
	}
	v.Body = m.Body
	v.Sections = m.Sections
	for _, q := range m.Quiz.Questions {
		v.Quiz = append(v.Quiz, QuestionView{ID: q.ID, Prompt: q.Prompt, Weight: q.Weight, Topic: q.Topic})
	}
	return v
}

func (h *Handler) ListModules(c *gin.Context) {
	mods := h.tracker.Catalog().Modules()
	out := make([]ModuleView, 0, len(mods))
	for _, m := range mods {
		out = append(out, moduleView(m, false))
	}
	c.JSON(http.StatusOK, gin.H{"modules": out})
}

func (h *Handler) GetModule(c *gin.Context) {
	m, err := h.tracker.Catalog().Module(c.Param("module_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, moduleView(m, true))
}

func (h *Handler) SubmitDiagnostic(c *gin.Context) {
	var attempt diagnostic.Attempt
	if !bindJSON(c, &attempt) {
		return
	}
	dec, err := h.tracker.SubmitDiagnostic(c.Request.Context(), c.Param("student_id"), attempt)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dec)
}

func (h *Handler) RequestModule(c *gin.Context) {
	dec, err := h.tracker.RequestModule(c.Request.Context(), c.Param("student_id"), c.Param("module_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dec)
}

func (h *Handler) SubmitQuiz(c *gin.Context) {
	var attempt quiz.Attempt
	if !bindJSON(c, &attempt) {
		return
	}
	dec, err := h.tracker.SubmitQuiz(c.Request.Context(), c.Param("student_id"), attempt)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dec)
}

func (h *Handler) GetStatus(c *gin.Context) {
	st, err := h.tracker.Status(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) GetHistory(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.handleError(c, apperr.InvalidValue("limit", raw, "must be a non-negative integer"))
			return
		}
		limit = n
	}
	tr, err := h.tracker.History(c.Request.Context(), c.Param("student_id"), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitions": tr})
}

// bindJSON decodes the body, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
			Code:    "bad_request",
		})
		return false
	}
	return true
}

// handleError maps domain errors onto HTTP status codes.
func (h *Handler) handleError(c *gin.Context, err error) {
	var (
		ve  *apperr.ValidationError
		ves apperr.ValidationErrors
		nf  *apperr.NotFoundError
	)
	switch {
	case errors.As(err, &ves):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: ves, Code: "validation"})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: []apperr.ValidationError{*ve}, Code: "validation"})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: nf.Error(), Code: "not_found"})
	case apperr.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Concurrent update, retry the request", Code: "conflict"})
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error", Code: "internal"})
	}
}
