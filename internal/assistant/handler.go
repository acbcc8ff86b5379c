package assistant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AjayKumar0077/Resumelit/internal/llm"
	"github.com/AjayKumar0077/Resumelit/internal/resumes"
	"github.com/AjayKumar0077/Resumelit/internal/shared/server/middleware"
	"github.com/AjayKumar0077/Resumelit/internal/shared/server/respond"
)

const maxRequestSize = 1 << 20 // 1MB

// Handler exposes the assistant features over HTTP.
type Handler struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// RegisterRoutes attaches assistant routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/assistant")
	g.POST("/cover-letter", h.coverLetter)
	g.POST("/review", h.review)
	g.POST("/job-match", h.jobMatch)
	g.POST("/skills", h.skills)
	g.POST("/strength", h.strength)
	g.POST("/industry", h.industry)
	g.GET("/industries", h.industries)
	g.GET("/criteria", h.criteria)
}

func (h *Handler) coverLetter(c *gin.Context) {
	var req CoverLetterInput
	if !bind(c, &req) {
		return
	}
	out, err := h.Service.CoverLetter(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) review(c *gin.Context) {
	var req Source
	if !bind(c, &req) {
		return
	}
	out, err := h.Service.Review(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) jobMatch(c *gin.Context) {
	var req JobMatchInput
	if !bind(c, &req) {
		return
	}
	out, err := h.Service.JobMatch(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) skills(c *gin.Context) {
	var req SkillsInput
	if !bind(c, &req) {
		return
	}
	out, err := h.Service.Skills(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) strength(c *gin.Context) {
	var req StrengthInput
	if !bind(c, &req) {
		return
	}
	out, err := h.Service.Strength(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) industry(c *gin.Context) {
	var req IndustryInput
	if !bind(c, &req) {
		return
	}
	out, err := h.Service.IndustryFit(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) industries(c *gin.Context) {
	respond.OK(c, gin.H{"industries": Industries()})
}

func (h *Handler) criteria(c *gin.Context) {
	respond.OK(c, gin.H{"criteria": Criteria()})
}

func bind(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, resumes.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, resumes.ErrUnsupportedSchema):
		respond.Error(c, http.StatusConflict, "unsupported_schema", err.Error(), nil)
	case errors.Is(err, llm.ErrExternalService):
		respond.Error(c, http.StatusBadGateway, "external_service_error", "the AI provider is unavailable, please try again", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "assistant request failed", nil)
	}
}
