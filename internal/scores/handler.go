package scores

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AjayKumar0077/Resumelit/internal/shared/server/middleware"
	"github.com/AjayKumar0077/Resumelit/internal/shared/server/respond"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// RegisterRoutes attaches the score history route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id/score-history", h.history)
}

func (h *Handler) history(c *gin.Context) {
	resumeID := strings.TrimSpace(c.Param("id"))
	if resumeID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume id is required", nil)
		return
	}
	out, err := h.Service.History(c.Request.Context(), middleware.UserIDFromContext(c), resumeID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load score history", nil)
		return
	}
	respond.OK(c, out)
}
