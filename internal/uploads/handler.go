package uploads

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AjayKumar0077/Resumelit/internal/assistant"
	"github.com/AjayKumar0077/Resumelit/internal/extract"
	"github.com/AjayKumar0077/Resumelit/internal/resumes"
	"github.com/AjayKumar0077/Resumelit/internal/shared/server/middleware"
	"github.com/AjayKumar0077/Resumelit/internal/shared/server/respond"
	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
)

// multipart framing on top of the file itself
const formOverhead = 64 << 10

type uploadResponse struct {
	Record    resumes.RecordResponse `json:"record"`
	SourceKey string                 `json:"sourceKey"`
	TextChars int                    `json:"textChars"`
	Degraded  bool                   `json:"degraded,omitempty"`
}

// Handler exposes the upload flow over HTTP.
type Handler struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+formOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds 5MB", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart field \"file\" is required", nil)
		return
	}
	if fh.Size > MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds 5MB", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unreadable file", nil)
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unreadable file", nil)
		return
	}

	improve := false
	if raw := strings.TrimSpace(c.PostForm("improve")); raw != "" {
		improve, err = strconv.ParseBool(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "improve must be true or false", nil)
			return
		}
	}
	kind := assistant.RewriteKind(strings.ToLower(strings.TrimSpace(c.PostForm("kind"))))
	if kind != "" && kind != assistant.RewriteResume && kind != assistant.RewriteLinkedIn {
		respond.Error(c, http.StatusBadRequest, "validation_error", "kind must be resume or linkedin", nil)
		return
	}

	res, err := h.Service.Import(c.Request.Context(), middleware.UserIDFromContext(c), File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, Options{
		Title:   c.PostForm("title"),
		Improve: improve,
		Kind:    kind,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, uploadResponse{
		Record:    resumes.ToResponse(res.Record),
		SourceKey: res.SourceKey,
		TextChars: res.TextChars,
		Degraded:  res.Degraded,
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds 5MB", nil)
	case errors.Is(err, extract.ErrUnsupportedType):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_file_type", "upload a PDF, DOCX or text file", nil)
	case errors.Is(err, extract.ErrUnreadable):
		respond.Error(c, http.StatusUnprocessableEntity, "unreadable_file", "the file could not be read", nil)
	case errors.Is(err, extract.ErrNoText):
		respond.Error(c, http.StatusUnprocessableEntity, "no_text", "no text could be extracted from the file", nil)
	case errors.Is(err, resumes.ErrValidation), errors.Is(err, assistant.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		telemetry.Error("upload failed", map[string]any{
			"owner_id":   middleware.UserIDFromContext(c),
			"request_id": c.GetString("requestId"),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to import upload", nil)
	}
}
