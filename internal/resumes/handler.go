package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AjayKumar0077/Resumelit/internal/shared/server/middleware"
	"github.com/AjayKumar0077/Resumelit/internal/shared/server/respond"
)

const (
	maxBodySize   = 1 << 20  // 1MB
	maxImportSize = 10 << 20 // 10MB
)

// RecordStore is the Store API the HTTP layer needs.
type RecordStore interface {
	RecordReader
	Create(ctx context.Context, in CreateInput) (Record, error)
	Update(ctx context.Context, id string, p Patch) (Record, error)
	Delete(ctx context.Context, id string) error
	ImportLegacy(ctx context.Context, ownerID string, r io.Reader) (ImportResult, error)
}

// Handler wires HTTP handlers to the record store.
type Handler struct {
	Store  RecordStore
	Finder *Finder
}

// NewHandler constructs a Handler.
func NewHandler(store RecordStore) *Handler {
	return &Handler{Store: store, Finder: NewFinder(store)}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.create)
	rg.GET("/resumes", h.list)
	rg.POST("/resumes/import", h.importLegacy)
	rg.GET("/resumes/:id", h.get)
	rg.PATCH("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var req createRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	method, err := ParseMethod(req.Method)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	rec, err := h.Store.Create(c.Request.Context(), CreateInput{
		OwnerID: userID,
		Title:   req.Title,
		Method:  method,
		Payload: req.Payload,
	})
	if err != nil {
		writeError(c, err, "failed to create resume")
		return
	}
	c.Header("ETag", etag(rec))
	respond.Created(c, "/api/v1/resumes/"+rec.ID, ToResponse(rec))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var filter ListFilter
	if raw := strings.TrimSpace(c.Query("method")); raw != "" {
		m, err := ParseMethod(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		filter.Method = m
	}
	filter.TitleContains = c.Query("q")

	recs, err := h.Finder.FindAllByOwner(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, err, "failed to list resumes")
		return
	}
	out := make([]RecordSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, toSummary(r))
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	rec, ok := h.owned(c)
	if !ok {
		return
	}
	c.Header("ETag", etag(rec))
	respond.JSON(c, http.StatusOK, ToResponse(rec))
}

func (h *Handler) update(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	var fields map[string]json.RawMessage
	if err := decodeJSON(c.Request.Body, &fields); err != nil || fields == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if _, ok := h.owned(c); !ok {
		return
	}
	patch, err := patchFromJSON(fields)
	if err != nil {
		writeError(c, err, "failed to update resume")
		return
	}
	if raw := strings.TrimSpace(c.GetHeader("If-Match")); raw != "" {
		rev, err := parseRevision(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "If-Match must be a record revision", nil)
			return
		}
		patch.ExpectedRevision = rev
	}
	rec, err := h.Store.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "failed to update resume")
		return
	}
	c.Header("ETag", etag(rec))
	respond.JSON(c, http.StatusOK, ToResponse(rec))
}

func (h *Handler) delete(c *gin.Context) {
	if _, ok := h.owned(c); !ok {
		return
	}
	if err := h.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete resume")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) importLegacy(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	res, err := h.Store.ImportLegacy(c.Request.Context(), userID, c.Request.Body)
	if err != nil {
		writeError(c, err, "failed to import resumes")
		return
	}
	out := ImportResponse{
		Imported: len(res.Imported),
		Records:  make([]RecordSummary, 0, len(res.Imported)),
		Skipped:  make([]ImportSkipItem, 0, len(res.Skipped)),
	}
	for _, r := range res.Imported {
		out.Records = append(out.Records, toSummary(r))
	}
	for _, s := range res.Skipped {
		out.Skipped = append(out.Skipped, ImportSkipItem{Index: s.Index, ID: s.ID, Error: s.Err.Error()})
	}
	respond.JSON(c, http.StatusOK, out)
}

// owned loads the :id record and checks the caller owns it. Records owned by
// someone else are reported as not found.
func (h *Handler) owned(c *gin.Context) (Record, bool) {
	userID := middleware.UserIDFromContext(c)
	c.Set(middleware.RecordIDKey, c.Param("id"))
	rec, err := h.Finder.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch resume")
		return Record{}, false
	}
	if rec.OwnerID != userID {
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		return Record{}, false
	}
	return rec, true
}

func patchFromJSON(fields map[string]json.RawMessage) (Patch, error) {
	var p Patch
	for _, name := range []string{"id", "ownerId", "method", "createdAt", "updatedAt", "schemaVersion", "revision"} {
		if _, ok := fields[name]; ok {
			return Patch{}, ImmutableFieldError{Field: name}
		}
	}
	if raw, ok := fields["title"]; ok {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return Patch{}, fmt.Errorf("%w: title must be a string", ErrValidation)
		}
		p.Title = &title
	}
	if raw, ok := fields["payload"]; ok {
		payload, err := decodePayload(raw)
		if err != nil || payload == nil {
			return Patch{}, fmt.Errorf("%w: payload must be an object", ErrValidation)
		}
		p.Payload = payload
	}
	return p, nil
}

func writeError(c *gin.Context, err error, fallback string) {
	var fieldErr ImmutableFieldError
	switch {
	case errors.As(err, &fieldErr):
		respond.Error(c, http.StatusUnprocessableEntity, "immutable_field", fieldErr.Error(), gin.H{"field": fieldErr.Field})
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, ErrDecode):
		respond.Error(c, http.StatusBadRequest, "decode_error", err.Error(), nil)
	case errors.Is(err, ErrUnsupportedSchema):
		respond.Error(c, http.StatusConflict, "unsupported_schema", "resume was saved by a newer version", nil)
	case errors.Is(err, ErrEncode):
		respond.Error(c, http.StatusBadRequest, "encode_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func decodeJSON(r io.Reader, dst any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dst)
}

func parseRevision(raw string) (int64, error) {
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	rev, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || rev < 1 {
		return 0, errors.New("invalid revision")
	}
	return rev, nil
}

func etag(r Record) string {
	return `"` + strconv.FormatInt(r.Revision, 10) + `"`
}
