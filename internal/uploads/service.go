package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AjayKumar0077/Resumelit/internal/assistant"
	"github.com/AjayKumar0077/Resumelit/internal/extract"
	"github.com/AjayKumar0077/Resumelit/internal/resumes"
	"github.com/AjayKumar0077/Resumelit/internal/shared/storage/object"
	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
)

// MaxUploadBytes bounds a single resume file.
const MaxUploadBytes = 5 << 20

// ErrTooLarge is returned for files above MaxUploadBytes.
var ErrTooLarge = errors.New("file too large")

// RecordCreator is the part of the record store the upload flow writes to.
type RecordCreator interface {
	Create(ctx context.Context, in resumes.CreateInput) (resumes.Record, error)
}

// Rewriter turns extracted text into a structured payload.
type Rewriter interface {
	Rewrite(ctx context.Context, ownerID string, kind assistant.RewriteKind, source string) (assistant.Rewrite, error)
}

// File is an uploaded resume held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Options control how an upload becomes a record.
type Options struct {
	Title   string
	Improve bool
	Kind    assistant.RewriteKind
}

// Result is the record built from an upload.
type Result struct {
	Record    resumes.Record
	SourceKey string
	TextChars int
	Degraded  bool
}

// Service stores the source file, extracts its text and creates an upload record.
type Service struct {
	Objects  object.Store
	Records  RecordCreator
	Rewriter Rewriter
}

// NewService constructs a Service. Rewriter may be nil, in which case
// Improve is ignored and the record keeps the extracted text.
func NewService(objects object.Store, records RecordCreator, rewriter Rewriter) *Service {
	return &Service{Objects: objects, Records: records, Rewriter: rewriter}
}

// Import runs the upload builder flow.
func (s *Service) Import(ctx context.Context, ownerID string, f File, opts Options) (Result, error) {
	if len(f.Data) == 0 {
		return Result{}, fmt.Errorf("%w: file is empty", resumes.ErrValidation)
	}
	if len(f.Data) > MaxUploadBytes {
		return Result{}, ErrTooLarge
	}
	kind := extract.DetectType(f.ContentType, f.Name, f.Data)

	text, err := extract.Text(ctx, f.Data, kind, f.Name)
	if err != nil {
		return Result{}, err
	}

	key, err := object.SourceKey(ownerID, f.Name)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", resumes.ErrValidation, err)
	}
	size, err := s.Objects.Put(ctx, key, kind, bytes.NewReader(f.Data))
	if err != nil {
		return Result{}, fmt.Errorf("store source file: %w", err)
	}

	payload, degraded, err := s.payload(ctx, ownerID, text, opts)
	if err != nil {
		s.discard(key, ownerID)
		return Result{}, err
	}
	payload["sourceFile"] = map[string]any{
		"key":         key,
		"fileName":    f.Name,
		"contentType": kind,
		"sizeBytes":   size,
	}

	rec, err := s.Records.Create(ctx, resumes.CreateInput{
		OwnerID: ownerID,
		Title:   titleFor(opts.Title, f.Name),
		Method:  resumes.MethodUpload,
		Payload: payload,
	})
	if err != nil {
		s.discard(key, ownerID)
		return Result{}, err
	}

	telemetry.Info("upload imported", map[string]any{
		"record_id":  rec.ID,
		"owner_id":   ownerID,
		"source_key": key,
		"mime":       kind,
		"size_bytes": size,
		"improved":   opts.Improve && !degraded,
		"degraded":   degraded,
	})
	return Result{
		Record:    rec,
		SourceKey: key,
		TextChars: len([]rune(text)),
		Degraded:  degraded,
	}, nil
}

func (s *Service) payload(ctx context.Context, ownerID, text string, opts Options) (resumes.Payload, bool, error) {
	if !opts.Improve || s.Rewriter == nil {
		return resumes.Payload{"rawText": text}, false, nil
	}
	kind := opts.Kind
	if kind == "" {
		kind = assistant.RewriteResume
	}
	out, err := s.Rewriter.Rewrite(ctx, ownerID, kind, text)
	if err != nil {
		return nil, false, err
	}
	return out.Payload, out.Degraded, nil
}

// discard removes an orphaned source file; failures are only logged.
func (s *Service) discard(key, ownerID string) {
	if err := s.Objects.Delete(context.Background(), key); err != nil {
		telemetry.Warn("upload source cleanup failed", map[string]any{
			"source_key": key,
			"owner_id":   ownerID,
			"error":      err.Error(),
		})
	}
}

func titleFor(title, fileName string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	base = strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if base == "" || base == "." || base == "/" {
		return "Uploaded resume"
	}
	return base
}
