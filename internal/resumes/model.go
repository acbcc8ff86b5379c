package resumes

import (
	"fmt"
	"strings"
	"time"
)

// Method records which builder flow produced a resume.
type Method string

const (
	MethodChat   Method = "chat"
	MethodForm   Method = "form"
	MethodUpload Method = "upload"
)

// Valid reports whether m is one of the known methods, exactly as spelled.
func (m Method) Valid() bool {
	switch m {
	case MethodChat, MethodForm, MethodUpload:
		return true
	}
	return false
}

// ParseMethod validates a method literal.
func ParseMethod(raw string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(raw))); m {
	case MethodChat, MethodForm, MethodUpload:
		return m, nil
	default:
		return "", fmt.Errorf("%w: method must be one of chat, form, upload", ErrValidation)
	}
}

// Payload is the resume document owned by the UI layer. The store keeps it as
// JSON-canonical values (string, bool, nil, json.Number, []any, map[string]any).
type Payload map[string]any

// Record is one stored resume plus its metadata.
type Record struct {
	ID            string
	OwnerID       string
	Title         string
	Method        Method
	SchemaVersion int
	Payload       Payload
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Revision      int64
}

// CreateInput carries the caller-supplied fields of a new record.
// ID is optional; when set, the store re-checks it is not taken.
type CreateInput struct {
	ID      string
	OwnerID string
	Title   string
	Method  Method
	Payload Payload
}

// Patch lists the fields an Update should change; nil fields are left as stored.
// Only Title and Payload are mutable. The remaining fields exist so that an
// attempt to change them is rejected instead of silently dropped.
type Patch struct {
	Title   *string
	Payload Payload

	ID            *string
	OwnerID       *string
	Method        *Method
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	SchemaVersion *int
	Revision      *int64

	// ExpectedRevision, when non-zero, rejects the update with ErrConflict
	// unless the stored record is at exactly this revision.
	ExpectedRevision int64
}

func (p Patch) immutableTarget() (string, bool) {
	switch {
	case p.ID != nil:
		return "id", true
	case p.OwnerID != nil:
		return "ownerId", true
	case p.Method != nil:
		return "method", true
	case p.CreatedAt != nil:
		return "createdAt", true
	case p.UpdatedAt != nil:
		return "updatedAt", true
	case p.SchemaVersion != nil:
		return "schemaVersion", true
	case p.Revision != nil:
		return "revision", true
	}
	return "", false
}

func (p Patch) empty() bool {
	return p.Title == nil && p.Payload == nil
}

// clone returns a deep copy so callers can never alias stored state.
func (r Record) clone() Record {
	out := r
	out.Payload = clonePayload(r.Payload)
	return out
}

func clonePayload(p Payload) Payload {
	if p == nil {
		return nil
	}
	return Payload(cloneValue(map[string]any(p)).(map[string]any))
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case Payload:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
