package resumes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Codec converts records to and from their persisted JSON text.
type Codec struct {
	guard *Guard
}

// NewCodec builds a Codec that migrates old payloads with guard.
// A nil guard means DefaultGuard.
func NewCodec(guard *Guard) *Codec {
	if guard == nil {
		guard = DefaultGuard()
	}
	return &Codec{guard: guard}
}

type wireRecord struct {
	ID            string  `json:"id"`
	OwnerID       string  `json:"ownerId"`
	Title         string  `json:"title"`
	Method        Method  `json:"method"`
	SchemaVersion int     `json:"schemaVersion"`
	Payload       Payload `json:"payload"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
	Revision      int64   `json:"revision"`
}

// Encode returns the persisted form of r.
func (c *Codec) Encode(r Record) ([]byte, error) {
	if r.Payload == nil {
		return nil, fmt.Errorf("%w: record %s has no payload", ErrEncode, r.ID)
	}
	if err := checkCanonical(map[string]any(r.Payload), "payload", 0); err != nil {
		return nil, fmt.Errorf("%w: record %s: %v", ErrEncode, r.ID, err)
	}
	w := wireRecord{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Title:         r.Title,
		Method:        r.Method,
		SchemaVersion: r.SchemaVersion,
		Payload:       r.Payload,
		CreatedAt:     formatTime(r.CreatedAt),
		UpdatedAt:     formatTime(r.UpdatedAt),
		Revision:      r.Revision,
	}
	out, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("%w: record %s: %v", ErrEncode, r.ID, err)
	}
	return out, nil
}

// Decode parses persisted text, upgrading old payload shapes before
// checking that every required field is present.
func (c *Codec) Decode(text []byte) (Record, error) {
	rec, _, err := c.decode(text)
	return rec, err
}

// field aliases accepted from records written by the browser build.
var legacyAliases = map[string]string{
	"userId":      "ownerId",
	"data":        "payload",
	"lastUpdated": "updatedAt",
}

func (c *Codec) decode(text []byte) (Record, int, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(text, &fields); err != nil {
		return Record{}, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if fields == nil {
		return Record{}, 0, fmt.Errorf("%w: record is null", ErrDecode)
	}
	for legacy, current := range legacyAliases {
		if raw, ok := fields[legacy]; ok {
			if _, has := fields[current]; !has {
				fields[current] = raw
			}
			delete(fields, legacy)
		}
	}

	var rec Record
	var err error
	if rec.ID, err = stringField(fields, "id"); err != nil {
		return Record{}, 0, err
	}
	if rec.OwnerID, err = stringField(fields, "ownerId"); err != nil {
		return Record{}, 0, err
	}
	if rec.Title, err = stringField(fields, "title"); err != nil {
		return Record{}, 0, err
	}
	method, err := stringField(fields, "method")
	if err != nil {
		return Record{}, 0, err
	}
	rec.Method = Method(method)

	version := 1
	if raw, ok := fields["schemaVersion"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &version); err != nil {
			return Record{}, 0, fmt.Errorf("%w: schemaVersion: %v", ErrDecode, err)
		}
	}
	rec.Revision = 1
	if raw, ok := fields["revision"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &rec.Revision); err != nil {
			return Record{}, 0, fmt.Errorf("%w: revision: %v", ErrDecode, err)
		}
	}
	if rec.CreatedAt, err = timeField(fields, "createdAt"); err != nil {
		return Record{}, 0, err
	}
	if rec.UpdatedAt, err = timeField(fields, "updatedAt"); err != nil {
		return Record{}, 0, err
	}

	var payload Payload
	if raw, ok := fields["payload"]; ok && !isNull(raw) {
		payload, err = decodePayload(raw)
		if err != nil {
			return Record{}, 0, err
		}
	}

	steps := 0
	if payload != nil || version > c.guard.Current() {
		payload, version, steps, err = c.guard.Migrate(version, payload)
		if err != nil {
			return Record{}, 0, err
		}
	}
	rec.Payload = payload
	rec.SchemaVersion = version

	if err := validateDecoded(rec, fields); err != nil {
		return Record{}, 0, err
	}
	return rec, steps, nil
}

func validateDecoded(rec Record, fields map[string]json.RawMessage) error {
	var missing []string
	if rec.ID == "" {
		missing = append(missing, "id")
	}
	if rec.OwnerID == "" {
		missing = append(missing, "ownerId")
	}
	if _, ok := fields["title"]; !ok {
		missing = append(missing, "title")
	}
	if rec.Method == "" {
		missing = append(missing, "method")
	}
	if rec.Payload == nil {
		missing = append(missing, "payload")
	}
	if rec.CreatedAt.IsZero() {
		missing = append(missing, "createdAt")
	}
	if rec.UpdatedAt.IsZero() {
		missing = append(missing, "updatedAt")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrSchema, strings.Join(missing, ", "))
	}
	if !rec.Method.Valid() {
		return fmt.Errorf("%w: unknown method %q", ErrSchema, rec.Method)
	}
	if rec.UpdatedAt.Before(rec.CreatedAt) {
		return fmt.Errorf("%w: updatedAt precedes createdAt", ErrSchema)
	}
	if rec.Revision < 1 {
		return fmt.Errorf("%w: invalid revision %d", ErrSchema, rec.Revision)
	}
	return nil
}

// NormalizePayload converts v into canonical JSON values so that a payload
// survives Encode/Decode unchanged.
func NormalizePayload(v any) (Payload, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: payload is required", ErrValidation)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrEncode, err)
	}
	p, err := decodePayload(raw)
	if err != nil {
		if errors.Is(err, ErrDecode) {
			return nil, fmt.Errorf("%w: payload must be a JSON object", ErrValidation)
		}
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: payload is required", ErrValidation)
	}
	return p, nil
}

// maxPayloadDepth bounds nesting so cyclic maps fail instead of recursing forever.
const maxPayloadDepth = 128

// checkCanonical accepts only values that decode back to themselves:
// string, bool, nil, json.Number, []any and map[string]any.
func checkCanonical(v any, path string, depth int) error {
	if depth > maxPayloadDepth {
		return fmt.Errorf("%s: nested deeper than %d levels", path, maxPayloadDepth)
	}
	switch val := v.(type) {
	case nil, bool:
		return nil
	case string:
		if !utf8.ValidString(val) {
			return fmt.Errorf("%s: invalid UTF-8", path)
		}
		return nil
	case json.Number:
		if !isNumberLiteral(string(val)) {
			return fmt.Errorf("%s: invalid number %q", path, string(val))
		}
		return nil
	case []any:
		if val == nil {
			return fmt.Errorf("%s: nil list", path)
		}
		for i, item := range val {
			if err := checkCanonical(item, fmt.Sprintf("%s[%d]", path, i), depth+1); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		if val == nil {
			return fmt.Errorf("%s: nil object", path)
		}
		for k, item := range val {
			if !utf8.ValidString(k) {
				return fmt.Errorf("%s: invalid UTF-8 key", path)
			}
			if err := checkCanonical(item, path+"."+k, depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%s: unsupported value of type %T", path, v)
	}
}

func isNumberLiteral(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

func decodePayload(raw json.RawMessage) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrDecode, err)
	}
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: payload must be an object", ErrDecode)
	}
	return Payload(obj), nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrDecode, name)
	}
	return s, nil
}

func timeField(fields map[string]json.RawMessage, name string) (time.Time, error) {
	s, err := stringField(fields, name)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}
	return t.UTC(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
