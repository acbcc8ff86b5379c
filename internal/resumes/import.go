package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/AjayKumar0077/Resumelit/internal/events"
)

// ImportResult summarizes an ImportLegacy call.
type ImportResult struct {
	Imported []Record
	Skipped  []ImportError
}

// ImportError describes one entry of a dump that was not imported.
type ImportError struct {
	Index int
	ID    string
	Err   error
}

func (e ImportError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("entry %d (%s): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e ImportError) Unwrap() error { return e.Err }

// ImportLegacy loads a dump of browser-stored resumes: a JSON array of
// records, or an object mapping id to record. Each entry goes through the
// codec, so old payload shapes are upgraded. When ownerID is set every
// imported record is assigned to it. Entries that fail to decode or whose id
// is already stored are reported in Skipped; the rest are inserted.
func (s *Store) ImportLegacy(ctx context.Context, ownerID string, r io.Reader) (ImportResult, error) {
	start := time.Now()
	res, err := s.importLegacy(ctx, strings.TrimSpace(ownerID), r)
	s.finish("import", start, "", ownerID, err)
	if err != nil {
		return ImportResult{}, err
	}
	for _, rec := range res.Imported {
		s.publish(ctx, events.KindCreated, rec)
	}
	return res, nil
}

func (s *Store) importLegacy(ctx context.Context, ownerID string, r io.Reader) (ImportResult, error) {
	entries, err := readDump(r)
	if err != nil {
		return ImportResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ImportResult{}, ErrClosed
	}

	res := ImportResult{Imported: []Record{}, Skipped: []ImportError{}}
	for i, raw := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := s.decodeLegacy(raw, ownerID)
		if err != nil {
			res.Skipped = append(res.Skipped, ImportError{Index: i, ID: rec.ID, Err: err})
			continue
		}
		if err := s.insert(ctx, rec); err != nil {
			if errors.Is(err, ErrConflict) || errors.Is(err, ErrEncode) {
				res.Skipped = append(res.Skipped, ImportError{Index: i, ID: rec.ID, Err: err})
				continue
			}
			return res, err
		}
		res.Imported = append(res.Imported, rec.clone())
	}
	return res, nil
}

func (s *Store) decodeLegacy(raw json.RawMessage, ownerID string) (Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Record{}, fmt.Errorf("%w: entry is not an object", ErrDecode)
	}
	id, err := legacyID(fields["id"])
	if err != nil {
		return Record{}, err
	}
	if id == "" {
		id = s.ids.NewID()
	}
	idJSON, _ := json.Marshal(id)
	fields["id"] = idJSON
	if ownerID != "" {
		owner, _ := json.Marshal(ownerID)
		fields["ownerId"] = owner
		delete(fields, "userId")
	}
	text, err := json.Marshal(fields)
	if err != nil {
		return Record{ID: id}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	rec, err := s.codec.Decode(text)
	if err != nil {
		return Record{ID: id}, err
	}
	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" {
		return Record{ID: id}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	return rec, nil
}

// legacyID reads a dump id. Older exports stored numeric ids such as
// Date.now() values; those keep their digits as the string id.
func legacyID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("%w: id: %v", ErrDecode, err)
	}
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id), nil
	case json.Number:
		return id.String(), nil
	default:
		return "", fmt.Errorf("%w: id must be a string or number, got %s", ErrDecode, raw)
	}
}

func readDump(r io.Reader) ([]json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: import is empty", ErrValidation)
	}

	switch data[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return list, nil
	case '{':
		var byID map[string]json.RawMessage
		if err := json.Unmarshal(data, &byID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		keys := make([]string, 0, len(byID))
		for k := range byID {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		list := make([]json.RawMessage, 0, len(keys))
		for _, k := range keys {
			list = append(list, byID[k])
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%w: import must be a JSON array or object", ErrDecode)
	}
}
