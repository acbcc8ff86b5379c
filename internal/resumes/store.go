package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AjayKumar0077/Resumelit/internal/events"
	"github.com/AjayKumar0077/Resumelit/internal/shared/metrics"
	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
)

// generated ids are retried this many times when they collide with a stored id.
const maxIDAttempts = 3

// Options configures Open. Only Medium is required.
type Options struct {
	Medium Medium
	IDs    IDGenerator
	Clock  func() time.Time
	Guard  *Guard
	Events events.Publisher
}

// Store is the authoritative collection of resume records. Every public
// method holds the store lock, so calls on one Store never interleave.
// Writes to the medium are conditional on the content read in the same call,
// which turns a lost race with another process into ErrConflict.
type Store struct {
	mu     sync.Mutex
	closed bool

	medium Medium
	codec  *Codec
	ids    IDGenerator
	now    func() time.Time
	events events.Publisher
}

// Open returns a Store over opts.Medium.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Medium == nil {
		return nil, errors.New("resumes: medium is required")
	}
	s := &Store{
		medium: opts.Medium,
		codec:  NewCodec(opts.Guard),
		ids:    opts.IDs,
		now:    opts.Clock,
		events: opts.Events,
	}
	if s.ids == nil {
		s.ids = UUIDGenerator{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	return s, nil
}

// Close releases the medium. Later calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.medium.Close()
}

// Codec exposes the codec the store persists with.
func (s *Store) Codec() *Codec {
	return s.codec
}

// Create validates in, assigns an id and timestamps, and persists a new record.
func (s *Store) Create(ctx context.Context, in CreateInput) (Record, error) {
	start := time.Now()
	rec, err := s.create(ctx, in)
	s.finish("create", start, rec.ID, in.OwnerID, err)
	if err != nil {
		return Record{}, err
	}
	s.publish(ctx, events.KindCreated, rec)
	return rec, nil
}

func (s *Store) create(ctx context.Context, in CreateInput) (Record, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Record{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	owner := strings.TrimSpace(in.OwnerID)
	if owner == "" {
		return Record{}, fmt.Errorf("%w: ownerId is required", ErrValidation)
	}
	if !in.Method.Valid() {
		return Record{}, fmt.Errorf("%w: method must be one of chat, form, upload", ErrValidation)
	}
	if in.Payload == nil {
		return Record{}, fmt.Errorf("%w: payload is required", ErrValidation)
	}
	payload, err := NormalizePayload(in.Payload)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Record{}, ErrClosed
	}

	now := s.now().UTC()
	rec := Record{
		Title:         title,
		OwnerID:       owner,
		Method:        in.Method,
		SchemaVersion: s.codec.guard.Current(),
		Payload:       payload,
		CreatedAt:     now,
		UpdatedAt:     now,
		Revision:      1,
	}

	callerID := strings.TrimSpace(in.ID)
	for attempt := 0; ; attempt++ {
		rec.ID = callerID
		if rec.ID == "" {
			rec.ID = s.ids.NewID()
		}
		err = s.insert(ctx, rec)
		if err == nil {
			return rec.clone(), nil
		}
		if callerID != "" || !errors.Is(err, ErrConflict) || attempt+1 >= maxIDAttempts {
			return Record{}, err
		}
	}
}

func (s *Store) insert(ctx context.Context, rec Record) error {
	body, err := s.codec.Encode(rec)
	if err != nil {
		return err
	}
	return s.medium.Insert(ctx, newItem(rec.ID, rec.OwnerID, body))
}

// Get returns the record with id, migrated to the current payload shape.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	start := time.Now()
	s.mu.Lock()
	rec, _, err := s.load(ctx, id)
	s.mu.Unlock()
	s.finish("get", start, id, rec.OwnerID, err)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// load reads and decodes one record; the caller holds s.mu.
func (s *Store) load(ctx context.Context, id string) (Record, Item, error) {
	if s.closed {
		return Record{}, Item{}, ErrClosed
	}
	if strings.TrimSpace(id) == "" {
		return Record{}, Item{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	item, err := s.medium.Load(ctx, id)
	if err != nil {
		return Record{}, Item{}, err
	}
	rec, err := s.codec.Decode(item.Body)
	if err != nil {
		return Record{}, Item{}, fmt.Errorf("record %s: %w", id, err)
	}
	return rec, item, nil
}

// List returns every record owned by ownerID as persisted right now, newest
// UpdatedAt first with ties broken by id.
func (s *Store) List(ctx context.Context, ownerID string) ([]Record, error) {
	start := time.Now()
	out, err := s.list(ctx, ownerID)
	s.finish("list", start, "", ownerID, err)
	return out, err
}

func (s *Store) list(ctx context.Context, ownerID string) ([]Record, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: ownerId is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	items, err := s.medium.Scan(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		rec, err := s.codec.Decode(item.Body)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", item.ID, err)
		}
		if rec.OwnerID != ownerID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Update merges the supplied fields of p into the stored record. Only Title
// and Payload may change; any other field fails with an ImmutableFieldError
// and leaves the record as it was.
func (s *Store) Update(ctx context.Context, id string, p Patch) (Record, error) {
	start := time.Now()
	rec, err := s.update(ctx, id, p)
	s.finish("update", start, id, rec.OwnerID, err)
	if err != nil {
		return Record{}, err
	}
	s.publish(ctx, events.KindUpdated, rec)
	return rec, nil
}

func (s *Store) update(ctx context.Context, id string, p Patch) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, item, err := s.load(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if field, ok := p.immutableTarget(); ok {
		return Record{}, ImmutableFieldError{Field: field}
	}
	if p.empty() {
		return Record{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if p.ExpectedRevision != 0 && p.ExpectedRevision != cur.Revision {
		return Record{}, fmt.Errorf("%w: record %s is at revision %d, not %d", ErrConflict, id, cur.Revision, p.ExpectedRevision)
	}

	next := cur.clone()
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return Record{}, fmt.Errorf("%w: title is required", ErrValidation)
		}
		next.Title = title
	}
	if p.Payload != nil {
		payload, err := NormalizePayload(p.Payload)
		if err != nil {
			return Record{}, err
		}
		next.Payload = payload
	}
	next.UpdatedAt = nextUpdatedAt(s.now().UTC(), cur.UpdatedAt)
	next.Revision = cur.Revision + 1

	body, err := s.codec.Encode(next)
	if err != nil {
		return Record{}, err
	}
	if err := s.medium.Replace(ctx, newItem(next.ID, next.OwnerID, body), item.Token); err != nil {
		return Record{}, err
	}
	return next.clone(), nil
}

// nextUpdatedAt keeps UpdatedAt strictly increasing even when the clock stalls or steps back.
func nextUpdatedAt(now, prev time.Time) time.Time {
	floor := prev.Add(time.Nanosecond)
	if now.Before(floor) {
		return floor
	}
	return now
}

// Delete removes the record with id. Deleting a missing record, including a
// second delete of the same id, fails with ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	start := time.Now()
	rec, sourceKey, err := s.delete(ctx, id)
	s.finish("delete", start, id, rec.OwnerID, err)
	if err != nil {
		return err
	}
	s.publishDeleted(ctx, rec, sourceKey)
	return nil
}

func (s *Store) delete(ctx context.Context, id string) (Record, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Record{}, "", ErrClosed
	}
	if strings.TrimSpace(id) == "" {
		return Record{}, "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	item, err := s.medium.Load(ctx, id)
	if err != nil {
		return Record{}, "", err
	}
	if err := s.medium.Remove(ctx, id, item.Token); err != nil {
		return Record{}, "", err
	}
	// Delete does not decode the body, so undecodable records can still be removed.
	return Record{ID: id, OwnerID: item.OwnerID, UpdatedAt: s.now().UTC()}, sourceKeyOf(item.Body), nil
}

// sourceKeyOf returns payload.sourceFile.key from an encoded record, or "".
func sourceKeyOf(body []byte) string {
	var doc struct {
		Payload struct {
			SourceFile struct {
				Key string `json:"key"`
			} `json:"sourceFile"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	return doc.Payload.SourceFile.Key
}

func (s *Store) publish(ctx context.Context, kind events.Kind, rec Record) {
	at := rec.UpdatedAt
	if at.IsZero() {
		at = s.now()
	}
	s.send(ctx, events.NewRecordEvent(kind, rec.ID, rec.OwnerID, string(rec.Method), rec.Revision, at))
}

func (s *Store) publishDeleted(ctx context.Context, rec Record, sourceKey string) {
	ev := events.NewRecordEvent(events.KindDeleted, rec.ID, rec.OwnerID, "", 0, s.now())
	ev.SourceKey = sourceKey
	s.send(ctx, ev)
}

func (s *Store) send(ctx context.Context, ev events.RecordEvent) {
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		metrics.IncEventPublishFailed()
		telemetry.Warn("record event publish failed", map[string]any{
			"op":        string(ev.Kind),
			"record_id": ev.RecordID,
			"owner_id":  ev.OwnerID,
			"error":     err.Error(),
		})
	}
}

func (s *Store) finish(op string, start time.Time, recordID, ownerID string, err error) {
	metrics.IncRecordOp(op, outcome(err))
	metrics.ObserveRecordOpDurationMs(metrics.Since(start))
	if err == nil || isCallerError(err) {
		return
	}
	telemetry.Error("record operation failed", map[string]any{
		"op":        op,
		"record_id": recordID,
		"owner_id":  ownerID,
		"error":     err.Error(),
	})
}

func isCallerError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrImmutableField) ||
		errors.Is(err, ErrConflict)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrImmutableField):
		return "immutable_field"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnsupportedSchema):
		return "unsupported_schema"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrEncode):
		return "encode"
	default:
		return "error"
	}
}
