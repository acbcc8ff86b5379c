package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind names a record lifecycle change.
type Kind string

const (
	KindCreated Kind = "resume.created"
	KindUpdated Kind = "resume.updated"
	KindDeleted Kind = "resume.deleted"
)

// RecordEvent is published after a resume record change is committed.
type RecordEvent struct {
	Kind       Kind   `json:"kind"`
	RecordID   string `json:"recordId"`
	OwnerID    string `json:"ownerId"`
	Method     string `json:"method,omitempty"`
	Revision   int64  `json:"revision,omitempty"`
	OccurredAt string `json:"occurredAt"`
	Version    int    `json:"version"`

	// SourceKey is the object-store key of the uploaded file a record was
	// imported from. Set on delete events only.
	SourceKey string `json:"sourceKey,omitempty"`
}

// NewRecordEvent stamps an event with its occurrence time.
func NewRecordEvent(kind Kind, recordID, ownerID, method string, revision int64, at time.Time) RecordEvent {
	return RecordEvent{
		Kind:       kind,
		RecordID:   recordID,
		OwnerID:    ownerID,
		Method:     method,
		Revision:   revision,
		OccurredAt: at.UTC().Format(time.RFC3339Nano),
		Version:    1,
	}
}

// Encode returns the JSON representation of an event.
func Encode(ev RecordEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// Decode parses a JSON payload into a RecordEvent.
func Decode(payload []byte) (RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return RecordEvent{}, err
	}
	if ev.Kind == "" || ev.RecordID == "" {
		return RecordEvent{}, fmt.Errorf("record event missing kind or recordId")
	}
	return ev, nil
}
