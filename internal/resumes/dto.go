package resumes

import "time"

// RecordResponse is the outward-facing representation of a record.
type RecordResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Title         string    `json:"title"`
	Method        Method    `json:"method"`
	SchemaVersion int       `json:"schemaVersion"`
	Payload       Payload   `json:"payload"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Revision      int64     `json:"revision"`
}

// RecordSummary is the dashboard list entry; it omits the payload.
type RecordSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Method    Method    `json:"method"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Revision  int64     `json:"revision"`
}

// ImportResponse reports the outcome of a legacy import.
type ImportResponse struct {
	Imported int              `json:"imported"`
	Records  []RecordSummary  `json:"records"`
	Skipped  []ImportSkipItem `json:"skipped"`
}

// ImportSkipItem reports a dump entry that was not imported and why.
type ImportSkipItem struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

type createRequest struct {
	Title   string  `json:"title"`
	Method  string  `json:"method"`
	Payload Payload `json:"payload"`
}

// ToResponse converts a record for JSON output.
func ToResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Title:         r.Title,
		Method:        r.Method,
		SchemaVersion: r.SchemaVersion,
		Payload:       r.Payload,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Revision:      r.Revision,
	}
}

func toSummary(r Record) RecordSummary {
	return RecordSummary{
		ID:        r.ID,
		Title:     r.Title,
		Method:    r.Method,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Revision:  r.Revision,
	}
}
