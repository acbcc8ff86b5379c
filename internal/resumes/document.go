package resumes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is a typed, read-only view of a current-version payload.
type Document struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	JobTitle     string       `json:"jobTitle,omitempty"`
	Summary      string       `json:"summary,omitempty"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []string     `json:"skills"`
}

type PersonalInfo struct {
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Location string   `json:"location"`
	Links    []string `json:"links"`
}

type Experience struct {
	ID          string   `json:"id,omitempty"`
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Description string   `json:"description,omitempty"`
	Highlights  []string `json:"highlights"`
}

type Education struct {
	ID          string `json:"id,omitempty"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// DocumentOf decodes r's payload. Unknown payload keys are ignored and
// fields of the wrong type fail with ErrSchema.
func DocumentOf(r Record) (Document, error) {
	if r.SchemaVersion != CurrentSchemaVersion {
		return Document{}, fmt.Errorf("%w: document view needs v%d, record is v%d", ErrSchema, CurrentSchemaVersion, r.SchemaVersion)
	}
	raw, err := json.Marshal(r.Payload)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return doc, nil
}

// Payload converts a document back into a payload.
func (d Document) Payload() (Payload, error) {
	return NormalizePayload(d)
}

// PlainText renders the document as plain text for prompts and keyword checks.
func (d Document) PlainText() string {
	var b strings.Builder
	line := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}

	line(d.PersonalInfo.FullName)
	line(d.JobTitle)
	line(strings.Join(nonEmpty(d.PersonalInfo.Email, d.PersonalInfo.Phone, d.PersonalInfo.Location), " | "))
	for _, l := range d.PersonalInfo.Links {
		line(l)
	}
	if strings.TrimSpace(d.Summary) != "" {
		b.WriteString("\nSUMMARY\n")
		line(d.Summary)
	}
	if len(d.Experience) > 0 {
		b.WriteString("\nEXPERIENCE\n")
		for _, e := range d.Experience {
			line(strings.Join(nonEmpty(e.Position, e.Company), " at "))
			line(strings.Join(nonEmpty(e.StartDate, e.EndDate), " - "))
			if len(e.Highlights) > 0 {
				for _, h := range e.Highlights {
					line("- " + h)
				}
			} else {
				line(e.Description)
			}
		}
	}
	if len(d.Education) > 0 {
		b.WriteString("\nEDUCATION\n")
		for _, e := range d.Education {
			line(strings.Join(nonEmpty(e.Degree, e.Field), ", "))
			line(e.Institution)
		}
	}
	if len(d.Skills) > 0 {
		b.WriteString("\nSKILLS\n")
		line(strings.Join(d.Skills, ", "))
	}
	return strings.TrimSpace(b.String())
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
