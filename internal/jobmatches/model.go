package jobmatches

import "time"

// SavedMatch is a job match result the user kept for later comparison.
type SavedMatch struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"-"`
	ResumeID       string    `json:"resumeId,omitempty"`
	JobTitle       string    `json:"jobTitle"`
	Company        string    `json:"company"`
	JobDescription string    `json:"jobDescription"`
	Score          int       `json:"score"`
	Matches        []string  `json:"matches"`
	MissingSkills  []string  `json:"missingSkills"`
	Suggestions    []string  `json:"suggestions"`
	CreatedAt      time.Time `json:"date"`
}

// Summary is the saved jobs list entry.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"date"`
}

type SaveInput struct {
	OwnerID        string   `json:"-"`
	ResumeID       string   `json:"resumeId,omitempty"`
	JobTitle       string   `json:"jobTitle"`
	Company        string   `json:"company"`
	JobDescription string   `json:"jobDescription"`
	Score          int      `json:"score"`
	Matches        []string `json:"matches,omitempty"`
	MissingSkills  []string `json:"missingSkills,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`
}

func (m SavedMatch) Summary() Summary {
	return Summary{
		ID:        m.ID,
		Title:     m.JobTitle,
		Company:   m.Company,
		Score:     m.Score,
		CreatedAt: m.CreatedAt,
	}
}
