package scores

import "time"

// Entry is one strength analysis of a stored resume.
type Entry struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"-"`
	ResumeID       string         `json:"resumeId"`
	OverallScore   int            `json:"overallScore"`
	CategoryScores map[string]int `json:"categoryScores"`
	CreatedAt      time.Time      `json:"date"`
}

// Improvement names the category that gained the most between the first and
// the latest entry.
type Improvement struct {
	Category    string `json:"category"`
	Improvement int    `json:"improvement"`
}

// History is the score trend of one resume, oldest entry first.
type History struct {
	ResumeID           string       `json:"resumeId"`
	Entries            []Entry      `json:"entries"`
	CurrentScore       int          `json:"currentScore"`
	ImprovementPercent int          `json:"improvementPercent"`
	MostImproved       *Improvement `json:"mostImproved,omitempty"`
}
