package assistant

import "github.com/AjayKumar0077/Resumelit/internal/resumes"

// Source names the resume a feature works on: a stored record or pasted text.
// RecordID wins when both are set.
type Source struct {
	RecordID string `json:"recordId,omitempty"`
	Text     string `json:"resumeText,omitempty"`
}

type CoverLetterInput struct {
	Source
	Company        string `json:"company"`
	Position       string `json:"position"`
	Recipient      string `json:"recipient,omitempty"`
	Tone           string `json:"tone,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

type CoverLetter struct {
	Text string `json:"coverLetter"`
}

type Review struct {
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
	Degraded    bool     `json:"degraded,omitempty"`
}

// JobMatchInput describes the job to match against. When JobTitle and
// Company are both set, a successful match is also saved.
type JobMatchInput struct {
	Source
	JobDescription string `json:"jobDescription"`
	JobTitle       string `json:"jobTitle,omitempty"`
	Company        string `json:"company,omitempty"`
}

type JobMatch struct {
	Score         int      `json:"score"`
	Matches       []string `json:"matches"`
	MissingSkills []string `json:"missingSkills"`
	Suggestions   []string `json:"suggestions"`
	SavedMatchID  string   `json:"savedMatchId,omitempty"`
	Degraded      bool     `json:"degraded,omitempty"`
}

type SkillsInput struct {
	JobTitle      string   `json:"jobTitle"`
	CurrentSkills []string `json:"currentSkills,omitempty"`
}

type Skills struct {
	Suggestions []string `json:"suggestions"`
	Category    string   `json:"category,omitempty"`
	Degraded    bool     `json:"degraded,omitempty"`
}

// StrengthInput selects the resume and the optional criteria to score on top
// of the default five.
type StrengthInput struct {
	Source
	JobTitle string   `json:"jobTitle,omitempty"`
	Criteria []string `json:"criteria,omitempty"`
}

type Strength struct {
	OverallScore   int            `json:"overallScore"`
	CategoryScores map[string]int `json:"categoryScores"`
	Strengths      []string       `json:"strengths"`
	Weaknesses     []string       `json:"weaknesses"`
	Keywords       []string       `json:"keywords"`
	Degraded       bool           `json:"degraded,omitempty"`
}

type IndustryInput struct {
	Source
	Industry string `json:"industry"`
}

// IndustryFit is the static industry outlook plus how many of its in-demand
// skills the resume mentions.
type IndustryFit struct {
	Key string `json:"key"`
	IndustryProfile
	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
	Coverage      int      `json:"coverage"`
}

// RewriteKind selects the rewrite instruction.
type RewriteKind string

const (
	RewriteResume   RewriteKind = "resume"
	RewriteLinkedIn RewriteKind = "linkedin"
)

// Rewrite is a structured payload at resumes.CurrentSchemaVersion. A degraded
// rewrite carries the source text under payload.rawText.
type Rewrite struct {
	Payload  resumes.Payload `json:"payload"`
	Degraded bool            `json:"degraded,omitempty"`
}
