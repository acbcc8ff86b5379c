package chatbuilder

import "github.com/AjayKumar0077/Resumelit/internal/resumes"

// Step is the question the conversation is waiting on.
type Step string

const (
	StepName       Step = "name"
	StepExperience Step = "experience"
	StepEducation  Step = "education"
	StepSkills     Step = "skills"
	StepDone       Step = "done"
)

// State is the conversation so far. The client sends it back with every
// message, so the server keeps nothing between turns.
type State struct {
	Step       Step   `json:"step"`
	Name       string `json:"name,omitempty"`
	Experience string `json:"experience,omitempty"`
	Education  string `json:"education,omitempty"`
	Skills     string `json:"skills,omitempty"`
}

// Input is one chat turn. Save defaults to true; Improve runs the finished
// resume through the rewriter before it is returned.
type Input struct {
	State   State  `json:"state"`
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
	Save    *bool  `json:"save,omitempty"`
	Improve bool   `json:"improve,omitempty"`
}

// Reply carries the next state and the assistant's answer. Payload and Record
// are set once the conversation completes.
type Reply struct {
	State    State                   `json:"state"`
	Reply    string                  `json:"reply"`
	Complete bool                    `json:"complete"`
	Payload  resumes.Payload         `json:"payload,omitempty"`
	Record   *resumes.RecordResponse `json:"record,omitempty"`
	Degraded bool                    `json:"degraded,omitempty"`
}
