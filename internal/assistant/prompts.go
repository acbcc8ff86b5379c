package assistant

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/cover_letter.txt
	coverLetterPrompt string
	//go:embed prompts/review.txt
	reviewPrompt string
	//go:embed prompts/job_match.txt
	jobMatchPrompt string
	//go:embed prompts/skills.txt
	skillsPrompt string
	//go:embed prompts/strength.txt
	strengthPrompt string
	//go:embed prompts/rewrite.txt
	rewritePrompt string
)

const (
	coverLetterSystem = "You are an expert career coach who writes concise, specific cover letters that sound like the applicant."
	reviewSystem      = "You are an expert resume reviewer with years of experience in HR and recruiting. Provide honest, constructive feedback to help job seekers improve their resumes."
	jobMatchSystem    = "You are an expert ATS system and resume analyzer that helps job seekers match their resumes to job descriptions."
	skillsSystem      = "You are an expert resume writer who knows exactly what skills are most valuable for different job positions."
	strengthSystem    = "You are an ATS resume scoring engine. Score consistently and return only JSON."
	rewriteSystem     = "You are an expert resume builder. Improve the provided resume to be more ATS-friendly, highlighting key achievements and using strong action verbs."
)

const (
	improveInstruction  = "Improve the following resume to make it more ATS-friendly and professional:"
	linkedInInstruction = "Convert the following LinkedIn profile information into a professional, ATS-friendly resume:"
)

// fill replaces {{KEY}} placeholders. Unknown placeholders are left in place.
func fill(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(tmpl))
}
