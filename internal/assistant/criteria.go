package assistant

import (
	"fmt"
	"strings"
)

// Criterion is one scoring category of the strength analysis.
type Criterion struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

var criteria = []Criterion{
	{Key: "content", Description: "Evaluates the quality and completeness of your resume content", Default: true},
	{Key: "format", Description: "Analyzes the structure, layout, and visual organization", Default: true},
	{Key: "impact", Description: "Measures how effectively your achievements are presented", Default: true},
	{Key: "relevance", Description: "Assesses how well your experience matches job requirements", Default: true},
	{Key: "keywords", Description: "Checks for important industry and role-specific terms", Default: true},
	{Key: "ats", Description: "Evaluates compatibility with Applicant Tracking Systems"},
	{Key: "readability", Description: "Measures how easy your resume is to scan and understand"},
	{Key: "grammar", Description: "Checks for spelling, grammar, and punctuation issues"},
	{Key: "industryFit", Description: "Analyzes alignment with industry-specific expectations"},
	{Key: "careerLevel", Description: "Evaluates appropriateness for your career stage"},
}

// Criteria lists every scoring category in display order.
func Criteria() []Criterion {
	return append([]Criterion(nil), criteria...)
}

// selectCriteria returns the default categories plus the requested optional
// ones, in display order. Keys match case-insensitively.
func selectCriteria(requested []string) ([]Criterion, error) {
	want := make(map[string]bool, len(requested))
	for _, r := range requested {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		found := false
		for _, c := range criteria {
			if strings.EqualFold(c.Key, r) {
				want[c.Key] = true
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown criterion %q", ErrInvalidInput, r)
		}
	}
	out := make([]Criterion, 0, len(criteria))
	for _, c := range criteria {
		if c.Default || want[c.Key] {
			out = append(out, c)
		}
	}
	return out, nil
}

// criteriaPromptVars renders the category list and the categoryScores JSON
// skeleton for the strength prompt.
func criteriaPromptVars(selected []Criterion) (list, shape string) {
	lines := make([]string, 0, len(selected))
	fields := make([]string, 0, len(selected))
	for _, c := range selected {
		lines = append(lines, "- "+c.Key+": "+c.Description)
		fields = append(fields, fmt.Sprintf("    %q: [0-100]", c.Key))
	}
	return strings.Join(lines, "\n"), strings.Join(fields, ",\n")
}
