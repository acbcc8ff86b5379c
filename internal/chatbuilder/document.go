package chatbuilder

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/AjayKumar0077/Resumelit/internal/resumes"
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// buildDocument turns the collected answers into a structured resume. It does
// not call the AI provider.
func buildDocument(st State) resumes.Document {
	exp := parseExperience(st.Experience)
	edu := parseEducation(st.Education)
	return resumes.Document{
		PersonalInfo: resumes.PersonalInfo{
			FullName: strings.TrimSpace(st.Name),
			Links:    []string{},
		},
		JobTitle:   exp.Position,
		Experience: []resumes.Experience{exp},
		Education:  []resumes.Education{edu},
		Skills:     parseSkills(st.Skills),
	}
}

// parseExperience reads "<position> at <company>, <responsibilities>". When
// there is no " at " the whole answer becomes the description.
func parseExperience(answer string) resumes.Experience {
	answer = strings.TrimSpace(answer)
	exp := resumes.Experience{ID: uuid.NewString(), Highlights: []string{}}

	head, rest, _ := strings.Cut(answer, "\n")
	i := strings.Index(strings.ToLower(head), " at ")
	if i < 0 {
		exp.Description = answer
		return exp
	}
	exp.Position = strings.TrimSpace(head[:i])
	after := head[i+len(" at "):]
	company, tail := after, ""
	if j := strings.IndexAny(after, ",;"); j >= 0 {
		company, tail = after[:j], after[j+1:]
	} else if j := strings.Index(after, " - "); j >= 0 {
		company, tail = after[:j], after[j+3:]
	}
	exp.Company = strings.TrimSpace(company)

	desc := strings.TrimSpace(strings.TrimSpace(tail) + "\n" + strings.TrimSpace(rest))
	exp.Description = desc
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
		if line != "" {
			exp.Highlights = append(exp.Highlights, line)
		}
	}
	return exp
}

// parseEducation reads "<degree>, <institution>, <year>". The first year found
// is the graduation date and a "<degree> in <field>" splits the field out.
func parseEducation(answer string) resumes.Education {
	edu := resumes.Education{ID: uuid.NewString()}
	parts := []string{}
	for _, p := range strings.Split(answer, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if edu.EndDate == "" {
			if year := yearPattern.FindString(p); year != "" {
				edu.EndDate = year
				p = strings.Trim(strings.TrimSpace(strings.Replace(p, year, "", 1)), "()-")
				p = strings.TrimSpace(p)
			}
		}
		if p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
	case 1:
		edu.Institution = parts[0]
	default:
		edu.Degree = parts[0]
		edu.Institution = strings.Join(parts[1:], ", ")
	}
	if degree, field, ok := strings.Cut(edu.Degree, " in "); ok {
		edu.Degree = strings.TrimSpace(degree)
		edu.Field = strings.TrimSpace(field)
	}
	return edu
}

func parseSkills(answer string) []string {
	fields := strings.FieldsFunc(answer, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(strings.TrimSpace(f), ".")
		f = strings.TrimPrefix(f, "and ")
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		k := strings.ToLower(f)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}
