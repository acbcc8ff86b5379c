package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayKumar0077/Resumelit/internal/llm"
	"github.com/AjayKumar0077/Resumelit/internal/resumes"
)

const sampleResume = `Jane Doe
Software Engineer
SKILLS
Go, TypeScript, Docker, AWS`

type call struct {
	prompt string
	system string
}

// scripted replies in order and records every call.
type scripted struct {
	replies []string
	errs    []error
	calls   []call
}

func (s *scripted) Generate(ctx context.Context, prompt, system string) (string, error) {
	i := len(s.calls)
	s.calls = append(s.calls, call{prompt: prompt, system: system})
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	reply := ""
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	return reply, err
}

func failing() llm.Generator {
	return llm.GeneratorFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("connection refused")
	})
}

func newTestStore(t *testing.T) *resumes.Store {
	t.Helper()
	store, err := resumes.Open(context.Background(), resumes.Options{Medium: resumes.NewMemoryMedium()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedRecord(t *testing.T, store *resumes.Store, owner string) resumes.Record {
	t.Helper()
	doc := resumes.Document{
		PersonalInfo: resumes.PersonalInfo{FullName: "Jane Doe", Email: "jane@example.com"},
		Summary:      "Backend engineer",
		Experience: []resumes.Experience{{
			Company:    "Acme",
			Position:   "Engineer",
			Highlights: []string{"Shipped Kubernetes migration"},
		}},
		Skills: []string{"Go", "Docker", "TypeScript"},
	}
	payload, err := doc.Payload()
	require.NoError(t, err)
	rec, err := store.Create(context.Background(), resumes.CreateInput{
		OwnerID: owner,
		Title:   "Main",
		Method:  resumes.MethodForm,
		Payload: payload,
	})
	require.NoError(t, err)
	return rec
}

func TestResumeTextFromRecord(t *testing.T) {
	store := newTestStore(t)
	rec := seedRecord(t, store, "user-1")
	svc := NewService(nil, resumes.NewFinder(store))

	text, err := svc.ResumeText(context.Background(), "user-1", Source{RecordID: rec.ID})
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Engineer at Acme")

	_, err = svc.ResumeText(context.Background(), "user-2", Source{RecordID: rec.ID})
	assert.ErrorIs(t, err, resumes.ErrNotFound)

	_, err = svc.ResumeText(context.Background(), "user-1", Source{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResumeTextFallsBackToRawText(t *testing.T) {
	store := newTestStore(t)
	rec, err := store.Create(context.Background(), resumes.CreateInput{
		OwnerID: "user-1",
		Title:   "Upload",
		Method:  resumes.MethodUpload,
		Payload: resumes.Payload{"rawText": "plain resume text"},
	})
	require.NoError(t, err)

	svc := NewService(nil, resumes.NewFinder(store))
	text, err := svc.ResumeText(context.Background(), "user-1", Source{RecordID: rec.ID})
	require.NoError(t, err)
	assert.Equal(t, "plain resume text", text)
}

func TestCoverLetter(t *testing.T) {
	gen := &scripted{replies: []string{"  Dear Hiring Manager,\n\nI am excited...  "}}
	svc := NewService(gen, nil)

	out, err := svc.CoverLetter(context.Background(), "u", CoverLetterInput{
		Source:   Source{Text: sampleResume},
		Company:  "Acme",
		Position: "Backend Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager,\n\nI am excited...", out.Text)
	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0].prompt, "Backend Engineer position at Acme")
	assert.Contains(t, gen.calls[0].prompt, "Tone: professional")
	assert.NotContains(t, gen.calls[0].prompt, "{{")
	assert.Equal(t, coverLetterSystem, gen.calls[0].system)
}

func TestCoverLetterErrors(t *testing.T) {
	svc := NewService(failing(), nil)

	_, err := svc.CoverLetter(context.Background(), "u", CoverLetterInput{Source: Source{Text: sampleResume}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CoverLetter(context.Background(), "u", CoverLetterInput{
		Source:   Source{Text: sampleResume},
		Company:  "Acme",
		Position: "Engineer",
	})
	assert.ErrorIs(t, err, llm.ErrExternalService)

	blank := NewService(&scripted{replies: []string{"   "}}, nil)
	_, err = blank.CoverLetter(context.Background(), "u", CoverLetterInput{
		Source:   Source{Text: sampleResume},
		Company:  "Acme",
		Position: "Engineer",
	})
	assert.ErrorIs(t, err, llm.ErrExternalService)
}

func TestReview(t *testing.T) {
	gen := &scripted{replies: []string{"```json\n{\"strengths\":[\"Clear\",\" \"],\"weaknesses\":[\"Short\"],\"suggestions\":[\"Add metrics\"]}\n```"}}
	svc := NewService(gen, nil)

	out, err := svc.Review(context.Background(), "u", Source{Text: sampleResume})
	require.NoError(t, err)
	assert.False(t, out.Degraded)
	assert.Equal(t, []string{"Clear"}, out.Strengths)
	assert.Equal(t, []string{"Short"}, out.Weaknesses)
	assert.Equal(t, []string{"Add metrics"}, out.Suggestions)
	assert.Equal(t, reviewSystem, gen.calls[0].system)
}

func TestReviewDegradesOnMalformedJSON(t *testing.T) {
	gen := &scripted{replies: []string{"I think it is fine", "still not json"}}
	svc := NewService(gen, nil)

	out, err := svc.Review(context.Background(), "u", Source{Text: sampleResume})
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Equal(t, []string{reviewFailed}, out.Suggestions)
	assert.Empty(t, out.Strengths)
	assert.Len(t, gen.calls, 2, "one repair attempt")
}

func TestJobMatchClampsScore(t *testing.T) {
	cases := []struct {
		reply string
		want  int
	}{
		{`{"score": 87.6, "matches": ["Go"], "missingSkills": ["Rust"], "suggestions": []}`, 88},
		{`{"score": 140}`, 100},
		{`{"score": -5}`, 0},
	}
	for _, tc := range cases {
		svc := NewService(&scripted{replies: []string{tc.reply}}, nil)
		out, err := svc.JobMatch(context.Background(), "u", JobMatchInput{
			Source:         Source{Text: sampleResume},
			JobDescription: "Go developer",
		})
		require.NoError(t, err)
		assert.Equal(t, tc.want, out.Score, tc.reply)
		assert.False(t, out.Degraded)
		assert.NotNil(t, out.Matches)
	}
}

func TestJobMatchFallback(t *testing.T) {
	svc := NewService(failing(), nil)

	_, err := svc.JobMatch(context.Background(), "u", JobMatchInput{Source: Source{Text: sampleResume}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	out, err := svc.JobMatch(context.Background(), "u", JobMatchInput{
		Source:         Source{Text: sampleResume},
		JobDescription: "Go developer",
	})
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Equal(t, 0, out.Score)
	assert.Equal(t, []string{jobMatchFailed}, out.Suggestions)
}

func TestSkills(t *testing.T) {
	gen := &scripted{replies: []string{"Kubernetes, go, Terraform,\n- gRPC, Terraform"}}
	svc := NewService(gen, nil)

	out, err := svc.Skills(context.Background(), "u", SkillsInput{
		JobTitle:      "Backend Developer",
		CurrentSkills: []string{"Go", "Docker"},
	})
	require.NoError(t, err)
	assert.False(t, out.Degraded)
	assert.Equal(t, []string{"Kubernetes", "Terraform", "gRPC"}, out.Suggestions)
	assert.Contains(t, gen.calls[0].prompt, "Current skills: Go, Docker")
}

func TestSkillsFallbackByCategory(t *testing.T) {
	cases := map[string]string{
		"Senior Software Engineer": "developer",
		"Product Designer":         "designer",
		"Engineering Director":     "developer",
		"Account Manager":          "manager",
		"Marketing Lead":           "marketing",
		"Nurse":                    "default",
	}
	svc := NewService(failing(), nil)
	for title, category := range cases {
		out, err := svc.Skills(context.Background(), "u", SkillsInput{JobTitle: title, CurrentSkills: []string{"git"}})
		require.NoError(t, err)
		assert.True(t, out.Degraded, title)
		assert.Equal(t, category, out.Category, title)
		assert.NotContains(t, out.Suggestions, "Git", title)
	}
}

func TestSkillsFallbackWhenNothingNew(t *testing.T) {
	svc := NewService(&scripted{replies: []string{"Go, Docker"}}, nil)
	out, err := svc.Skills(context.Background(), "u", SkillsInput{JobTitle: "Designer", CurrentSkills: []string{"go", "docker"}})
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Equal(t, skillTable["designer"], out.Suggestions)
}

func TestStrength(t *testing.T) {
	reply := `{"overallScore": 91.2, "categoryScores": {"content": 90, "format": 120, "impact": 70, "relevance": 60, "keywords": 50}, "strengths": ["Metrics"], "weaknesses": [], "keywords": ["Go"]}`
	gen := &scripted{replies: []string{reply}}
	svc := NewService(gen, nil)

	out, err := svc.Strength(context.Background(), "u", StrengthInput{Source: Source{Text: sampleResume}, JobTitle: "SRE"})
	require.NoError(t, err)
	assert.False(t, out.Degraded)
	assert.Equal(t, 91, out.OverallScore)
	assert.Equal(t, 100, out.CategoryScores["format"])
	assert.Len(t, out.CategoryScores, 5)
	assert.Equal(t, []string{"Go"}, out.Keywords)
	assert.Contains(t, gen.calls[0].prompt, "for a SRE position")
}

func TestStrengthFallsBackToSample(t *testing.T) {
	svc := NewService(failing(), nil)
	out, err := svc.Strength(context.Background(), "u", StrengthInput{Source: Source{Text: sampleResume}})
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Equal(t, 78, out.OverallScore)
	assert.Equal(t, 70, out.CategoryScores["format"])
	assert.NotContains(t, out.CategoryScores, "ats")
}

func TestIndustryFit(t *testing.T) {
	gen := &scripted{}
	svc := NewService(gen, nil)

	out, err := svc.IndustryFit(context.Background(), "u", IndustryInput{
		Source:   Source{Text: "Built services in TypeScript on AWS with Docker. Some ci/cd pipelines work."},
		Industry: "Technology",
	})
	require.NoError(t, err)
	assert.Equal(t, "tech", out.Key)
	assert.Equal(t, "Technology", out.Industry)
	assert.Equal(t, []string{
		"TypeScript",
		"Cloud platforms (AWS/Azure/GCP)",
		"CI/CD pipelines",
		"Containerization (Docker/Kubernetes)",
	}, out.MatchedSkills)
	assert.Equal(t, []string{"React/Next.js", "AI/ML frameworks"}, out.MissingSkills)
	assert.Equal(t, 66, out.Coverage)
	assert.Empty(t, gen.calls, "industry fit never calls the provider")

	_, err = svc.IndustryFit(context.Background(), "u", IndustryInput{Source: Source{Text: "x"}, Industry: "mining"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMentionsSkillMatchesWholeWords(t *testing.T) {
	assert.False(t, mentionsSkill("built a new guide", "UI/UX for patient interfaces"))
	assert.True(t, mentionsSkill("owned the ui for checkout", "UI/UX for patient interfaces"))
	assert.True(t, mentionsSkill("python and sql", "Python/R for financial modeling"))
	assert.False(t, mentionsSkill("rust and c", "Python/R for financial modeling"))
}

func TestRewrite(t *testing.T) {
	reply := `{"personalInfo": {"fullName": "Jane Doe"}, "summary": "Engineer", "experience": [{"company": "Acme", "position": "Engineer"}], "skills": ["Go"]}`
	gen := &scripted{replies: []string{reply}}
	svc := NewService(gen, nil)

	out, err := svc.Rewrite(context.Background(), "u", RewriteLinkedIn, "John profile")
	require.NoError(t, err)
	assert.False(t, out.Degraded)
	assert.Contains(t, gen.calls[0].prompt, linkedInInstruction)

	doc, err := resumes.DocumentOf(resumes.Record{SchemaVersion: resumes.CurrentSchemaVersion, Payload: out.Payload})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", doc.PersonalInfo.FullName)
	assert.Equal(t, "Acme", doc.Experience[0].Company)
	assert.NotNil(t, doc.Experience[0].Highlights)
	assert.NotContains(t, out.Payload, "rawText")
}

func TestRewriteDegradesToRawText(t *testing.T) {
	for name, gen := range map[string]llm.Generator{
		"provider error": failing(),
		"malformed":      &scripted{replies: []string{"<html>nope</html>", "nope"}},
		"empty document": &scripted{replies: []string{"{}"}},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(gen, nil)
			out, err := svc.Rewrite(context.Background(), "u", RewriteResume, "  raw resume  ")
			require.NoError(t, err)
			assert.True(t, out.Degraded)
			assert.Equal(t, "raw resume", out.Payload["rawText"])
			assert.Contains(t, out.Payload, "experience")
		})
	}

	_, err := NewService(failing(), nil).Rewrite(context.Background(), "u", RewriteResume, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFillLeavesUnknownPlaceholders(t *testing.T) {
	got := fill("a {{X}} b {{Y}}", map[string]string{"X": "1"})
	assert.Equal(t, "a 1 b {{Y}}", got)
	assert.False(t, strings.Contains(fill(reviewPrompt, map[string]string{"RESUME_TEXT": "r"}), "{{"))
}
