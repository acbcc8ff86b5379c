package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayKumar0077/Resumelit/internal/jobmatches"
	"github.com/AjayKumar0077/Resumelit/internal/resumes"
	"github.com/AjayKumar0077/Resumelit/internal/scores"
)

const fullStrengthReply = `{"overallScore": 74, "categoryScores": {"content": 70, "format": 80, "impact": 65, "relevance": 72, "keywords": 60, "ats": 90}, "strengths": ["Clear"], "weaknesses": [], "keywords": []}`

func TestSelectCriteria(t *testing.T) {
	got, err := selectCriteria([]string{"ATS", " grammar ", ""})
	require.NoError(t, err)
	keys := make([]string, 0, len(got))
	for _, c := range got {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"content", "format", "impact", "relevance", "keywords", "ats", "grammar"}, keys)

	_, err = selectCriteria([]string{"vibes"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Len(t, Criteria(), 10)
}

func TestStrengthScoresSelectedCriteria(t *testing.T) {
	gen := &scripted{replies: []string{fullStrengthReply}}
	svc := NewService(gen, nil)

	out, err := svc.Strength(context.Background(), "u", StrengthInput{
		Source:   Source{Text: sampleResume},
		Criteria: []string{"ats"},
	})
	require.NoError(t, err)
	assert.False(t, out.Degraded)
	assert.Equal(t, 90, out.CategoryScores["ats"])
	assert.Len(t, out.CategoryScores, 6)
	assert.Contains(t, gen.calls[0].prompt, "- ats: Evaluates compatibility with Applicant Tracking Systems")
	assert.Contains(t, gen.calls[0].prompt, `"ats": [0-100]`)
	assert.NotContains(t, gen.calls[0].prompt, "careerLevel")
}

func TestStrengthDegradesWhenSelectedCategoryMissing(t *testing.T) {
	svc := NewService(&scripted{replies: []string{fullStrengthReply}}, nil)

	out, err := svc.Strength(context.Background(), "u", StrengthInput{
		Source:   Source{Text: sampleResume},
		Criteria: []string{"careerLevel"},
	})
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Equal(t, 75, out.CategoryScores["careerLevel"])
	assert.Len(t, out.CategoryScores, 6)
}

func TestStrengthRecordsHistoryForStoredRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := seedRecord(t, store, "google:1")
	history := scores.NewService(scores.NewMemoryRepo())

	svc := NewService(&scripted{replies: []string{fullStrengthReply, fullStrengthReply}}, resumes.NewFinder(store))
	svc.Scores = history

	_, err := svc.Strength(ctx, "google:1", StrengthInput{Source: Source{RecordID: rec.ID}})
	require.NoError(t, err)
	_, err = svc.Strength(ctx, "google:1", StrengthInput{Source: Source{Text: sampleResume}})
	require.NoError(t, err)

	h, err := history.History(ctx, "google:1", rec.ID)
	require.NoError(t, err)
	require.Len(t, h.Entries, 1)
	assert.Equal(t, 74, h.Entries[0].OverallScore)
	assert.Equal(t, 80, h.Entries[0].CategoryScores["format"])

	svc.Gen = failing()
	_, err = svc.Strength(ctx, "google:1", StrengthInput{Source: Source{RecordID: rec.ID}})
	require.NoError(t, err)
	h, err = history.History(ctx, "google:1", rec.ID)
	require.NoError(t, err)
	assert.Len(t, h.Entries, 1)
}

func TestJobMatchSavesTitledMatches(t *testing.T) {
	ctx := context.Background()
	saved := jobmatches.NewService(jobmatches.NewMemoryRepo())
	reply := `{"score": 81, "matches": ["Go"], "missingSkills": ["Rust"], "suggestions": ["Mention Rust"]}`

	svc := NewService(&scripted{replies: []string{reply, reply}}, nil)
	svc.Matches = saved

	out, err := svc.JobMatch(ctx, "guest:g1", JobMatchInput{
		Source:         Source{Text: sampleResume},
		JobDescription: "Go developer",
		JobTitle:       "Backend Engineer",
		Company:        "Acme",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.SavedMatchID)

	m, err := saved.Get(ctx, "guest:g1", out.SavedMatchID)
	require.NoError(t, err)
	assert.Equal(t, 81, m.Score)
	assert.Equal(t, []string{"Rust"}, m.MissingSkills)
	assert.Equal(t, "Go developer", m.JobDescription)

	untitled, err := svc.JobMatch(ctx, "guest:g1", JobMatchInput{
		Source:         Source{Text: sampleResume},
		JobDescription: "Go developer",
	})
	require.NoError(t, err)
	assert.Empty(t, untitled.SavedMatchID)

	list, err := saved.List(ctx, "guest:g1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestJobMatchDoesNotSaveDegradedResults(t *testing.T) {
	saved := jobmatches.NewService(jobmatches.NewMemoryRepo())
	svc := NewService(failing(), nil)
	svc.Matches = saved

	out, err := svc.JobMatch(context.Background(), "guest:g1", JobMatchInput{
		Source:         Source{Text: sampleResume},
		JobDescription: "Go developer",
		JobTitle:       "SRE",
		Company:        "Acme",
	})
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Empty(t, out.SavedMatchID)

	list, err := saved.List(context.Background(), "guest:g1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
