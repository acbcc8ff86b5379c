package assistant_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayKumar0077/Resumelit/internal/assistant"
	"github.com/AjayKumar0077/Resumelit/internal/llm"
	"github.com/AjayKumar0077/Resumelit/internal/resumes"
	"github.com/AjayKumar0077/Resumelit/internal/shared/server/middleware"
)

func newRouter(t *testing.T, gen llm.Generator) (*gin.Engine, *resumes.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := resumes.Open(context.Background(), resumes.Options{Medium: resumes.NewMemoryMedium()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth("dev", nil))
	assistant.NewHandler(assistant.NewService(gen, resumes.NewFinder(store))).RegisterRoutes(api)
	return r, store
}

func post(r *gin.Engine, path, guest string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if guest != "" {
		req.Header.Set("X-Guest-Id", guest)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func down() llm.Generator {
	return llm.GeneratorFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("503 from provider")
	})
}

func TestReviewEndpoint(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, string, string) (string, error) {
		return `{"strengths":["Concise"],"weaknesses":[],"suggestions":["Quantify impact"]}`, nil
	})
	r, _ := newRouter(t, gen)

	w := post(r, "/api/v1/assistant/review", "g1", map[string]string{"resumeText": "Jane Doe, engineer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out assistant.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, []string{"Concise"}, out.Strengths)
	assert.NotContains(t, w.Body.String(), "degraded")
}

func TestDegradedResultsAreLabeled(t *testing.T) {
	r, _ := newRouter(t, down())

	w := post(r, "/api/v1/assistant/job-match", "g1", map[string]string{
		"resumeText":     "Jane Doe",
		"jobDescription": "Go engineer",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var match assistant.JobMatch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &match))
	assert.True(t, match.Degraded)
	assert.Equal(t, 0, match.Score)

	w = post(r, "/api/v1/assistant/skills", "g1", map[string]any{"jobTitle": "Web Developer"})
	require.Equal(t, http.StatusOK, w.Code)
	var skills assistant.Skills
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &skills))
	assert.True(t, skills.Degraded)
	assert.Equal(t, "developer", skills.Category)

	w = post(r, "/api/v1/assistant/strength", "g1", map[string]string{"resumeText": "Jane Doe"})
	require.Equal(t, http.StatusOK, w.Code)
	var strength assistant.Strength
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &strength))
	assert.True(t, strength.Degraded)
}

func TestCoverLetterProviderFailure(t *testing.T) {
	r, _ := newRouter(t, down())

	w := post(r, "/api/v1/assistant/cover-letter", "g1", map[string]string{
		"resumeText": "Jane Doe",
		"company":    "Acme",
		"position":   "Engineer",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "external_service_error", errorCode(t, w))
}

func TestAssistantUsesOwnedRecordsOnly(t *testing.T) {
	var prompts []string
	gen := llm.GeneratorFunc(func(_ context.Context, prompt, _ string) (string, error) {
		prompts = append(prompts, prompt)
		return "Dear team", nil
	})
	r, store := newRouter(t, gen)

	rec, err := store.Create(context.Background(), resumes.CreateInput{
		OwnerID: "guest:owner",
		Title:   "Main",
		Method:  resumes.MethodUpload,
		Payload: resumes.Payload{"rawText": "Owner resume text"},
	})
	require.NoError(t, err)

	body := map[string]string{"recordId": rec.ID, "company": "Acme", "position": "Engineer"}

	w := post(r, "/api/v1/assistant/cover-letter", "intruder", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, prompts)

	w = post(r, "/api/v1/assistant/cover-letter", "owner", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"coverLetter":"Dear team"}`, w.Body.String())
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Owner resume text")
}

func TestIndustryEndpoint(t *testing.T) {
	r, _ := newRouter(t, down())

	w := post(r, "/api/v1/assistant/industry", "g1", map[string]string{
		"resumeText": "Financial analysis and risk assessment in SQL",
		"industry":   "finance",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var fit assistant.IndustryFit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fit))
	assert.Equal(t, "Finance", fit.Industry)
	assert.Equal(t, "$85,000 - $140,000", fit.SalaryRange)
	assert.Contains(t, fit.MatchedSkills, "Risk assessment")
	assert.Contains(t, fit.MatchedSkills, "SQL and database management")

	w = post(r, "/api/v1/assistant/industry", "g1", map[string]string{"resumeText": "x", "industry": "space"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", errorCode(t, w))
}

func TestAssistantValidation(t *testing.T) {
	r, _ := newRouter(t, down())

	w := post(r, "/api/v1/assistant/review", "g1", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/api/v1/assistant/review", "g1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", errorCode(t, w))

	w = post(r, "/api/v1/assistant/review", "", map[string]string{"resumeText": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCriteriaRoute(t *testing.T) {
	r, _ := newRouter(t, down())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assistant/criteria", nil)
	req.Header.Set("X-Guest-Id", "g1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Criteria []assistant.Criterion `json:"criteria"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Criteria, 10)
	assert.Equal(t, "content", body.Criteria[0].Key)
	assert.True(t, body.Criteria[0].Default)
	assert.False(t, body.Criteria[9].Default)

	w = post(r, "/api/v1/assistant/strength", "g1", map[string]any{"resumeText": "Jane Doe", "criteria": []string{"astrology"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
