package assistant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/AjayKumar0077/Resumelit/internal/jobmatches"
	"github.com/AjayKumar0077/Resumelit/internal/llm"
	"github.com/AjayKumar0077/Resumelit/internal/resumes"
	"github.com/AjayKumar0077/Resumelit/internal/scores"
	"github.com/AjayKumar0077/Resumelit/internal/shared/metrics"
	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
)

const maxResumeRunes = 30000

const (
	reviewFailed   = "Failed to analyze resume. Please try again."
	jobMatchFailed = "Failed to analyze match. Please try again."
)

// ScoreRecorder keeps strength scores of stored records for the history view.
type ScoreRecorder interface {
	Record(ctx context.Context, ownerID, resumeID string, overall int, categories map[string]int) (scores.Entry, error)
}

// MatchSaver keeps job match results the caller labeled with a title and company.
type MatchSaver interface {
	Save(ctx context.Context, in jobmatches.SaveInput) (jobmatches.SavedMatch, error)
}

// Service runs the single-shot assistant features. Scores and Matches are
// optional.
type Service struct {
	Gen     llm.Generator
	Finder  *resumes.Finder
	Scores  ScoreRecorder
	Matches MatchSaver
}

// NewService constructs a Service. A nil generator is replaced by the placeholder.
func NewService(gen llm.Generator, finder *resumes.Finder) *Service {
	if gen == nil {
		gen = llm.PlaceholderGenerator{}
	}
	return &Service{Gen: gen, Finder: finder}
}

// CoverLetter writes a letter for company/position. It has no fallback:
// provider failures return an error wrapping llm.ErrExternalService.
func (s *Service) CoverLetter(ctx context.Context, ownerID string, in CoverLetterInput) (CoverLetter, error) {
	company := strings.TrimSpace(in.Company)
	position := strings.TrimSpace(in.Position)
	if company == "" || position == "" {
		return CoverLetter{}, fmt.Errorf("%w: company and position are required", ErrInvalidInput)
	}
	text, err := s.ResumeText(ctx, ownerID, in.Source)
	if err != nil {
		return CoverLetter{}, err
	}

	prompt := fill(coverLetterPrompt, map[string]string{
		"COMPANY":         company,
		"POSITION":        position,
		"RECIPIENT":       orDefault(in.Recipient, "Hiring Manager"),
		"TONE":            orDefault(in.Tone, "professional"),
		"RESUME_TEXT":     text,
		"JOB_DESCRIPTION": strings.TrimSpace(in.JobDescription),
		"ADDITIONAL_INFO": strings.TrimSpace(in.AdditionalInfo),
	})
	letter, err := s.Gen.Generate(ctx, prompt, coverLetterSystem)
	if err == nil && strings.TrimSpace(letter) == "" {
		err = fmt.Errorf("%w: empty cover letter", llm.ErrExternalService)
	}
	if err != nil {
		metrics.IncAICall("cover_letter", "error")
		telemetry.Error("assistant call failed", map[string]any{
			"feature":  "cover_letter",
			"owner_id": ownerID,
			"error":    err.Error(),
		})
		if !errors.Is(err, llm.ErrExternalService) {
			err = fmt.Errorf("%w: %v", llm.ErrExternalService, err)
		}
		return CoverLetter{}, err
	}
	metrics.IncAICall("cover_letter", "ok")
	return CoverLetter{Text: strings.TrimSpace(letter)}, nil
}

// Review returns strengths, weaknesses and suggestions. When the provider fails
// or replies with something other than the JSON shape, the result is a degraded
// placeholder asking the user to retry.
func (s *Service) Review(ctx context.Context, ownerID string, src Source) (Review, error) {
	text, err := s.ResumeText(ctx, ownerID, src)
	if err != nil {
		return Review{}, err
	}

	var out Review
	prompt := fill(reviewPrompt, map[string]string{"RESUME_TEXT": text})
	if err := llm.GenerateJSON(ctx, s.Gen, prompt, reviewSystem, &out); err != nil {
		s.degraded("review", ownerID, err)
		return Review{
			Strengths:   []string{},
			Weaknesses:  []string{},
			Suggestions: []string{reviewFailed},
			Degraded:    true,
		}, nil
	}
	metrics.IncAICall("review", "ok")
	return Review{
		Strengths:   cleanList(out.Strengths),
		Weaknesses:  cleanList(out.Weaknesses),
		Suggestions: cleanList(out.Suggestions),
	}, nil
}

type jobMatchReply struct {
	Score         float64  `json:"score"`
	Matches       []string `json:"matches"`
	MissingSkills []string `json:"missingSkills"`
	Suggestions   []string `json:"suggestions"`
}

// JobMatch scores the resume against a job description. The score is clamped
// to 0..100. A non-degraded result for a titled job is saved for later.
func (s *Service) JobMatch(ctx context.Context, ownerID string, in JobMatchInput) (JobMatch, error) {
	jd := strings.TrimSpace(in.JobDescription)
	if jd == "" {
		return JobMatch{}, fmt.Errorf("%w: jobDescription is required", ErrInvalidInput)
	}
	text, err := s.ResumeText(ctx, ownerID, in.Source)
	if err != nil {
		return JobMatch{}, err
	}

	var reply jobMatchReply
	prompt := fill(jobMatchPrompt, map[string]string{
		"RESUME_TEXT":     text,
		"JOB_DESCRIPTION": truncate(jd),
	})
	if err := llm.GenerateJSON(ctx, s.Gen, prompt, jobMatchSystem, &reply); err != nil {
		s.degraded("job_match", ownerID, err)
		return JobMatch{
			Score:         0,
			Matches:       []string{},
			MissingSkills: []string{},
			Suggestions:   []string{jobMatchFailed},
			Degraded:      true,
		}, nil
	}
	metrics.IncAICall("job_match", "ok")
	out := JobMatch{
		Score:         clampScore(reply.Score),
		Matches:       cleanList(reply.Matches),
		MissingSkills: cleanList(reply.MissingSkills),
		Suggestions:   cleanList(reply.Suggestions),
	}
	out.SavedMatchID = s.saveMatch(ctx, ownerID, in, out)
	return out, nil
}

func (s *Service) saveMatch(ctx context.Context, ownerID string, in JobMatchInput, m JobMatch) string {
	if s.Matches == nil || strings.TrimSpace(in.JobTitle) == "" || strings.TrimSpace(in.Company) == "" {
		return ""
	}
	saved, err := s.Matches.Save(ctx, jobmatches.SaveInput{
		OwnerID:        ownerID,
		ResumeID:       in.RecordID,
		JobTitle:       in.JobTitle,
		Company:        in.Company,
		JobDescription: in.JobDescription,
		Score:          m.Score,
		Matches:        m.Matches,
		MissingSkills:  m.MissingSkills,
		Suggestions:    m.Suggestions,
	})
	if err != nil {
		telemetry.Warn("saving job match failed", map[string]any{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
		return ""
	}
	return saved.ID
}

// Skills suggests skills for a job title, minus the ones already listed. When
// the provider fails or suggests nothing new, the static table for the title's
// category is used instead.
func (s *Service) Skills(ctx context.Context, ownerID string, in SkillsInput) (Skills, error) {
	title := strings.TrimSpace(in.JobTitle)
	if title == "" {
		return Skills{}, fmt.Errorf("%w: jobTitle is required", ErrInvalidInput)
	}
	current := cleanList(in.CurrentSkills)

	prompt := fill(skillsPrompt, map[string]string{
		"JOB_TITLE":      title,
		"CURRENT_SKILLS": strings.Join(current, ", "),
	})
	reply, err := s.Gen.Generate(ctx, prompt, skillsSystem)
	if err == nil {
		if got := withoutSkills(parseSkillList(reply), current); len(got) > 0 {
			metrics.IncAICall("skills", "ok")
			return Skills{Suggestions: got}, nil
		}
		err = fmt.Errorf("%w: no new skills in reply", llm.ErrExternalService)
	}

	s.degraded("skills", ownerID, err)
	category := skillCategory(title)
	return Skills{
		Suggestions: withoutSkills(skillTable[category], current),
		Category:    category,
		Degraded:    true,
	}, nil
}

type strengthReply struct {
	OverallScore   float64            `json:"overallScore"`
	CategoryScores map[string]float64 `json:"categoryScores"`
	Strengths      []string           `json:"strengths"`
	Weaknesses     []string           `json:"weaknesses"`
	Keywords       []string           `json:"keywords"`
}

// Strength rates the resume overall and per selected category. Provider
// failures, or a reply missing a selected category, yield the sample analysis
// labeled degraded. Scores of stored records are added to their history.
func (s *Service) Strength(ctx context.Context, ownerID string, in StrengthInput) (Strength, error) {
	selected, err := selectCriteria(in.Criteria)
	if err != nil {
		return Strength{}, err
	}
	text, err := s.ResumeText(ctx, ownerID, in.Source)
	if err != nil {
		return Strength{}, err
	}

	target := ""
	if t := strings.TrimSpace(in.JobTitle); t != "" {
		target = " for a " + t + " position"
	}
	list, shape := criteriaPromptVars(selected)
	var reply strengthReply
	prompt := fill(strengthPrompt, map[string]string{
		"RESUME_TEXT":    text,
		"TARGET_ROLE":    target,
		"CRITERIA_LIST":  list,
		"CATEGORY_SHAPE": shape,
	})
	err = llm.GenerateJSON(ctx, s.Gen, prompt, strengthSystem, &reply)
	categories := make(map[string]int, len(selected))
	if err == nil {
		for _, c := range selected {
			v, ok := reply.CategoryScores[c.Key]
			if !ok {
				err = fmt.Errorf("%w: reply has no %s score", llm.ErrExternalService, c.Key)
				break
			}
			categories[c.Key] = clampScore(v)
		}
	}
	if err != nil {
		s.degraded("strength", ownerID, err)
		return mockStrength(selected), nil
	}
	metrics.IncAICall("strength", "ok")
	out := Strength{
		OverallScore:   clampScore(reply.OverallScore),
		CategoryScores: categories,
		Strengths:      cleanList(reply.Strengths),
		Weaknesses:     cleanList(reply.Weaknesses),
		Keywords:       cleanList(reply.Keywords),
	}
	s.recordScore(ctx, ownerID, in.RecordID, out)
	return out, nil
}

func (s *Service) recordScore(ctx context.Context, ownerID, recordID string, out Strength) {
	recordID = strings.TrimSpace(recordID)
	if s.Scores == nil || recordID == "" {
		return
	}
	if _, err := s.Scores.Record(ctx, ownerID, recordID, out.OverallScore, out.CategoryScores); err != nil {
		telemetry.Warn("recording score failed", map[string]any{
			"owner_id":  ownerID,
			"record_id": recordID,
			"error":     err.Error(),
		})
	}
}

// IndustryFit looks up the static industry outlook and checks which of its
// in-demand skills the resume mentions. No provider call is made.
func (s *Service) IndustryFit(ctx context.Context, ownerID string, in IndustryInput) (IndustryFit, error) {
	key, profile, ok := lookupIndustry(in.Industry)
	if !ok {
		return IndustryFit{}, fmt.Errorf("%w: unknown industry %q (known: %s)", ErrInvalidInput, in.Industry, strings.Join(Industries(), ", "))
	}
	text, err := s.ResumeText(ctx, ownerID, in.Source)
	if err != nil {
		return IndustryFit{}, err
	}

	lower := strings.ToLower(text)
	fit := IndustryFit{
		Key:             key,
		IndustryProfile: profile,
		MatchedSkills:   []string{},
		MissingSkills:   []string{},
	}
	for _, skill := range profile.InDemandSkills {
		if mentionsSkill(lower, skill) {
			fit.MatchedSkills = append(fit.MatchedSkills, skill)
		} else {
			fit.MissingSkills = append(fit.MissingSkills, skill)
		}
	}
	if n := len(profile.InDemandSkills); n > 0 {
		fit.Coverage = len(fit.MatchedSkills) * 100 / n
	}
	return fit, nil
}

// Rewrite turns extracted resume or profile text into a structured payload.
// When the provider fails or returns malformed JSON the payload keeps the
// source under rawText and the result is degraded.
func (s *Service) Rewrite(ctx context.Context, ownerID string, kind RewriteKind, source string) (Rewrite, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return Rewrite{}, fmt.Errorf("%w: nothing to rewrite", ErrInvalidInput)
	}
	instruction := improveInstruction
	if kind == RewriteLinkedIn {
		instruction = linkedInInstruction
	}

	var doc resumes.Document
	prompt := fill(rewritePrompt, map[string]string{
		"INSTRUCTION": instruction,
		"SOURCE_TEXT": truncate(source),
	})
	err := llm.GenerateJSON(ctx, s.Gen, prompt, rewriteSystem, &doc)
	if err == nil && isBlank(doc) {
		err = fmt.Errorf("%w: rewrite has no content", llm.ErrExternalService)
	}
	if err == nil {
		payload, perr := withEmptyLists(doc).Payload()
		if perr == nil {
			metrics.IncAICall("rewrite", "ok")
			return Rewrite{Payload: payload}, nil
		}
		err = perr
	}

	s.degraded("rewrite", ownerID, err)
	payload, err := withEmptyLists(resumes.Document{}).Payload()
	if err != nil {
		return Rewrite{}, err
	}
	payload["rawText"] = source
	return Rewrite{Payload: payload, Degraded: true}, nil
}

// ResumeText resolves src to plain text. A record owned by someone else is
// reported as not found.
func (s *Service) ResumeText(ctx context.Context, ownerID string, src Source) (string, error) {
	if id := strings.TrimSpace(src.RecordID); id != "" {
		if s.Finder == nil {
			return "", fmt.Errorf("%w: record lookup is not available", ErrInvalidInput)
		}
		rec, err := s.Finder.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		if rec.OwnerID != ownerID {
			return "", fmt.Errorf("record %s: %w", id, resumes.ErrNotFound)
		}
		text := recordText(rec)
		if text == "" {
			return "", fmt.Errorf("%w: resume %s has no content", ErrInvalidInput, id)
		}
		return truncate(text), nil
	}

	text := strings.TrimSpace(src.Text)
	if text == "" {
		return "", fmt.Errorf("%w: recordId or resumeText is required", ErrInvalidInput)
	}
	return truncate(text), nil
}

func (s *Service) degraded(feature, ownerID string, err error) {
	metrics.IncAICall(feature, "degraded")
	fields := map[string]any{
		"feature":  feature,
		"owner_id": ownerID,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	telemetry.Warn("assistant fallback used", fields)
}

func recordText(rec resumes.Record) string {
	if doc, err := resumes.DocumentOf(rec); err == nil {
		if text := doc.PlainText(); text != "" {
			return text
		}
	}
	if raw, ok := rec.Payload["rawText"].(string); ok {
		return strings.TrimSpace(raw)
	}
	return ""
}

func isBlank(d resumes.Document) bool {
	return strings.TrimSpace(d.PersonalInfo.FullName) == "" &&
		strings.TrimSpace(d.Summary) == "" &&
		len(d.Experience) == 0 &&
		len(d.Education) == 0 &&
		len(d.Skills) == 0
}

func withEmptyLists(d resumes.Document) resumes.Document {
	if d.PersonalInfo.Links == nil {
		d.PersonalInfo.Links = []string{}
	}
	if d.Experience == nil {
		d.Experience = []resumes.Experience{}
	}
	for i := range d.Experience {
		if d.Experience[i].Highlights == nil {
			d.Experience[i].Highlights = []string{}
		}
	}
	if d.Education == nil {
		d.Education = []resumes.Education{}
	}
	if d.Skills == nil {
		d.Skills = []string{}
	}
	return d
}

// parseSkillList splits a comma or newline separated reply, dropping list markers.
func parseSkillList(reply string) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		f = strings.TrimLeft(f, "-*• ")
		f = strings.Trim(f, " .\"'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// withoutSkills drops entries of list found in exclude, case-insensitively, and duplicates.
func withoutSkills(list, exclude []string) []string {
	seen := make(map[string]struct{}, len(list)+len(exclude))
	for _, e := range exclude {
		seen[strings.ToLower(e)] = struct{}{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		k := strings.ToLower(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// mentionsSkill reports whether lowerText names skill or one of its
// slash- or parenthesis-separated alternatives as a whole word.
func mentionsSkill(lowerText, skill string) bool {
	for _, term := range skillTerms(skill) {
		if containsWord(lowerText, term) {
			return true
		}
	}
	return false
}

func skillTerms(skill string) []string {
	s := strings.NewReplacer("(", "/", ")", "/", ",", "/", " and ", "/", " for ", "/").Replace(strings.ToLower(skill))
	out := []string{}
	for _, part := range strings.Split(s, "/") {
		if part = strings.TrimSpace(part); len(part) >= 2 {
			out = append(out, part)
		}
	}
	return out
}

func containsWord(text, term string) bool {
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		if wordBoundary(text, start-1) && wordBoundary(text, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func wordBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return clampInt(int(math.Round(math.Max(-1, math.Min(v, 101)))))
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxResumeRunes {
		return s
	}
	return string(r[:maxResumeRunes])
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
