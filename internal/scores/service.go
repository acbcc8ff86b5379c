package scores

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxHistory is how many of the newest entries a history returns.
const MaxHistory = 100

type Service struct {
	Repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// Record stores a strength analysis of resumeID. Scores must be within 0..100.
func (s *Service) Record(ctx context.Context, ownerID, resumeID string, overall int, categories map[string]int) (Entry, error) {
	ownerID = strings.TrimSpace(ownerID)
	resumeID = strings.TrimSpace(resumeID)
	if ownerID == "" || resumeID == "" {
		return Entry{}, fmt.Errorf("%w: owner and resume are required", ErrValidation)
	}
	if !inRange(overall) {
		return Entry{}, fmt.Errorf("%w: overall score %d out of range", ErrValidation, overall)
	}
	for k, v := range categories {
		if !inRange(v) {
			return Entry{}, fmt.Errorf("%w: %s score %d out of range", ErrValidation, k, v)
		}
	}
	e := Entry{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		ResumeID:       resumeID,
		OverallScore:   overall,
		CategoryScores: copyScores(categories),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.Repo.Add(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// History returns the entries of resumeID with the change between the first
// and the latest one.
func (s *Service) History(ctx context.Context, ownerID, resumeID string) (History, error) {
	entries, err := s.Repo.ListByResume(ctx, ownerID, resumeID, MaxHistory)
	if err != nil {
		return History{}, err
	}
	h := History{ResumeID: resumeID, Entries: entries}
	if len(entries) == 0 {
		return h, nil
	}
	first, latest := entries[0], entries[len(entries)-1]
	h.CurrentScore = latest.OverallScore
	if len(entries) < 2 {
		return h, nil
	}
	if first.OverallScore > 0 {
		change := float64(latest.OverallScore-first.OverallScore) / float64(first.OverallScore) * 100
		h.ImprovementPercent = int(math.Floor(change + 0.5))
	}
	h.MostImproved = mostImproved(first.CategoryScores, latest.CategoryScores)
	return h, nil
}

// mostImproved compares the categories present in first. Ties go to the
// category that sorts first; no gain yields nil.
func mostImproved(first, latest map[string]int) *Improvement {
	keys := make([]string, 0, len(first))
	for k := range first {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var best *Improvement
	for _, k := range keys {
		now, ok := latest[k]
		if !ok {
			continue
		}
		if gain := now - first[k]; gain > 0 && (best == nil || gain > best.Improvement) {
			best = &Improvement{Category: k, Improvement: gain}
		}
	}
	return best
}

func inRange(score int) bool {
	return score >= 0 && score <= 100
}
