package jobmatches

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxDescriptionRunes bounds the stored job description.
const maxDescriptionRunes = 20000

type Service struct {
	Repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// Save keeps a match result. Title and company are required, as they are the
// saved job's label.
func (s *Service) Save(ctx context.Context, in SaveInput) (SavedMatch, error) {
	m := SavedMatch{
		ID:             uuid.NewString(),
		OwnerID:        strings.TrimSpace(in.OwnerID),
		ResumeID:       strings.TrimSpace(in.ResumeID),
		JobTitle:       strings.TrimSpace(in.JobTitle),
		Company:        strings.TrimSpace(in.Company),
		JobDescription: strings.TrimSpace(in.JobDescription),
		Score:          in.Score,
		Matches:        cleanList(in.Matches),
		MissingSkills:  cleanList(in.MissingSkills),
		Suggestions:    cleanList(in.Suggestions),
		CreatedAt:      s.now().UTC(),
	}
	switch {
	case m.OwnerID == "":
		return SavedMatch{}, fmt.Errorf("%w: owner is required", ErrValidation)
	case m.JobTitle == "" || m.Company == "":
		return SavedMatch{}, fmt.Errorf("%w: jobTitle and company are required", ErrValidation)
	case m.Score < 0 || m.Score > 100:
		return SavedMatch{}, fmt.Errorf("%w: score %d out of range", ErrValidation, m.Score)
	}
	if r := []rune(m.JobDescription); len(r) > maxDescriptionRunes {
		m.JobDescription = string(r[:maxDescriptionRunes])
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return SavedMatch{}, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Summary, error) {
	matches, err := s.Repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Summary())
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (SavedMatch, error) {
	return s.Repo.Get(ctx, ownerID, strings.TrimSpace(id))
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.Repo.Delete(ctx, ownerID, strings.TrimSpace(id))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
