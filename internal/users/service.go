package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Identity is what a sign-in provider tells us about the caller.
type Identity struct {
	Provider   string
	Subject    string
	Email      string
	Name       string
	PictureURL string
}

// ID returns the owner id used for records: "<provider>:<subject>".
func (i Identity) ID() string {
	return strings.ToLower(strings.TrimSpace(i.Provider)) + ":" + strings.TrimSpace(i.Subject)
}

// SignIn records a login and returns the stored user.
func (s *Service) SignIn(ctx context.Context, id Identity) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	provider := strings.ToLower(strings.TrimSpace(id.Provider))
	if provider == "" || provider == "guest" || strings.TrimSpace(id.Subject) == "" {
		return User{}, fmt.Errorf("%w: provider and subject are required", ErrValidation)
	}
	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" {
		return User{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = email
	}

	user, err := s.Repo.Upsert(ctx, User{
		ID:         id.ID(),
		Provider:   provider,
		Email:      email,
		Name:       name,
		PictureURL: strings.TrimSpace(id.PictureURL),
	})
	if err != nil {
		return User{}, err
	}
	telemetry.Info("user signed in", map[string]any{"user_id": user.ID, "provider": provider})
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.Repo.GetByID(ctx, userID)
}
