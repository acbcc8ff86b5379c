package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AjayKumar0077/Resumelit/internal/shared/server/respond"
	"github.com/AjayKumar0077/Resumelit/internal/users"
)

type devLoginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

// devLogin signs in any email without a provider round trip, for local runs.
func (s *Service) devLogin(c *gin.Context) {
	var req devLoginRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 16<<10)
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email is required", nil)
		return
	}

	token, user, err := issue(c.Request.Context(), s.Accounts, s.Signer, users.Identity{
		Provider: "dev",
		Subject:  email,
		Email:    email,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, users.ErrValidation) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to sign in", nil)
		return
	}
	respond.OK(c, loginResponse{Token: token, User: user})
}
