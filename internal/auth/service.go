package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	sharedauth "github.com/AjayKumar0077/Resumelit/internal/shared/auth"
	"github.com/AjayKumar0077/Resumelit/internal/users"
)

// TokenSigner issues session tokens.
type TokenSigner interface {
	Sign(claims sharedauth.Claims) (string, error)
}

// Accounts records sign-ins.
type Accounts interface {
	SignIn(ctx context.Context, id users.Identity) (users.User, error)
}

var (
	_ TokenSigner = (*sharedauth.Signer)(nil)
	_ Accounts    = (*users.Service)(nil)
)

// Service groups the sign-in routes.
type Service struct {
	Google   *GoogleService
	Accounts Accounts
	Signer   TokenSigner
	// DevLogin enables POST /auth/dev-login; never set in production.
	DevLogin bool
}

// RegisterRoutes attaches auth routes under /auth.
func (s *Service) RegisterRoutes(rg *gin.RouterGroup) {
	if s.Google != nil {
		rg.GET("/auth/google/start", s.Google.start)
		rg.GET("/auth/google/callback", s.Google.callback)
	}
	if s.DevLogin {
		rg.POST("/auth/dev-login", s.devLogin)
	}
}

// issue records the sign-in and signs a token for the stored user.
func issue(ctx context.Context, accounts Accounts, signer TokenSigner, id users.Identity) (string, users.User, error) {
	user, err := accounts.SignIn(ctx, id)
	if err != nil {
		return "", users.User{}, err
	}
	token, err := signer.Sign(sharedauth.Claims{
		Sub:      user.ID,
		Provider: user.Provider,
		Email:    user.Email,
		Name:     user.Name,
		Picture:  user.PictureURL,
	})
	if err != nil {
		return "", users.User{}, err
	}
	return token, user, nil
}
