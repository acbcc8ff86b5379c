package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AjayKumar0077/Resumelit/internal/assistant"
	"github.com/AjayKumar0077/Resumelit/internal/auth"
	"github.com/AjayKumar0077/Resumelit/internal/chatbuilder"
	"github.com/AjayKumar0077/Resumelit/internal/jobmatches"
	"github.com/AjayKumar0077/Resumelit/internal/resumes"
	"github.com/AjayKumar0077/Resumelit/internal/scores"
	"github.com/AjayKumar0077/Resumelit/internal/services/health"
	"github.com/AjayKumar0077/Resumelit/internal/shared/config"
	"github.com/AjayKumar0077/Resumelit/internal/shared/metrics"
	"github.com/AjayKumar0077/Resumelit/internal/shared/server/middleware"
	"github.com/AjayKumar0077/Resumelit/internal/shared/server/respond"
	"github.com/AjayKumar0077/Resumelit/internal/uploads"
	"github.com/AjayKumar0077/Resumelit/internal/users"
)

// RouterDeps are the handlers the API serves. Nil handlers are skipped.
type RouterDeps struct {
	Config     config.Config
	Health     *health.Service
	Resumes    *resumes.Handler
	Assistant  *assistant.Handler
	Chat       *chatbuilder.Handler
	JobMatches *jobmatches.Handler
	Scores     *scores.Handler
	Uploads    *uploads.Handler
	Users      *users.Handler
	Auth       *auth.Service
	Verifier   middleware.TokenVerifier
	RateRules  map[string]middleware.RateLimitRule
}

// DefaultRateRules limits AI-backed routes harder than record CRUD.
func DefaultRateRules() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		middleware.RateGroupDefault: {Rate: 10, Burst: 40},
		middleware.RateGroupAI:      {Rate: 0.5, Burst: 5},
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/metrics", metrics.Handler())

	public := r.Group("/api/v1")
	public.GET("/health", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	rules := deps.RateRules
	if rules == nil {
		rules = DefaultRateRules()
	}
	api := r.Group("/api/v1")
	api.Use(
		middleware.Auth(deps.Config.Env, deps.Verifier),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rules,
			GroupFor: middleware.AIRouteGroup,
		}),
	)

	if deps.Auth != nil {
		deps.Auth.RegisterRoutes(api)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(api)
	}
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(api)
	}
	if deps.Assistant != nil {
		deps.Assistant.RegisterRoutes(api)
	}
	if deps.Chat != nil {
		deps.Chat.RegisterRoutes(api)
	}
	if deps.JobMatches != nil {
		deps.JobMatches.RegisterRoutes(api)
	}
	if deps.Scores != nil {
		deps.Scores.RegisterRoutes(api)
	}
	if deps.Uploads != nil {
		deps.Uploads.RegisterRoutes(api)
	}
	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
