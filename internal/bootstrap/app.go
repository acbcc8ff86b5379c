package bootstrap

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/AjayKumar0077/Resumelit/internal/assistant"
	"github.com/AjayKumar0077/Resumelit/internal/auth"
	"github.com/AjayKumar0077/Resumelit/internal/chatbuilder"
	"github.com/AjayKumar0077/Resumelit/internal/events"
	"github.com/AjayKumar0077/Resumelit/internal/jobmatches"
	"github.com/AjayKumar0077/Resumelit/internal/llm"
	"github.com/AjayKumar0077/Resumelit/internal/llm/gemini"
	"github.com/AjayKumar0077/Resumelit/internal/llm/openai"
	"github.com/AjayKumar0077/Resumelit/internal/resumes"
	"github.com/AjayKumar0077/Resumelit/internal/scores"
	"github.com/AjayKumar0077/Resumelit/internal/services/health"
	sharedauth "github.com/AjayKumar0077/Resumelit/internal/shared/auth"
	"github.com/AjayKumar0077/Resumelit/internal/shared/config"
	"github.com/AjayKumar0077/Resumelit/internal/shared/server"
	"github.com/AjayKumar0077/Resumelit/internal/shared/storage/db"
	"github.com/AjayKumar0077/Resumelit/internal/shared/storage/object"
	localstore "github.com/AjayKumar0077/Resumelit/internal/shared/storage/object/local"
	s3store "github.com/AjayKumar0077/Resumelit/internal/shared/storage/object/s3"
	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
	"github.com/AjayKumar0077/Resumelit/internal/uploads"
	"github.com/AjayKumar0077/Resumelit/internal/users"
)

// App holds the wired dependencies of the API process.
type App struct {
	Config config.Config
	DB     *sql.DB
	Events events.Publisher

	Records   *resumes.Store
	Objects   object.Store
	Generator llm.Generator

	Assistant  *assistant.Service
	Chat       *chatbuilder.Service
	JobMatches *jobmatches.Service
	Scores     *scores.Service
	Uploads    *uploads.Service
	Users      *users.Service
	Health     *health.Service

	Router *gin.Engine
}

// New builds the application for cfg. Call Close when done.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	telemetry.SetLevel(cfg.LogLevel)

	app := &App{Config: cfg, Health: health.NewService()}
	if err := app.build(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) build(ctx context.Context) error {
	cfg := app.Config

	if cfg.RecordMedium == config.MediumPostgres {
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return err
		}
		app.DB = sqlDB
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return err
		}
		app.Health.Register("database", sqlDB.PingContext)
	}

	medium, err := buildMedium(cfg, app.DB)
	if err != nil {
		return err
	}

	app.Events, err = buildEvents(cfg)
	if err != nil {
		_ = medium.Close()
		return err
	}

	app.Records, err = resumes.Open(ctx, resumes.Options{
		Medium: medium,
		Events: app.Events,
	})
	if err != nil {
		_ = medium.Close()
		return err
	}
	app.Health.Register("records", func(ctx context.Context) error {
		_, err := app.Records.List(ctx, "health:check")
		return err
	})

	if app.Objects, err = NewObjectStore(ctx, cfg); err != nil {
		return err
	}
	if app.Generator, err = buildGenerator(ctx, cfg); err != nil {
		return err
	}

	var (
		userRepo  users.Repo      = users.NewMemoryRepo()
		matchRepo jobmatches.Repo = jobmatches.NewMemoryRepo()
		scoreRepo scores.Repo     = scores.NewMemoryRepo()
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		matchRepo = &jobmatches.PGRepo{DB: app.DB}
		scoreRepo = &scores.PGRepo{DB: app.DB}
	}
	app.Users = users.NewService(userRepo)
	app.JobMatches = jobmatches.NewService(matchRepo)
	app.Scores = scores.NewService(scoreRepo)

	signer, err := sharedauth.NewSigner(cfg.JWTSecret, cfg.Env, sharedauth.DefaultTTL)
	if err != nil {
		return err
	}

	app.Assistant = assistant.NewService(app.Generator, resumes.NewFinder(app.Records))
	app.Assistant.Scores = app.Scores
	app.Assistant.Matches = app.JobMatches
	app.Chat = chatbuilder.NewService(app.Records, app.Assistant)
	app.Uploads = uploads.NewService(app.Objects, app.Records, app.Assistant)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:     cfg,
		Health:     app.Health,
		Resumes:    resumes.NewHandler(app.Records),
		Assistant:  assistant.NewHandler(app.Assistant),
		Chat:       chatbuilder.NewHandler(app.Chat),
		JobMatches: jobmatches.NewHandler(app.JobMatches),
		Scores:     scores.NewHandler(app.Scores),
		Uploads:    uploads.NewHandler(app.Uploads),
		Users:      users.NewHandler(app.Users),
		Auth: &auth.Service{
			Google: auth.NewGoogleService(
				cfg.GoogleClientID,
				cfg.GoogleClientSecret,
				cfg.GoogleRedirectURL,
				cfg.UIRedirectURL,
				app.Users,
				signer,
			),
			Accounts: app.Users,
			Signer:   signer,
			DevLogin: !cfg.IsProduction(),
		},
		Verifier: signer,
	})

	telemetry.Info("app ready", map[string]any{
		"env":          cfg.Env,
		"record_store": cfg.RecordMedium,
		"object_store": cfg.ObjectStoreType,
		"llm_provider": cfg.LLMProvider,
		"events":       cfg.EventsAMQPURL != "",
	})
	return nil
}

// Close releases the store, the broker connection and the database pool.
func (app *App) Close() error {
	var errs []error
	if app.Records != nil {
		if err := app.Records.Close(); err != nil && !errors.Is(err, resumes.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if app.Events != nil {
		errs = append(errs, app.Events.Close())
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}
	return errors.Join(errs...)
}

func buildMedium(cfg config.Config, sqlDB *sql.DB) (resumes.Medium, error) {
	switch cfg.RecordMedium {
	case config.MediumMemory:
		return resumes.NewMemoryMedium(), nil
	case config.MediumPostgres:
		if sqlDB == nil {
			return nil, errors.New("postgres medium needs a database")
		}
		return &resumes.PGMedium{DB: sqlDB}, nil
	default:
		return resumes.NewFileMedium(cfg.RecordFile)
	}
}

// buildEvents dials the broker when configured. Outside production an
// unreachable broker degrades to dropping events.
func buildEvents(cfg config.Config) (events.Publisher, error) {
	if cfg.EventsAMQPURL == "" {
		return events.Nop{}, nil
	}
	pub, err := events.NewAMQPPublisher(cfg.EventsAMQPURL, cfg.EventsQueue)
	if err != nil {
		if cfg.IsProduction() {
			return nil, err
		}
		telemetry.Warn("event broker unavailable; record events disabled", map[string]any{"error": err.Error()})
		return events.Nop{}, nil
	}
	return pub, nil
}

// NewObjectStore returns the S3 or local store selected by cfg.
func NewObjectStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir)
	}
}

func buildGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case config.ProviderGemini:
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderGenerator{}, nil
	}
}
