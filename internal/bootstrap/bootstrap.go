// Package bootstrap builds the SnapNotes service graph from settings.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethanbaker/snapnotes/internal/cache"
	"github.com/ethanbaker/snapnotes/internal/observability"
	"github.com/ethanbaker/snapnotes/internal/ocr/tesseract"
	"github.com/ethanbaker/snapnotes/internal/retention"
	sessionstore "github.com/ethanbaker/snapnotes/internal/stores/session"
	"github.com/ethanbaker/snapnotes/internal/stores/staging"
	"github.com/ethanbaker/snapnotes/pkg/ai"
	"github.com/ethanbaker/snapnotes/pkg/document"
	"github.com/ethanbaker/snapnotes/pkg/ocr"
	"github.com/ethanbaker/snapnotes/pkg/pipeline"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/ethanbaker/snapnotes/pkg/utils"
	"github.com/rs/zerolog"
)

// Options overrides parts of the graph. Zero values use the configured implementations.
type Options struct {
	EngineFactory ocr.EngineFactory
	Completer     ai.ChatCompleter
}

// App is the wired service graph
type App struct {
	Settings     *utils.Settings
	Logger       zerolog.Logger
	Store        session.Store
	Staging      *staging.Store
	OCR          *ocr.Extractor
	Documents    *document.Extractor
	Generator    *ai.Generator
	Orchestrator *pipeline.Orchestrator
	Service      *pipeline.Service
	Retention    *retention.Manager

	closers []func() error
}

// LoadSettings reads the env files (ENV_FILE or .env) and builds the settings and root logger
func LoadSettings() (*utils.Settings, zerolog.Logger, error) {
	cfg := utils.NewConfigFromEnv(utils.EnvFiles()...)

	settings, err := utils.LoadSettings(cfg)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load settings: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       settings.LogLevel,
		Format:      settings.LogFormat,
		ServiceName: "snapnotes",
	})

	return settings, logger, nil
}

// New wires every component. On error, everything built so far is closed.
func New(ctx context.Context, settings *utils.Settings, logger zerolog.Logger, opts Options) (*App, error) {
	app := &App{Settings: settings, Logger: logger}

	if err := app.build(ctx, opts); err != nil {
		_ = app.Close()
		return nil, err
	}

	logger.Info().
		Str("database", settings.DatabaseDriver).
		Str("cache", settings.CacheDriver).
		Bool("ai_enabled", app.Generator.Enabled()).
		Bool("pdf_text_extraction", settings.PDFTextExtraction).
		Str("storage_dir", settings.StorageDir).
		Msg("service graph ready")

	return app, nil
}

// Helper to build the components in dependency order
func (a *App) build(ctx context.Context, opts Options) error {
	s := a.Settings

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	a.Store = store

	a.Staging, err = staging.NewStore(s.StorageDir, observability.Component(a.Logger, "staging"))
	if err != nil {
		return fmt.Errorf("failed to create staging area: %w", err)
	}

	factory := opts.EngineFactory
	if factory == nil {
		factory = func() (ocr.Engine, error) {
			return tesseract.New(s.OCRLanguage)
		}
	}
	a.OCR = ocr.NewExtractor(factory, observability.Component(a.Logger, "ocr"))
	a.closers = append(a.closers, a.OCR.Close)

	a.Documents = NewDocumentExtractor(s, observability.Component(a.Logger, "document"))

	a.Generator, err = NewGenerator(s, observability.Component(a.Logger, "ai"), opts.Completer)
	if err != nil {
		return err
	}

	a.Orchestrator, err = pipeline.NewOrchestrator(pipeline.Options{
		Store:     a.Store,
		Staging:   a.Staging,
		OCR:       a.OCR,
		Generator: a.Generator,
		Logger:    observability.Component(a.Logger, "pipeline"),
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	a.Service, err = pipeline.NewService(pipeline.ServiceOptions{
		Store:      a.Store,
		Frames:     a.Staging,
		Documents:  a.Documents,
		Dispatcher: a.Orchestrator,
		Logger:     observability.Component(a.Logger, "service"),
	})
	if err != nil {
		return fmt.Errorf("failed to create session service: %w", err)
	}

	a.Retention, err = retention.NewManager(retention.ManagerOptions{
		Sweeper:   a.Staging,
		Retention: s.StagingRetention,
		Schedule:  s.StagingSweepCron,
		Logger:    observability.Component(a.Logger, "retention"),
	})
	if err != nil {
		return fmt.Errorf("failed to create retention manager: %w", err)
	}

	return nil
}

// Helper to open the configured store, wrapped with the result cache
func (a *App) openStore(ctx context.Context) (session.Store, error) {
	s := a.Settings

	var store session.Store
	switch s.DatabaseDriver {
	case utils.DatabaseMySQL:
		sqlStore, err := sessionstore.NewMySQLStore(s.MySQL.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mysql store: %w", err)
		}
		a.closers = append(a.closers, sqlStore.Close)
		store = sqlStore
	case utils.DatabaseSQLite:
		sqlStore, err := sessionstore.NewSQLiteStore(s.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite store: %w", err)
		}
		a.closers = append(a.closers, sqlStore.Close)
		store = sqlStore
	default:
		store = sessionstore.NewInMemoryStore()
	}

	var client cache.Client
	switch s.CacheDriver {
	case utils.CacheRedis:
		redisClient, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		client = redisClient
	case utils.CacheMemory:
		client = cache.NewMemoryClient(0)
	default:
		return store, nil
	}
	a.closers = append(a.closers, client.Close)

	return sessionstore.NewCachedStore(store, client, s.ResultCacheTTL, observability.Component(a.Logger, "cache")), nil
}

// NewDocumentExtractor builds the document extractor; PDF text extraction is opt-in
func NewDocumentExtractor(s *utils.Settings, logger zerolog.Logger) *document.Extractor {
	opts := document.Options{Logger: logger}
	if s.PDFTextExtraction {
		opts.PDF = document.FitzPDFExtractor{}
	}
	return document.NewExtractor(opts)
}

// NewGenerator builds the summary and quiz generator. A nil completer is replaced by the
// OpenAI client when a credential is configured; otherwise the generator runs in degraded mode.
func NewGenerator(s *utils.Settings, logger zerolog.Logger, completer ai.ChatCompleter) (*ai.Generator, error) {
	prompts := ai.DefaultPrompts()
	if s.PromptsPath != "" {
		loaded, err := ai.LoadPrompts(s.PromptsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load prompts: %w", err)
		}
		prompts = loaded
	}

	if completer == nil && s.AIEnabled() {
		openaiCompleter, err := ai.NewOpenAICompleter(ai.OpenAIOptions{
			APIKey:     s.OpenAIAPIKey,
			BaseURL:    s.OpenAIBaseURL,
			MaxRetries: s.AIMaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		completer = openaiCompleter
	}

	temperature := s.Temperature
	return ai.NewGenerator(ai.Options{
		Completer:    completer,
		SummaryModel: s.SummaryModel,
		QuizModel:    s.QuizModel,
		Temperature:  &temperature,
		Prompts:      prompts,
		Logger:       logger,
	}), nil
}

// Close stops the sweeper, drains running pipelines and releases resources in reverse order
func (a *App) Close() error {
	if a.Retention != nil {
		a.Retention.Stop()
	}
	if a.Orchestrator != nil {
		a.Orchestrator.Wait()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}
