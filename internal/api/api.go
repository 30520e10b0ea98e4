package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethanbaker/api/pkg/api_key"
	api_utils "github.com/ethanbaker/api/pkg/utils"
	"github.com/ethanbaker/snapnotes/pkg/pipeline"
	"github.com/ethanbaker/snapnotes/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	health_module "github.com/ethanbaker/snapnotes/internal/api/modules/health"
	manual_module "github.com/ethanbaker/snapnotes/internal/api/modules/manual"
	session_module "github.com/ethanbaker/snapnotes/internal/api/modules/session"
)

// ShutdownTimeout bounds how long in-flight requests may take once the server is stopping
const ShutdownTimeout = 10 * time.Second

// Options configures the HTTP surface
type Options struct {
	Settings *utils.Settings
	Service  *pipeline.Service
	Logger   zerolog.Logger
}

// NewEngine builds the gin engine with every route registered
func NewEngine(opts Options) *gin.Engine {
	// Add app level settings/routes
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(opts.Logger))
	engine.NoRoute(api_utils.NoRouteHandler)

	// Add trusted proxies
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     opts.Settings.CORSAllowedOrigins,
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Staged frames are served as-is
	engine.Static(pipeline.DefaultUploadURLPrefix, opts.Settings.StorageDir)
	health_module.RegisterRoutes(engine)

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")
	health_module.RegisterRoutes(baseGroup)

	protected := baseGroup.Group("")
	if key := opts.Settings.APIKey; key != "" {
		protected.Use(api_key.APIKeyHeaderHandler(func(candidate string) bool {
			return candidate == key
		}))
	}

	// Adding custom modules
	session_module.RegisterRoutes(protected, opts.Service, opts.Logger)
	manual_module.RegisterRoutes(protected, opts.Service, opts.Logger)

	return engine
}

// Start serves the API until ctx is cancelled, then shuts down gracefully
func Start(ctx context.Context, opts Options) error {
	srv := &http.Server{
		Addr:              ":" + opts.Settings.APIPort,
		Handler:           NewEngine(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		opts.Logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		opts.Logger.Info().Msg("shutdown requested")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		if closeErr := srv.Close(); closeErr != nil {
			opts.Logger.Error().Err(closeErr).Msg("forced shutdown failed")
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	opts.Logger.Info().Msg("server stopped")
	return nil
}

// Helper middleware to log each request once it has been handled
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Debug()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	}
}
