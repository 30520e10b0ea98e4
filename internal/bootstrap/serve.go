package bootstrap

import (
	"context"

	"github.com/ethanbaker/snapnotes/internal/api"
	"github.com/ethanbaker/snapnotes/internal/observability"
	"github.com/ethanbaker/snapnotes/pkg/utils"
	"github.com/rs/zerolog"
)

// Serve wires the service graph and serves the API until ctx is cancelled.
// Running pipelines are drained before it returns.
func Serve(ctx context.Context, settings *utils.Settings, logger zerolog.Logger) error {
	app, err := New(ctx, settings, logger, Options{})
	if err != nil {
		return err
	}

	serveErr := api.Start(ctx, api.Options{
		Settings: settings,
		Service:  app.Service,
		Logger:   observability.Component(logger, "api"),
	})

	logger.Info().Msg("waiting for running pipelines to finish")
	if err := app.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to release resources")
	}

	return serveErr
}
