package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethanbaker/snapnotes/internal/bootstrap"
)

// Start the API server
func main() {
	// Load global config (ENV_FILE overrides the default .env)
	settings, logger, err := bootstrap.LoadSettings()
	if err != nil {
		log.Fatal("[API-MAIN]: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start
	if err := bootstrap.Serve(ctx, settings, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
}
