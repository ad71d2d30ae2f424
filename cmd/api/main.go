package main

import (
	"os"

	"github.com/yigit/studentregistry/internal/pkg/logger"
	"github.com/yigit/studentregistry/internal/server"
)

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Details are logged by the bootstrap step that failed
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until a shutdown signal arrives
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
