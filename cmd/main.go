package main

import (
	"context"
	"errors"
	"os"

	"github.com/jamm-labs/jamm/internal/services"
	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var catalog services.Catalog
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify, config.Smart.RateLimit); err == nil {
			if credentials := config.Credentials.Spotify.Token(); len(credentials) > 0 {
				if err := svc.Authenticate(context.Background(), credentials); err != nil {
					logger.Warnf("stored token rejected: %v", err)
				}
			}
			catalog = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Catalog:    catalog,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "jamm",
		Usage:    "Generate Spotify playlists from smart rules",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
