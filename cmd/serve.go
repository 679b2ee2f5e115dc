package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jamm-labs/jamm/internal/repositories"
	"github.com/jamm-labs/jamm/internal/server"
	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/jamm-labs/jamm/internal/smart"
	"github.com/urfave/cli/v3"
)

// Serve runs the smart playlist HTTP API until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}

	var runs server.RunRecorder
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
	} else {
		defer db.Close()
		runs = repositories.NewRunRepository(db)
	}

	enricher := smart.NewEnricher(r.httpClient, r.config.Smart.ProbeWorkers, r.logger)
	handler := server.NewSmartHandler(r.catalog, enricher, runs, r.logger, r.config.Smart)

	router := server.NewBasicRouter()
	router.Use(server.RecoverMiddleware(r.logger), server.LoggingMiddleware(r.logger))
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("listening on %v", addr)
		r.writePlain("Serving smart playlist API on http://%s\n", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
