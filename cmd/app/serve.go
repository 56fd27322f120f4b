package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httphandler "github.com/oziev02/ThreadDigest/internal/delivery/http"
	"github.com/oziev02/ThreadDigest/internal/usecase"
)

func newServeCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve stored threads over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, logger)
			if err != nil {
				return err
			}
			defer a.close()

			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	mux := httphandler.NewRouter(usecase.NewThreadUseCase(a.repo))

	var handler http.Handler = mux
	handler = httphandler.CORSMiddleware(handler)
	handler = httphandler.LoggingMiddleware(a.logger, handler)

	server := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", "error", err)
		return err
	}

	a.logger.Info("server stopped")
	return nil
}
