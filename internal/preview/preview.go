// Package preview serves the archive root and locally generated documents
// over HTTP, so documents produced in relative mode resolve in a browser.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// Serve runs the preview server until ctx is cancelled or a shutdown signal
// arrives. archiveRoot is mounted at /, generated output at /out.
func Serve(ctx context.Context, addr, archiveRoot, outDir string, logger *slog.Logger) error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if outDir != "" {
		r.Mount("/out", http.StripPrefix("/out", http.FileServer(http.Dir(outDir))))
	}
	r.Mount("/", http.FileServer(http.Dir(archiveRoot)))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	logger.Info("preview server starting",
		slog.String("address", addr),
		slog.String("archive_root", archiveRoot),
		slog.String("out_dir", outDir))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
