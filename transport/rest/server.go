package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Routes builds the HTTP API.
func Routes(logger *slog.Logger, games gameGetter) http.Handler {
	gameHandler := NewGameHandler(logger, games)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", ping)
	mux.HandleFunc("GET /game/{id}", gameHandler.GetGame)

	return mux
}

// Start - starts HTTP server and stops it when ctx is done.
func Start(ctx context.Context, port string, logger *slog.Logger, games gameGetter) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      Routes(logger, games),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
