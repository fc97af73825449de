package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"alert-processor/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Server exposes liveness for the standalone poller.
type Server struct {
	port string
	mux  *http.ServeMux
}

func NewServer(port string) *Server {
	s := &Server{
		port: port,
		mux:  http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.healthCheck)
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf(ctx, "Server shutdown error: %v", err)
		}
	}()

	logger.Infof(ctx, "Server starting on port %s", s.port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
