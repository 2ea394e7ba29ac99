// Package httpapi exposes the snapshot store over plain HTTP. Each sync code
// maps to one JSON array of items: GET fetches the current snapshot, POST
// replaces it.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/pantrysync/restock/internal/common"
	"github.com/pantrysync/restock/internal/logging"
	"github.com/pantrysync/restock/internal/server/snapshots"
)

type Server struct {
	address  string
	repo     snapshots.Repository
	maxBytes int64
	logger   logging.Logger
}

func NewServer(a string, repo snapshots.Repository, maxBytes int64, l logging.Logger) *Server {
	return &Server{
		address:  a,
		repo:     repo,
		maxBytes: maxBytes,
		logger:   l.With("module", "http_server"),
	}
}

// Handler builds the route table. Exposed separately so tests can drive it
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{code}", s.getSnapshot)
	mux.HandleFunc("POST /{code}", s.putSnapshot)
	return mux
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{Addr: s.address, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if !common.ValidSyncCode(code) {
		http.Error(w, "invalid sync code", http.StatusBadRequest)
		return
	}

	payload, err := s.repo.Get(r.Context(), code)
	if errors.Is(err, common.ErrorNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "snapshot read failed", "code", code, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func (s *Server) putSnapshot(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if !common.ValidSyncCode(code) {
		http.Error(w, "invalid sync code", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	// The payload is stored opaquely but must at least be a JSON array,
	// otherwise clients choke on the next pull.
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		http.Error(w, "payload must be a JSON array", http.StatusBadRequest)
		return
	}

	if err := s.repo.Set(r.Context(), code, body); err != nil {
		s.logger.Error(r.Context(), "snapshot write failed", "code", code, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
