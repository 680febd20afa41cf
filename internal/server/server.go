// Package server exposes normalized OM content over HTTP for dashboard
// consumers. It trusts its caller: authentication lives in front of it.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"dealdesk/internal/observability"
	"dealdesk/internal/om"
	"dealdesk/internal/storage"
)

type Server struct {
	store storage.Store
	norm  *om.Normalizer
}

func New(store storage.Store) *Server {
	return &Server{store: store, norm: om.New(om.DefaultPolicy())}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/projects/{id}/om", s.handleOM)
	return mux
}

func (s *Server) Run(ctx context.Context, port string) error {
	srv := &http.Server{Addr: ":" + port, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	log.Printf("om server listening on :%s", port)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleOM fetches the stored OM row fresh on every request and
// normalizes it before serving. Derived sections are never persisted;
// they are recomputed from whatever flat and legacy fields are present
// at fetch time.
func (s *Server) handleOM(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")

	content, err := s.store.GetOMContent(r.Context(), projectID)
	if err != nil {
		observability.OMRequestsTotal.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to load om content"})
		return
	}
	if content == nil {
		observability.OMRequestsTotal.WithLabelValues("not_found").Inc()
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no om content for project"})
		return
	}

	normalized := s.norm.Normalize(om.Content(content))
	observability.OMRequestsTotal.WithLabelValues("ok").Inc()
	observability.OMNormalizedTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"projectId": projectID,
		"content":   normalized,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
