package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/repositories/sourcepost"
	"github.com/curatorbot/autopost-engine/pkg/config"
	"github.com/curatorbot/autopost-engine/pkg/logger"
)

// httpServer exposes the health check and the ingest boundary where
// external harvesters hand posts into the source pool.
type httpServer struct {
	srv        *http.Server
	log        logger.Logger
	sourceRepo sourcepost.Repository
}

func newHTTPServer(cfg *config.Config, log logger.Logger, sourceRepo sourcepost.Repository) *httpServer {
	s := &httpServer{
		log:        log.WithComponent("HTTP"),
		sourceRepo: sourceRepo,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/ingest", s.handleIngest)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *httpServer) start() {
	s.log.Info("Starting HTTP server", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Error("HTTP server failed", "error", err)
	}
}

func (s *httpServer) stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *httpServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.log.Error("Failed to write health response", "error", err)
	}
}

type ingestPost struct {
	OwnerID     int64     `json:"owner_id"`
	SourceID    int64     `json:"source_id"`
	SourceLink  string    `json:"source_link"`
	PostLink    string    `json:"post_link"`
	Text        string    `json:"text"`
	Topics      []string  `json:"topics"`
	Likes       int       `json:"likes"`
	Views       int       `json:"views"`
	Comments    int       `json:"comments"`
	MediaURL    string    `json:"media_url"`
	IsVideo     bool      `json:"is_video"`
	PublishedAt time.Time `json:"published_at"`
}

// handleIngest accepts a JSON array of harvested posts. Upserts never
// touch the used flag, so re-ingesting refreshed engagement numbers is
// safe.
func (s *httpServer) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload []ingestPost
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}
	if len(payload) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	posts := make([]domain.SourcePost, 0, len(payload))
	for _, p := range payload {
		if p.PostLink == "" || p.Text == "" || p.OwnerID == 0 {
			continue
		}
		posts = append(posts, domain.SourcePost{
			OwnerID:     p.OwnerID,
			SourceID:    p.SourceID,
			SourceLink:  p.SourceLink,
			PostLink:    p.PostLink,
			Text:        p.Text,
			Topics:      p.Topics,
			Likes:       p.Likes,
			Views:       p.Views,
			Comments:    p.Comments,
			MediaURL:    p.MediaURL,
			IsVideo:     p.IsVideo,
			PublishedAt: p.PublishedAt,
		})
	}

	if len(posts) == 0 {
		http.Error(w, "no valid posts in payload", http.StatusBadRequest)
		return
	}

	if err := s.sourceRepo.Save(r.Context(), posts); err != nil {
		s.log.Error("Failed to save ingested posts", "error", err)
		http.Error(w, "storage failure", http.StatusInternalServerError)
		return
	}

	s.log.Info("Ingested source posts", "received", len(payload), "accepted", len(posts))
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]int{"accepted": len(posts)})
}
