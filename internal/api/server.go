package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/callscore/internal/coordinator"
	"github.com/MikeSquared-Agency/callscore/internal/store"
)

// Analyzer runs the analysis pipeline for a lead.
type Analyzer interface {
	Analyze(ctx context.Context, leadID uuid.UUID) (*coordinator.Report, error)
}

// ScoreReader serves the score ledger.
type ScoreReader interface {
	LatestScore(ctx context.Context, leadID uuid.UUID) (*store.ScoreVersion, error)
	ScoreHistory(ctx context.Context, leadID uuid.UUID) ([]store.ScoreVersion, error)
}

type Server struct {
	router   *chi.Mux
	port     int
	analyzer Analyzer
	scores   ScoreReader
}

func NewServer(port int, analyzer Analyzer, scores ScoreReader) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		analyzer: analyzer,
		scores:   scores,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1/leads/{leadID}", func(r chi.Router) {
		r.Post("/analyze", s.analyze)
		r.Get("/score", s.latestScore)
		r.Get("/score/history", s.scoreHistory)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// analyze handles POST /api/v1/leads/{leadID}/analyze
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, fmt.Sprintf(`{"error":"lead %s not found"}`, leadID), http.StatusNotFound)
			return
		}
		slog.Error("analysis failed", "lead_id", leadID, "error", err)
		http.Error(w, fmt.Sprintf(`{"error":"analysis failed: %v"}`, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// latestScore handles GET /api/v1/leads/{leadID}/score
func (s *Server) latestScore(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	score, err := s.scores.LatestScore(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, fmt.Sprintf(`{"error":"no score for lead %s"}`, leadID), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf(`{"error":"load score: %v"}`, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(score)
}

// scoreHistory handles GET /api/v1/leads/{leadID}/score/history
func (s *Server) scoreHistory(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	history, err := s.scores.ScoreHistory(r.Context(), leadID)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"load history: %v"}`, err), http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []store.ScoreVersion{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"lead_id":  leadID,
		"versions": history,
		"count":    len(history),
	})
}

func parseLeadID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "leadID")
	leadID, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid lead id %q"}`, raw), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return leadID, true
}
