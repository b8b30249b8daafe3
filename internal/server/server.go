// Package server exposes the score and user endpoints over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/player"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	maxBodyBytes            = 4 << 10
)

// Backend persists scores and users.
type Backend interface {
	SubmitScore(ctx context.Context, rec model.ScoreRecord) error
	UpsertUser(ctx context.Context, user model.User) error
	Leaderboard(ctx context.Context, limit, level int) ([]model.LeaderboardEntry, error)
}

// Server handles HTTP requests.
type Server struct {
	backend Backend
}

// New creates a Server backed by b.
func New(b Backend) *Server {
	return &Server{backend: b}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(middleware.Heartbeat("/health"))
	r.Use(cors)

	r.Route("/api", func(r chi.Router) {
		r.Post("/scores", s.handleSubmitScore)
		r.Post("/users", s.handleUpsertUser)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
	return r
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var rec model.ScoreRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateScore(&rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.backend.SubmitScore(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store score")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (s *Server) handleUpsertUser(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := decodeJSON(w, r, &user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name, err := player.Normalize(user.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user.Name = name
	if err := s.backend.UpsertUser(r.Context(), user); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultLeaderboardLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	level, err := intParam(r, "level", 0)
	if err != nil || level < 0 {
		writeError(w, http.StatusBadRequest, "level must be a non-negative integer")
		return
	}
	entries, err := s.backend.Leaderboard(r.Context(), limit, level)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func validateScore(rec *model.ScoreRecord) error {
	name, err := player.Normalize(rec.PlayerName)
	if err != nil {
		return err
	}
	rec.PlayerName = name
	if rec.ReactionTimeMs < 0 {
		return errors.New("reactionTimeMs must be >= 0")
	}
	if rec.Level < 1 {
		return errors.New("level must be >= 1")
	}
	if rec.Score < 0 {
		return errors.New("score must be >= 0")
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent.
		_ = err
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
