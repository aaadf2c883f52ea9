// Package httpapi serves a read-only JSON view of the arcade: health,
// the game catalogue and per-game leaderboards.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/gem-arcade/internal/registry"
	"github.com/vovakirdan/gem-arcade/internal/storage"
)

// Leaderboard limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ScoreSource provides leaderboards. *storage.Store implements it.
type ScoreSource interface {
	TopScores(gameID string, limit int) ([]storage.ScoreEntry, error)
}

// Server bundles the router and its dependencies.
type Server struct {
	r      *chi.Mux
	scores ScoreSource
	logger *log.Logger
}

// New constructs a Server, installs middleware, and registers routes.
// scores may be nil when no database is available; leaderboard requests
// then answer 503.
func New(scores ScoreSource, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{r: chi.NewRouter(), scores: scores, logger: logger.WithPrefix("http")}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(s.accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))

	s.r.Get("/healthz", s.handleHealth)
	s.r.Route("/api", func(r chi.Router) {
		r.Get("/games", s.handleGames)
		r.Get("/scores/{game}", s.handleScores)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Handler exposes the router (useful for tests).
func (s *Server) Handler() http.Handler { return s.r }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// accessLog logs one line per request with its status and duration.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
			"remote", r.RemoteAddr,
		)
	})
}

type gameJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	MembersOnly bool   `json:"members_only"`
}

type scoreJSON struct {
	Rank      int       `json:"rank"`
	Player    string    `json:"player"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

type scoresJSON struct {
	Game   string      `json:"game"`
	Scores []scoreJSON `json:"scores"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	games := registry.List()
	out := make([]gameJSON, 0, len(games))
	for _, g := range games {
		out = append(out, gameJSON{ID: g.ID, Title: g.Title, MembersOnly: g.MembersOnly})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game")
	if !registry.Exists(gameID) {
		writeError(w, http.StatusNotFound, "unknown_game")
		return
	}

	limit := DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = min(n, MaxLimit)
	}

	if s.scores == nil {
		writeError(w, http.StatusServiceUnavailable, "scores_unavailable")
		return
	}

	entries, err := s.scores.TopScores(gameID, limit)
	if err != nil {
		s.logger.Error("top scores", "game", gameID, "err", err)
		writeError(w, http.StatusServiceUnavailable, "scores_unavailable")
		return
	}

	out := scoresJSON{Game: gameID, Scores: make([]scoreJSON, 0, len(entries))}
	for i, e := range entries {
		out.Scores = append(out.Scores, scoreJSON{
			Rank:      i + 1,
			Player:    e.Player,
			Score:     e.Score,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
