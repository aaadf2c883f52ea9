package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	_ "github.com/vovakirdan/gem-arcade/internal/games/match3"
	"github.com/vovakirdan/gem-arcade/internal/storage"
)

type failingScores struct{}

func (failingScores) TopScores(string, int) ([]storage.ScoreEntry, error) {
	return nil, errors.New("disk on fire")
}

func newTestServer(t *testing.T, scores ScoreSource) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(scores, log.New(io.Discard)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	var body map[string]string
	if code := getJSON(t, srv.URL+"/healthz", &body); code != http.StatusOK {
		t.Errorf("status = %d", code)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestGames(t *testing.T) {
	srv := newTestServer(t, nil)

	var games []gameJSON
	if code := getJSON(t, srv.URL+"/api/games", &games); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var found bool
	for _, g := range games {
		if g.ID == "gems" {
			found = true
			if !g.MembersOnly {
				t.Error("gems should be listed as members only")
			}
		}
	}
	if !found {
		t.Errorf("gems missing from %v", games)
	}
}

func TestScores(t *testing.T) {
	store := openStore(t)
	store.SaveScore("gems", "ada", 120)
	store.SaveScore("gems", "bob", 300)
	store.SaveScore("gems", "cy", 90)
	srv := newTestServer(t, store)

	var body scoresJSON
	if code := getJSON(t, srv.URL+"/api/scores/gems?limit=2", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Game != "gems" || len(body.Scores) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Scores[0].Player != "bob" || body.Scores[0].Rank != 1 || body.Scores[1].Score != 120 {
		t.Errorf("scores = %+v", body.Scores)
	}
}

func TestScoresEmptyList(t *testing.T) {
	srv := newTestServer(t, openStore(t))

	var body scoresJSON
	if code := getJSON(t, srv.URL+"/api/scores/gems", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Scores == nil || len(body.Scores) != 0 {
		t.Errorf("want empty array, got %+v", body.Scores)
	}
}

func TestScoresErrors(t *testing.T) {
	tests := []struct {
		name   string
		scores ScoreSource
		path   string
		want   int
		code   string
	}{
		{"unknown game", failingScores{}, "/api/scores/tetris", http.StatusNotFound, "unknown_game"},
		{"bad limit", failingScores{}, "/api/scores/gems?limit=abc", http.StatusBadRequest, "bad_limit"},
		{"zero limit", failingScores{}, "/api/scores/gems?limit=0", http.StatusBadRequest, "bad_limit"},
		{"no store", nil, "/api/scores/gems", http.StatusServiceUnavailable, "scores_unavailable"},
		{"store error", failingScores{}, "/api/scores/gems", http.StatusServiceUnavailable, "scores_unavailable"},
		{"unknown route", nil, "/api/nope", http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.scores)
			var body map[string]string
			if code := getJSON(t, srv.URL+tt.path, &body); code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
			if body["error"] != tt.code {
				t.Errorf("error = %q, want %q", body["error"], tt.code)
			}
		})
	}
}

func TestHandlerWithRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	New(nil, log.New(io.Discard)).Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
