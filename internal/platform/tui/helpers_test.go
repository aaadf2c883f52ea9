package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gem-arcade/internal/config"
	"github.com/vovakirdan/gem-arcade/internal/core"
	"github.com/vovakirdan/gem-arcade/internal/membership"
	"github.com/vovakirdan/gem-arcade/internal/registry"
	"github.com/vovakirdan/gem-arcade/internal/storage"
)

// stubGame is a scriptable game: the test flips over/paused/score directly.
type stubGame struct {
	id      string
	score   int
	over    bool
	paused  bool
	resets  int
	resized [2]int
	preset  config.DifficultyPreset
	last    core.InputFrame
}

func (g *stubGame) ID() string                              { return g.id }
func (g *stubGame) Title() string                           { return "Stub " + g.id }
func (g *stubGame) Reset(core.RuntimeConfig)                { g.resets++ }
func (g *stubGame) Render(dst *core.Screen)                 { dst.Clear(); dst.DrawText(0, 0, g.id) }
func (g *stubGame) Resize(w, h int)                         { g.resized = [2]int{w, h} }
func (g *stubGame) SetDifficulty(p config.DifficultyPreset) { g.preset = p }

func (g *stubGame) Step(in core.InputFrame) core.StepResult {
	g.last = core.NewInputFrame()
	for a, on := range in.Actions {
		if on {
			g.last.Set(a)
		}
	}
	return core.StepResult{State: g.State()}
}

func (g *stubGame) State() core.GameState {
	return core.GameState{Score: g.score, GameOver: g.over, Paused: g.paused}
}

// plainGame has neither Resize nor SetDifficulty.
type plainGame struct {
	resets int
}

func (g *plainGame) ID() string                           { return "free" }
func (g *plainGame) Title() string                        { return "Free Play" }
func (g *plainGame) Reset(core.RuntimeConfig)             { g.resets++ }
func (g *plainGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (g *plainGame) Render(dst *core.Screen)              { dst.Clear() }
func (g *plainGame) State() core.GameState                { return core.GameState{} }

var lastLocked *stubGame

func init() {
	registry.Register("free", func() registry.Game { return &plainGame{} })
	registry.Register("locked", func() registry.Game {
		lastLocked = &stubGame{id: "locked"}
		return lastLocked
	}, registry.MembersOnly())
}

type savedScore struct {
	game   string
	player string
	score  int
}

type fakeScores struct {
	saved []savedScore
	err   error
}

func (f *fakeScores) SaveScore(gameID, player string, score int) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, savedScore{gameID, player, score})
	return int64(len(f.saved)), nil
}

func (f *fakeScores) TopScores(gameID string, limit int) ([]storage.ScoreEntry, error) {
	var out []storage.ScoreEntry
	for i, s := range f.saved {
		if s.game == gameID && len(out) < limit {
			out = append(out, storage.ScoreEntry{ID: int64(i + 1), GameID: s.game, Player: s.player, Score: s.score})
		}
	}
	return out, nil
}

func (f *fakeScores) GetGameStats(gameID string) (*storage.GameStats, error) {
	return &storage.GameStats{GameID: gameID}, nil
}

type fakeMembers struct {
	accounts map[string]membership.Account
	requests int
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{accounts: map[string]membership.Account{}}
}

func (f *fakeMembers) Lookup(username string) (membership.Account, error) {
	if a, ok := f.accounts[username]; ok {
		return a, nil
	}
	return membership.Account{}, membership.ErrUnknownUser
}

func (f *fakeMembers) Login(username, password string) (membership.Account, error) {
	a, ok := f.accounts[username]
	if !ok || password != "secret" {
		return membership.Account{}, membership.ErrInvalidCredentials
	}
	return a, nil
}

func (f *fakeMembers) Register(username, password string) (membership.Account, error) {
	if _, ok := f.accounts[username]; ok {
		return membership.Account{}, membership.ErrUserExists
	}
	a := membership.Account{ID: int64(len(f.accounts) + 1), Username: username}
	f.accounts[username] = a
	return a, nil
}

func (f *fakeMembers) RequestMembership(username string) (*storage.PaymentRequest, error) {
	a, ok := f.accounts[username]
	if !ok {
		return nil, membership.ErrUnknownUser
	}
	if a.IsMember() {
		return nil, membership.ErrAlreadyMember
	}
	f.requests++
	return &storage.PaymentRequest{ID: int64(f.requests), UserID: a.ID, Username: username, Amount: 100}, nil
}

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1, Player: "alice"}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

var errDiskFull = errors.New("disk full")
