package match3

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/gem-arcade/internal/config"
	"github.com/vovakirdan/gem-arcade/internal/core"
	"github.com/vovakirdan/gem-arcade/internal/games/match3/board"
	"github.com/vovakirdan/gem-arcade/internal/registry"
)

// useConfig points the game at a temporary config file for one test.
func useConfig(t *testing.T, moves, stepDelayMS int) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gems.yaml")
	yaml := fmt.Sprintf(`board:
  size: 8
  palette: 6
moves: %d
sanitize:
  max_attempts: 10
animation:
  step_delay_ms: %d
membership:
  price: 100
`, moves, stepDelayMS)
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	SetConfigPath(path)
	SetDifficultyPreset("")
	t.Cleanup(func() {
		SetConfigPath("")
		SetDifficultyPreset("")
	})
}

func newTestGame(t *testing.T, moves, stepDelayMS int) *Game {
	t.Helper()
	useConfig(t, moves, stepDelayMS)
	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 42})
	return g
}

// loadFixture replaces the live board with the row-three fixture.
func loadFixture(g *Game) {
	g.session.grid = board.MustParseGrid(rowThreeBoard...)
	g.session.rng = &scripted{vals: rowThreeRefill}
}

func press(g *Game, actions ...core.Action) core.StepResult {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return g.Step(in)
}

func idle(g *Game, ticks int) {
	for range ticks {
		press(g)
	}
}

// swapRowThree moves the cursor from the centre to (3,2) and swaps right.
func swapRowThree(g *Game) {
	press(g, core.ActionUp)
	press(g, core.ActionLeft)
	press(g, core.ActionLeft)
	press(g, core.ActionConfirm)
	press(g, core.ActionRight)
	press(g, core.ActionConfirm)
}

func TestRegisteredMembersOnly(t *testing.T) {
	info, ok := registry.Info(GameID)
	if !ok {
		t.Fatal("gems not registered")
	}
	if !info.MembersOnly {
		t.Error("gems should be members only")
	}
	if info.Title != "Gem Match" {
		t.Errorf("title = %q", info.Title)
	}
}

func TestResetInitialState(t *testing.T) {
	g := newTestGame(t, 30, 300)
	snap := g.Snapshot()

	if snap.State != StatePlaying {
		t.Errorf("state = %s, want playing", snap.State)
	}
	if snap.Moves != 30 || snap.Score != 0 {
		t.Errorf("moves=%d score=%d", snap.Moves, snap.Score)
	}
	if snap.Cursor != board.At(4, 4) {
		t.Errorf("cursor = %v, want (4,4)", snap.Cursor)
	}
	if g.stepTicks != 18 {
		t.Errorf("stepTicks = %d, want 18 (300ms at 60 ticks/s)", g.stepTicks)
	}
}

func TestCursorClampsToBoard(t *testing.T) {
	g := newTestGame(t, 30, 300)

	for range 20 {
		press(g, core.ActionUp)
		press(g, core.ActionLeft)
	}
	if got := g.Snapshot().Cursor; got != board.At(0, 0) {
		t.Errorf("cursor = %v, want (0,0)", got)
	}

	for range 20 {
		press(g, core.ActionDown)
		press(g, core.ActionRight)
	}
	if got := g.Snapshot().Cursor; got != board.At(7, 7) {
		t.Errorf("cursor = %v, want (7,7)", got)
	}
}

func TestCascadePlayback(t *testing.T) {
	g := newTestGame(t, 30, 300)
	loadFixture(g)
	swapRowThree(g)

	snap := g.Snapshot()
	if snap.State != StateAnimating {
		t.Fatalf("state = %s, want animating", snap.State)
	}
	if snap.PendingFrames != 2 {
		t.Errorf("frames = %d, want 2 (swap + one step)", snap.PendingFrames)
	}
	if snap.Score != 30 || snap.Moves != 29 {
		t.Errorf("score=%d moves=%d", snap.Score, snap.Moves)
	}

	// The swapped board is shown first, with row 3 columns 0..2 fading.
	grid, clearing := g.displayGrid()
	if grid.Get(board.At(3, 2)) != grid.Get(board.At(3, 0)) {
		t.Error("first frame should show the swapped board")
	}
	if len(clearing) != 3 {
		t.Errorf("clearing = %v, want three cells", clearing)
	}

	// Input is swallowed while frames play.
	cursor := g.Snapshot().Cursor
	press(g, core.ActionLeft)
	if g.Snapshot().Cursor != cursor {
		t.Error("cursor moved during playback")
	}

	idle(g, 17)
	if got := g.Snapshot().PendingFrames; got != 1 {
		t.Errorf("after one delay: frames = %d, want 1", got)
	}
	idle(g, 18)
	if got := g.Snapshot(); got.PendingFrames != 0 || got.State != StatePlaying {
		t.Errorf("after playback: frames=%d state=%s", got.PendingFrames, got.State)
	}
	if grid, _ := g.displayGrid(); !grid.Equal(g.session.Board()) {
		t.Error("resting display should be the session board")
	}
}

func TestZeroDelaySkipsPlayback(t *testing.T) {
	g := newTestGame(t, 30, 0)
	loadFixture(g)
	swapRowThree(g)

	snap := g.Snapshot()
	if snap.PendingFrames != 0 || snap.State != StatePlaying {
		t.Errorf("frames=%d state=%s, want none/playing", snap.PendingFrames, snap.State)
	}
	if snap.Score != 30 {
		t.Errorf("score = %d, want 30", snap.Score)
	}
}

func TestRestartDropsStaleFrames(t *testing.T) {
	g := newTestGame(t, 30, 300)
	loadFixture(g)
	swapRowThree(g)
	if g.Snapshot().PendingFrames == 0 {
		t.Fatal("expected queued frames")
	}

	press(g, core.ActionRestart)

	snap := g.Snapshot()
	if snap.Generation != 2 {
		t.Errorf("generation = %d, want 2", snap.Generation)
	}
	if snap.PendingFrames != 0 {
		t.Errorf("stale frames survived restart: %d", snap.PendingFrames)
	}
	if snap.Score != 0 || snap.Moves != 30 || snap.State != StatePlaying {
		t.Errorf("restart: score=%d moves=%d state=%s", snap.Score, snap.Moves, snap.State)
	}
}

func TestStaleFramesNeverShown(t *testing.T) {
	g := newTestGame(t, 30, 300)
	g.frames = []frame{{generation: 99, grid: board.NewGrid(8)}}

	idle(g, 1)
	if len(g.frames) != 0 {
		t.Error("frame from another generation should be dropped")
	}
}

func TestGameOverWaitsForPlayback(t *testing.T) {
	g := newTestGame(t, 1, 300)
	loadFixture(g)
	swapRowThree(g)

	if g.State().GameOver {
		t.Error("game over should wait for the cascade to finish")
	}
	idle(g, 36)
	if !g.State().GameOver {
		t.Fatal("game should be over after playback")
	}
	if g.Snapshot().State != StateGameOver {
		t.Errorf("state = %s", g.Snapshot().State)
	}

	before := g.Snapshot()
	press(g, core.ActionConfirm)
	press(g, core.ActionRight)
	after := g.Snapshot()
	if after.HasSelection || after.Cursor != before.Cursor {
		t.Error("input should be ignored after game over")
	}
}

func TestPauseToggle(t *testing.T) {
	g := newTestGame(t, 30, 300)

	press(g, core.ActionPause)
	if !g.State().Paused {
		t.Fatal("expected paused")
	}
	cursor := g.Snapshot().Cursor
	press(g, core.ActionUp)
	if g.Snapshot().Cursor != cursor {
		t.Error("cursor moved while paused")
	}

	press(g, core.ActionPause)
	if g.State().Paused {
		t.Error("expected resumed")
	}
}

func TestTooSmallWindow(t *testing.T) {
	useConfig(t, 30, 300)
	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 20, ScreenH: 10, TickRate: 60, Seed: 1})

	if g.Snapshot().State != StatePausedSmall {
		t.Errorf("state = %s, want paused_small_window", g.Snapshot().State)
	}

	screen := core.NewScreen(20, 10)
	g.Render(screen)
	if !strings.Contains(screen.String(), "too small") {
		t.Error("expected resize notice")
	}

	before := g.Snapshot().Board
	g.Resize(80, 24)
	if g.Snapshot().State != StatePlaying {
		t.Errorf("after resize state = %s", g.Snapshot().State)
	}
	if g.Snapshot().Board != before {
		t.Error("resize should keep the board")
	}
}

func TestRender(t *testing.T) {
	g := newTestGame(t, 30, 300)
	screen := core.NewScreen(80, 24)
	g.Render(screen)

	out := screen.String()
	for _, want := range []string{"GEM MATCH", "Score: 0", "Moves: 30", ">●<"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}

	press(g, core.ActionConfirm)
	g.Render(screen)
	if !strings.Contains(screen.String(), "[●]") {
		t.Error("selected cell should be bracketed")
	}
}

func TestRenderGameOverOverlay(t *testing.T) {
	g := newTestGame(t, 1, 0)
	loadFixture(g)
	swapRowThree(g)

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()
	if !strings.Contains(out, "GAME OVER") || !strings.Contains(out, "Final score: 30") {
		t.Errorf("missing game over overlay:\n%s", out)
	}
}

func TestHUDFollowsPlayback(t *testing.T) {
	g := newTestGame(t, 30, 300)
	loadFixture(g)
	swapRowThree(g)
	screen := core.NewScreen(80, 24)

	tests := []struct {
		name    string
		ticks   int
		want    []string
		notWant []string
	}{
		{"swap frame shows old score", 0, []string{"Score: 0", "Moves: 29"}, []string{"Score: 30", "(+30)"}},
		{"cleared frame adds points", 18, []string{"Score: 30", "Moves: 29"}, []string{"(+30)"}},
		{"at rest shows the gain", 18, []string{"Score: 30 (+30)", "Moves: 29"}, nil},
	}

	for _, tt := range tests {
		idle(g, tt.ticks)
		g.Render(screen)
		out := screen.String()
		for _, w := range tt.want {
			if !strings.Contains(out, w) {
				t.Errorf("%s: missing %q:\n%s", tt.name, w, out)
			}
		}
		for _, w := range tt.notWant {
			if strings.Contains(out, w) {
				t.Errorf("%s: unexpected %q:\n%s", tt.name, w, out)
			}
		}
	}
}

func TestUseBeforeReset(t *testing.T) {
	g := New()
	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if strings.TrimSpace(screen.String()) != "" {
		t.Error("render before Reset should leave the screen blank")
	}
	if snap := g.Snapshot(); snap.Board != "" || snap.Generation != 0 {
		t.Errorf("snapshot before Reset = %+v", snap)
	}
	if res := press(g, core.ActionConfirm); res.State != (core.GameState{}) {
		t.Errorf("step before Reset = %+v", res.State)
	}
}

func TestDifficultyPresetApplied(t *testing.T) {
	useConfig(t, 30, 300)
	SetDifficultyPreset("hard")

	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 3})
	if got := g.Snapshot().Moves; got != 20 {
		t.Errorf("hard moves = %d, want 20", got)
	}
	if got := g.session.Config().PaletteSize; got != 7 {
		t.Errorf("hard palette = %d, want 7", got)
	}
}

func TestSetDifficultyOverridesCLIPreset(t *testing.T) {
	useConfig(t, 30, 300)
	SetDifficultyPreset("hard")

	g := New()
	g.SetDifficulty(config.DifficultyEasy)
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 3})
	if got := g.Snapshot().Moves; got != 40 {
		t.Errorf("easy moves = %d, want 40", got)
	}

	// Other instances still follow the CLI preset.
	other := New()
	other.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 3})
	if got := other.Snapshot().Moves; got != 20 {
		t.Errorf("hard moves = %d, want 20", got)
	}
}

func TestResizeBeforeReset(t *testing.T) {
	g := New()
	g.Resize(10, 5)
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 3})
	if g.State().Paused {
		t.Error("a normal window after Reset should not be paused")
	}
}

func TestGameDeterminism(t *testing.T) {
	run := func() Snapshot {
		g := newTestGame(t, 30, 300)
		inputs := []core.Action{
			core.ActionConfirm, core.ActionRight, core.ActionConfirm,
			core.ActionDown, core.ActionConfirm, core.ActionUp, core.ActionConfirm,
		}
		for _, a := range inputs {
			press(g, a)
			idle(g, 40)
		}
		return g.Snapshot()
	}

	a, b := run(), run()
	if a != b {
		t.Errorf("same seed diverged:\n%+v\n%+v", a, b)
	}
}
