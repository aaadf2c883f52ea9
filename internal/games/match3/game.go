// Package match3 implements the gem match-3 game: a Session holding the
// rules, and a registry.Game adapter that drives it from the arcade
// platform with a cursor and paced cascade playback.
package match3

import (
	"math/rand"

	"github.com/vovakirdan/gem-arcade/internal/config"
	"github.com/vovakirdan/gem-arcade/internal/core"
	"github.com/vovakirdan/gem-arcade/internal/games/match3/board"
	"github.com/vovakirdan/gem-arcade/internal/registry"
)

// GameID is the registry identifier and score table key.
const GameID = "gems"

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown values clear it.
func SetDifficultyPreset(preset string) {
	p, err := config.ParsePreset(preset)
	if err != nil {
		p = ""
	}
	difficultyPreset = p
}

// frame is one board picture of a cascade, shown for stepTicks ticks.
type frame struct {
	generation uint64
	grid       board.Grid
	clearing   []board.Coord // Cells highlighted as about to vanish
	score      int           // Score as of this frame
	moves      int
}

// Game adapts a Session to the arcade platform.
type Game struct {
	rng        *rand.Rand
	session    *Session
	cfg        config.GemsConfig
	configPath string
	preset     config.DifficultyPreset
	tick       uint64

	cursor     board.Coord
	frames     []frame
	frameTicks int // Ticks the head frame has been shown
	stepTicks  int // Ticks per frame; 0 disables playback
	lastGain   int

	// Screen dimensions
	screenW int
	screenH int

	paused   bool
	tooSmall bool
}

// New creates a new gem game using the CLI-selected config and preset.
func New() *Game {
	return &Game{
		configPath: configPath,
		preset:     difficultyPreset,
	}
}

// SetDifficulty overrides the preset for this instance; it applies from
// the next Reset.
func (g *Game) SetDifficulty(p config.DifficultyPreset) {
	g.preset = p
}

func init() {
	registry.Register(GameID, func() registry.Game {
		return New()
	}, registry.MembersOnly())
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return GameID
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Gem Match"
}

// Reset initializes or restarts the game.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	// Load game config
	cfg, err := config.LoadGems(g.configPath)
	if err != nil {
		cfg = config.DefaultGemsConfig()
	}

	// Apply difficulty preset if set
	if g.preset != "" {
		config.ApplyGemsPreset(&cfg, g.preset)
	}
	g.cfg = cfg

	g.rng = rand.New(rand.NewSource(runtime.Seed))
	g.session = NewSession(SessionConfig{
		BoardSize:        cfg.Board.Size,
		PaletteSize:      cfg.Board.Palette,
		Moves:            cfg.Moves,
		SanitizeAttempts: cfg.Sanitize.MaxAttempts,
		SanitizeRounds:   cfg.Sanitize.MaxRounds,
	}, g.rng)
	g.stepTicks = runtime.TicksFor(cfg.StepDelay())
	g.tick = 0
	g.paused = false
	g.restart()

	g.Resize(runtime.ScreenW, runtime.ScreenH)
}

// Resize updates the layout without touching game progress.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	g.checkScreenSize()
}

// restart starts a new board and drops playback left over from the old one.
func (g *Game) restart() {
	g.session.Start()
	g.dropStaleFrames()
	size := g.session.Config().BoardSize
	g.cursor = board.At(size/2, size/2)
	g.lastGain = 0
}

// dropStaleFrames discards frames queued against an earlier generation.
func (g *Game) dropStaleFrames() {
	gen := g.session.Generation()
	kept := g.frames[:0]
	for _, f := range g.frames {
		if f.generation == gen {
			kept = append(kept, f)
		}
	}
	if len(kept) != len(g.frames) || len(kept) == 0 {
		g.frameTicks = 0
	}
	g.frames = kept
}

// checkScreenSize checks if the screen is large enough.
func (g *Game) checkScreenSize() {
	if g.session == nil {
		return
	}
	minW, minH := g.minScreenSize()
	g.tooSmall = g.screenW < minW || g.screenH < minH
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++
	if g.session == nil {
		return core.StepResult{}
	}

	// Handle window size check
	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	// Handle pause
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionRestart) {
		g.restart()
		return core.StepResult{State: g.State()}
	}

	// Cascade playback swallows input until the board is at rest
	if g.animating() {
		g.advanceFrames()
		return core.StepResult{State: g.State()}
	}

	if g.session.IsGameOver() {
		return core.StepResult{State: g.State()}
	}

	g.moveCursor(in)

	if in.Has(core.ActionConfirm) {
		before, scoreBefore := g.session.Board(), g.session.Score()
		res := g.session.SelectOrSwap(g.cursor)
		if res.Matched {
			g.lastGain = res.Points
			g.queueCascade(before, scoreBefore, res)
		}
	}

	return core.StepResult{State: g.State()}
}

func (g *Game) moveCursor(in core.InputFrame) {
	last := g.session.Config().BoardSize - 1
	switch {
	case in.Has(core.ActionUp):
		g.cursor.Row = core.Clamp(g.cursor.Row-1, 0, last)
	case in.Has(core.ActionDown):
		g.cursor.Row = core.Clamp(g.cursor.Row+1, 0, last)
	case in.Has(core.ActionLeft):
		g.cursor.Col = core.Clamp(g.cursor.Col-1, 0, last)
	case in.Has(core.ActionRight):
		g.cursor.Col = core.Clamp(g.cursor.Col+1, 0, last)
	}
}

// queueCascade turns a committed swap into frames: the swapped board with
// the first run highlighted, then every settle step with the next run
// highlighted. The score on each frame grows step by step from scoreBefore.
func (g *Game) queueCascade(before board.Grid, scoreBefore int, res SwapResult) {
	if g.stepTicks == 0 || len(res.Steps) == 0 {
		return
	}
	gen := g.session.Generation()
	moves := g.session.MovesRemaining()
	score := scoreBefore
	g.frames = append(g.frames, frame{
		generation: gen,
		grid:       before.Swap(res.Swapped[0], res.Swapped[1]),
		clearing:   res.Steps[0].Cleared,
		score:      score,
		moves:      moves,
	})
	for i, st := range res.Steps {
		score += st.Points
		f := frame{generation: gen, grid: st.Grid, score: score, moves: moves}
		if i+1 < len(res.Steps) {
			f.clearing = res.Steps[i+1].Cleared
		}
		g.frames = append(g.frames, f)
	}
	g.frameTicks = 0
}

func (g *Game) animating() bool {
	return len(g.frames) > 0
}

func (g *Game) advanceFrames() {
	g.dropStaleFrames()
	if len(g.frames) == 0 {
		return
	}
	g.frameTicks++
	if g.frameTicks >= g.stepTicks {
		g.frames = g.frames[1:]
		g.frameTicks = 0
	}
}

// displayGrid is the board currently on screen.
func (g *Game) displayGrid() (board.Grid, []board.Coord) {
	if len(g.frames) > 0 {
		return g.frames[0].grid, g.frames[0].clearing
	}
	return g.session.Board(), nil
}

// displayTotals is the score and move count matching the board on screen.
func (g *Game) displayTotals() (score, moves int) {
	if len(g.frames) > 0 {
		return g.frames[0].score, g.frames[0].moves
	}
	return g.session.Score(), g.session.MovesRemaining()
}

// State returns the current game state. Game over is withheld until the
// final cascade has played out.
func (g *Game) State() core.GameState {
	if g.session == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.session.Score(),
		GameOver: g.session.IsGameOver() && !g.animating(),
		Paused:   g.paused || g.tooSmall,
	}
}
