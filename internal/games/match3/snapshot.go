package match3

import "github.com/vovakirdan/gem-arcade/internal/games/match3/board"

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying     GameStateType = "playing"
	StateAnimating   GameStateType = "animating"
	StateGameOver    GameStateType = "game_over"
	StatePausedSmall GameStateType = "paused_small_window"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick          uint64
	Generation    uint64
	Score         int
	Moves         int
	Selected      board.Coord
	HasSelection  bool
	Cursor        board.Coord
	Board         string // Settled board, one letter per gem
	PendingFrames int
	State         GameStateType
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	if g.session == nil {
		return Snapshot{Tick: g.tick, State: StatePlaying}
	}
	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case g.animating():
		state = StateAnimating
	case g.session.IsGameOver():
		state = StateGameOver
	}

	sel, ok := g.session.Selection()
	return Snapshot{
		Tick:          g.tick,
		Generation:    g.session.Generation(),
		Score:         g.session.Score(),
		Moves:         g.session.MovesRemaining(),
		Selected:      sel,
		HasSelection:  ok,
		Cursor:        g.cursor,
		Board:         g.session.Board().String(),
		PendingFrames: len(g.frames),
		State:         state,
	}
}
