package match3

import (
	"github.com/vovakirdan/gem-arcade/internal/games/match3/board"
)

// SessionConfig fixes the shape and budget of one game.
type SessionConfig struct {
	BoardSize        int
	PaletteSize      int
	Moves            int
	SanitizeAttempts int // Fresh boards tried at Start
	SanitizeRounds   int // Cascade rounds allowed per fresh board
}

// DefaultSessionConfig is the reference 8×8, six colors, thirty moves game.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		BoardSize:        8,
		PaletteSize:      6,
		Moves:            30,
		SanitizeAttempts: 10,
		SanitizeRounds:   20,
	}
}

// selectionState is the two-click machine: Idle or OneSelected.
type selectionState int

const (
	stateIdle selectionState = iota
	stateOneSelected
)

// SwapResult reports what a click did.
type SwapResult struct {
	Accepted bool           // False when the click was ignored (game over, off-board)
	Matched  bool           // True when a swap was committed
	Swapped  [2]board.Coord // Valid only when Matched
	Steps    []board.Step   // Cascade iterations, for animation
	Points   int            // Points earned by the swap
}

// Session is the live state of one gem game: board, selection, score and
// the remaining move budget. It is owned by a single caller and is not safe
// for concurrent use.
type Session struct {
	cfg     SessionConfig
	palette board.Palette
	rng     board.RandSource

	grid       board.Grid
	state      selectionState
	selected   board.Coord
	score      int
	moves      int
	gameOver   bool
	generation uint64
}

// NewSession creates a session. Call Start before playing.
func NewSession(cfg SessionConfig, rng board.RandSource) *Session {
	return &Session{
		cfg:     cfg,
		palette: board.Palette(cfg.PaletteSize),
		rng:     rng,
	}
}

// Start begins a new game, discarding any previous one.
//
// Each fresh board is settled for at most SanitizeRounds cascade rounds.
// A board still holding a run after that is thrown away and a new one is
// generated, up to SanitizeAttempts boards in total; the last one is
// accepted as-is even if it still matches.
func (s *Session) Start() {
	s.generation++
	s.grid = s.sanitizedBoard()
	s.score = 0
	s.moves = s.cfg.Moves
	s.gameOver = s.moves <= 0
	s.state = stateIdle
}

func (s *Session) sanitizedBoard() board.Grid {
	attempts := max(s.cfg.SanitizeAttempts, 1)
	var settled board.SettleResult
	for range attempts {
		fresh := board.Generate(s.palette, s.cfg.BoardSize, s.rng)
		settled = board.SettleBounded(fresh, s.palette, s.rng, s.cfg.SanitizeRounds, nil)
		if settled.Stable {
			break
		}
	}
	return settled.Grid
}

// SelectOrSwap handles a click on cell c.
//
// The first click selects. A second click on an adjacent cell tries the
// swap: if the swapped board has a run it is committed, settled and costs
// one move; otherwise nothing changes. A second click elsewhere moves the
// selection. Clicking the selected cell again keeps it selected.
func (s *Session) SelectOrSwap(c board.Coord) SwapResult {
	if s.gameOver || !s.grid.InBounds(c) {
		return SwapResult{}
	}

	if s.state == stateIdle {
		s.selected = c
		s.state = stateOneSelected
		return SwapResult{Accepted: true}
	}

	from := s.selected
	if c == from {
		return SwapResult{Accepted: true}
	}
	if !board.Adjacent(from, c) {
		s.selected = c
		return SwapResult{Accepted: true}
	}

	s.state = stateIdle
	candidate := s.grid.Swap(from, c)
	if !board.HasMatches(candidate) {
		return SwapResult{Accepted: true}
	}

	settled := board.Settle(candidate, s.palette, s.rng, nil)
	s.grid = settled.Grid
	s.score += settled.Points
	s.moves--
	if s.moves <= 0 {
		s.moves = 0
		s.gameOver = true
	}

	return SwapResult{
		Accepted: true,
		Matched:  true,
		Swapped:  [2]board.Coord{from, c},
		Steps:    settled.Steps,
		Points:   settled.Points,
	}
}

// Selection returns the selected cell, if any.
func (s *Session) Selection() (board.Coord, bool) {
	return s.selected, s.state == stateOneSelected
}

// Board returns a copy of the current board.
func (s *Session) Board() board.Grid {
	return s.grid.Clone()
}

// Score returns the points earned since Start.
func (s *Session) Score() int {
	return s.score
}

// MovesRemaining returns how many scoring swaps are left.
func (s *Session) MovesRemaining() int {
	return s.moves
}

// IsGameOver reports whether the move budget is exhausted.
func (s *Session) IsGameOver() bool {
	return s.gameOver
}

// Generation increases on every Start. Work scheduled against an older
// generation must be dropped.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Config returns the session configuration.
func (s *Session) Config() SessionConfig {
	return s.cfg
}
