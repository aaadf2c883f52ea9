package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gem-arcade/internal/config"
	"github.com/vovakirdan/gem-arcade/internal/core"
	"github.com/vovakirdan/gem-arcade/internal/registry"
)

// ScoreSaver records finished games. *storage.Store satisfies it.
type ScoreSaver interface {
	SaveScore(gameID, player string, score int) (int64, error)
}

// resizer is implemented by games that can follow the terminal size
// without losing progress.
type resizer interface {
	Resize(w, h int)
}

// difficultySetter is implemented by games with difficulty presets.
type difficultySetter interface {
	SetDifficulty(p config.DifficultyPreset)
}

// GameModel is the Bubble Tea model that runs one game.
type GameModel struct {
	game       registry.Game
	screen     *core.Screen
	scores     ScoreSaver
	logger     *log.Logger
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState
	standalone bool // Back quits instead of returning to a menu
	quitting   bool
	backToMenu bool
	scoreSaved bool
	saveErr    error
}

// NewGameModel creates a model for the given game. scores may be nil, in
// which case results are not recorded. A nil logger defers save errors to
// SaveErr.
func NewGameModel(game registry.Game, scores ScoreSaver, cfg core.RuntimeConfig, logger *log.Logger) GameModel {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Player == "" {
		cfg.Player = "player"
	}

	return GameModel{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		scores:     scores,
		logger:     logger,
		config:     cfg,
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
	}
}

// Init resets the game and starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	if action == core.ActionBack {
		if !m.gameState.GameOver && !m.gameState.Paused {
			return m, nil
		}
		if m.standalone {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
		return m, nil
	}

	if action != core.ActionNone {
		m.inputFrame.Set(action)
	}
	return m, nil
}

func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if r, ok := m.game.(resizer); ok {
		r.Resize(msg.Width, msg.Height)
	} else if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}
	return m, nil
}

func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()

	switch {
	case !m.gameState.GameOver:
		m.scoreSaved = false
	case !m.scoreSaved:
		m.recordScore()
		m.scoreSaved = true
	}

	return m, tickCmd(m.config.TickRate)
}

// recordScore saves a finished game once. Failures never interrupt play.
func (m *GameModel) recordScore() {
	if m.scores == nil || m.gameState.Score <= 0 {
		return
	}
	_, err := m.scores.SaveScore(m.game.ID(), m.config.Player, m.gameState.Score)
	if err == nil {
		return
	}
	m.saveErr = err
	if m.logger != nil {
		m.logger.Warn("could not save score", "game", m.game.ID(), "player", m.config.Player, "error", err)
	}
}

// saveScreenshot writes the current frame under ~/.arcade/screenshots.
func (m *GameModel) saveScreenshot() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	m.game.Render(m.screen)

	dir := filepath.Join(home, ".arcade", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	name := fmt.Sprintf("%s_%s.txt", m.game.ID(), time.Now().Format("20060102_150405"))
	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(filepath.Join(dir, name), []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// IsQuitting returns true if the user asked to leave entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if the user asked to return to the menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// SaveErr returns the last score-saving failure, if any.
func (m GameModel) SaveErr() error {
	return m.saveErr
}

// Run plays a single game in the local terminal until the user quits.
func Run(game registry.Game, scores ScoreSaver, cfg core.RuntimeConfig, logger *log.Logger) error {
	model := NewGameModel(game, scores, cfg, nil)
	model.standalone = true

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal while playing; report afterwards.
	if fm, ok := final.(GameModel); ok && fm.SaveErr() != nil && logger != nil {
		logger.Warn("could not save score", "game", game.ID(), "error", fm.SaveErr())
	}
	return nil
}
