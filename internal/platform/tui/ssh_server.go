package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/vovakirdan/gem-arcade/internal/core"
	"github.com/vovakirdan/gem-arcade/internal/membership"
	"github.com/vovakirdan/gem-arcade/internal/registry"
	"github.com/vovakirdan/gem-arcade/internal/storage"
)

// ScoreStore is the score side of storage used by SSH sessions.
type ScoreStore interface {
	ScoreSaver
	ScoreReader
}

// Members is the membership side used by SSH sessions.
// *membership.Service satisfies it.
type Members interface {
	Authenticator
	Lookup(username string) (membership.Account, error)
	RequestMembership(username string) (*storage.PaymentRequest, error)
}

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.arcade/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the simulation rate for every session.
	TickRate int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
	}
}

// SSHServer wraps a Wish SSH server for the arcade.
type SSHServer struct {
	config  SSHServerConfig
	server  *ssh.Server
	scores  ScoreStore
	members Members
	logger  *log.Logger
}

// NewSSHServer creates an SSH server. scores and members may be nil, in
// which case sessions run without persistence and every player is a guest.
func NewSSHServer(cfg SSHServerConfig, scores ScoreStore, members Members, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.Default()
	}

	srv := &SSHServer{
		config:  cfg,
		scores:  scores,
		members: members,
		logger:  logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".arcade", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
		Player:   sess.User(),
	}

	model := NewSessionModel(s.scores, s.members, cfg, s.logger.With("user", sess.User()))
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe()
		if errors.Is(err, ssh.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSH server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type sessionPhase int

const (
	phaseLogin sessionPhase = iota
	phaseMenu
	phaseDifficulty
	phaseGame
	phaseScores
)

// SessionModel drives one SSH session: login, menu, difficulty, game and
// scoreboard, returning to the menu after each game.
type SessionModel struct {
	scores     ScoreStore
	members    Members
	logger     *log.Logger
	config     core.RuntimeConfig
	access     membership.Access
	phase      sessionPhase
	login      LoginModel
	menu       MenuModel
	difficulty DifficultyModel
	scoreboard ScoreboardModel
	pending    registry.Game
	game       GameModel
	quitting   bool
}

// NewSessionModel creates a session for the SSH user named in cfg.Player.
func NewSessionModel(scores ScoreStore, members Members, cfg core.RuntimeConfig, logger *log.Logger) SessionModel {
	if logger == nil {
		logger = log.Default()
	}
	m := SessionModel{
		scores:  scores,
		members: members,
		logger:  logger,
		config:  cfg,
		access:  membership.Anonymous{},
	}

	if members == nil {
		m.enterMenu()
		return m
	}

	_, err := members.Lookup(cfg.Player)
	switch {
	case err == nil:
		m.login = NewLoginModel(members, cfg.Player, false, cfg.ScreenW)
	case errors.Is(err, membership.ErrUnknownUser):
		m.login = NewLoginModel(members, cfg.Player, true, cfg.ScreenW)
	default:
		logger.Warn("account lookup failed, continuing as guest", "error", err)
		m.enterMenu()
		return m
	}
	m.phase = phaseLogin
	return m
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.phase == phaseLogin {
		return m.login.Init()
	}
	return nil
}

// Update routes messages to the active screen.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.phase {
	case phaseLogin:
		return m.updateLogin(msg)
	case phaseDifficulty:
		return m.updateDifficulty(msg)
	case phaseGame:
		return m.updateGame(msg)
	case phaseScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m *SessionModel) enterMenu() {
	m.phase = phaseMenu
	m.pending = nil
	m.menu = NewMenuModel(m.config, m.access, m.requestFunc())
}

// requestFunc lets authenticated non-members file a membership request.
func (m SessionModel) requestFunc() RequestFunc {
	account, ok := m.access.(membership.Account)
	if m.members == nil || !ok {
		return nil
	}
	members := m.members
	return func() (string, error) {
		req, err := members.RequestMembership(account.Username)
		if errors.Is(err, membership.ErrAlreadyMember) {
			return "You are already a member. Reconnect to refresh access.", nil
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Request #%d filed for %d credits. An operator will verify it.", req.ID, req.Amount), nil
	}
}

func (m SessionModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.login.Update(msg)
	if lm, ok := next.(LoginModel); ok {
		m.login = lm
	}

	switch {
	case m.login.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.login.Account() != nil:
		account := *m.login.Account()
		m.access = account
		m.config.Player = account.Username
		m.logger.Info("logged in", "account", account.Username, "member", account.IsMember())
		m.enterMenu()
		return m, nil
	case m.login.IsGuest():
		m.enterMenu()
		return m, nil
	}
	return m, cmd
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if mm, ok := next.(MenuModel); ok {
		m.menu = mm
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsScoreboard() {
		m.scoreboard = NewScoreboardModel(m.scores, m.config.ScreenW, m.config.ScreenH)
		m.phase = phaseScores
		return m, nil
	}

	if selected := m.menu.Selected(); selected != nil {
		game, err := registry.Create(selected.GameID)
		if err != nil {
			m.logger.Error("cannot create game", "game", selected.GameID, "error", err)
			m.enterMenu()
			return m, nil
		}
		m.pending = game
		if _, ok := game.(difficultySetter); ok {
			m.difficulty = NewDifficultyModel(m.config.ScreenW, m.config.ScreenH)
			m.phase = phaseDifficulty
			return m, nil
		}
		return m, m.startGame()
	}
	return m, cmd
}

func (m SessionModel) updateDifficulty(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.difficulty.Update(msg)
	if dm, ok := next.(DifficultyModel); ok {
		m.difficulty = dm
	}

	switch {
	case m.difficulty.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.difficulty.WantsBack():
		m.enterMenu()
		return m, nil
	}
	if preset, ok := m.difficulty.Selected(); ok {
		if ds, isSetter := m.pending.(difficultySetter); isSetter {
			ds.SetDifficulty(preset)
		}
		return m, m.startGame()
	}
	return m, cmd
}

func (m *SessionModel) startGame() tea.Cmd {
	m.game = NewGameModel(m.pending, m.scores, m.config, m.logger)
	m.phase = phaseGame
	m.pending = nil
	return m.game.Init()
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if gm, ok := next.(GameModel); ok {
		m.game = gm
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		m.enterMenu()
		return m, nil
	}
	return m, cmd
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scoreboard.Update(msg)
	if sm, ok := next.(ScoreboardModel); ok {
		m.scoreboard = sm
	}

	if m.scoreboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scoreboard.IsGoingBack() {
		m.enterMenu()
		return m, nil
	}
	return m, cmd
}

// View renders the active screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.phase {
	case phaseLogin:
		return m.login.View()
	case phaseDifficulty:
		return m.difficulty.View()
	case phaseGame:
		return m.game.View()
	case phaseScores:
		return m.scoreboard.View()
	default:
		return m.menu.View()
	}
}

// Phase reports the active screen; used by tests.
func (m SessionModel) Phase() string {
	return [...]string{"login", "menu", "difficulty", "game", "scores"}[m.phase]
}
