package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gem-arcade/internal/config"
	"github.com/vovakirdan/gem-arcade/internal/core"
	"github.com/vovakirdan/gem-arcade/internal/games/match3"
	"github.com/vovakirdan/gem-arcade/internal/membership"
	"github.com/vovakirdan/gem-arcade/internal/platform/tui"
	"github.com/vovakirdan/gem-arcade/internal/registry"
	"github.com/vovakirdan/gem-arcade/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagUser       string
	flagNoGate     bool
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game.

Controls:
  Arrows/WASD/HJKL  - Move the cursor
  Enter/Space       - Select a gem, then an adjacent gem to swap
  P                 - Pause
  R                 - Restart
  Esc               - Leave (when paused or over)
  Q/Ctrl+C          - Quit

Difficulty options:
  easy   - 40 moves, 5 colors
  normal - 30 moves, 6 colors
  hard   - 20 moves, 7 colors
  fixed  - Config file as-is

Without --difficulty a picker is shown before the game starts.

Examples:
  arcade play gems
  arcade play gems --difficulty hard
  arcade play gems --config ./my-gems.yaml
  arcade play gems --user alice
  arcade play gems --no-gate`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	for _, cmd := range []*cobra.Command{playCmd, menuCmd} {
		cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
		cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
		cmd.Flags().StringVar(&flagUser, "user", "", "Account to play as (default: OS user)")
		cmd.Flags().BoolVar(&flagNoGate, "no-gate", false, "Skip the membership check (local development)")
	}
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := args[0]

	info, ok := registry.Info(gameID)
	if !ok {
		fail("unknown game %q\nRun 'arcade list' to see available games.", gameID)
	}
	applyGameFlags()

	store := openStoreOrWarn()
	if store != nil {
		defer store.Close()
	}

	player := playerName()
	access := resolveAccess(store, player)
	if !membership.CanPlay(access, info.MembersOnly) {
		fail("%s is for members only; run 'arcade members request %s'", info.Title, player)
	}

	cfg := runtimeConfig(player)

	game, err := registry.Create(gameID)
	if err != nil {
		fail("creating game: %v", err)
	}
	if !pickDifficulty(game, cfg) {
		return
	}

	if err := tui.Run(game, scoreSaver(store), cfg, logger); err != nil {
		fail("running game: %v", err)
	}
}

// applyGameFlags forwards --config and --difficulty to the gem game.
func applyGameFlags() {
	if _, err := config.ParsePreset(flagDifficulty); err != nil {
		fail("%v", err)
	}
	match3.SetConfigPath(flagConfig)
	match3.SetDifficultyPreset(flagDifficulty)
}

// pickDifficulty shows the preset picker when --difficulty was not given.
// Returns false when the user backed out.
func pickDifficulty(game registry.Game, cfg core.RuntimeConfig) bool {
	g, ok := game.(*match3.Game)
	if !ok || flagDifficulty != "" {
		return true
	}
	preset, chosen, err := tui.RunDifficultySelector(cfg)
	if err != nil {
		fail("%v", err)
	}
	if chosen {
		g.SetDifficulty(preset)
	}
	return chosen
}

func playerName() string {
	if flagUser != "" {
		return membership.NormalizeUsername(flagUser)
	}
	return localUsername()
}

// resolveAccess decides what the local player may open. The OS user is
// trusted, so no password is asked.
func resolveAccess(store *storage.Store, player string) membership.Access {
	if flagNoGate {
		return membership.Unrestricted{}
	}
	if store == nil {
		return membership.Anonymous{}
	}
	account, err := newMembers(store, flagConfig).Lookup(player)
	switch {
	case err == nil:
		return account
	case errors.Is(err, membership.ErrUnknownUser):
		return membership.Anonymous{}
	default:
		logger.Warn("account lookup failed", "user", player, "error", err)
		return membership.Anonymous{}
	}
}

// scoreSaver keeps a missing store a nil interface.
func scoreSaver(store *storage.Store) tui.ScoreSaver {
	if store == nil {
		return nil
	}
	return store
}

func scoreReader(store *storage.Store) tui.ScoreReader {
	if store == nil {
		return nil
	}
	return store
}
