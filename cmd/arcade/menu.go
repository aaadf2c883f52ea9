package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gem-arcade/internal/membership"
	"github.com/vovakirdan/gem-arcade/internal/platform/tui"
	"github.com/vovakirdan/gem-arcade/internal/registry"
	"github.com/vovakirdan/gem-arcade/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the arcade with a game picker menu",
	Long: `Start the arcade in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a game.
After a game ends, you return to the menu to play again.
Members-only games are marked [members]; press M in the menu to
file a membership request for your account.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select game
  Tab          - High scores
  M            - Request membership
  Q            - Quit

Examples:
  arcade menu
  arcade menu --fps 30
  arcade menu --user alice --db ./scores.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	applyGameFlags()

	store := openStoreOrWarn()
	if store != nil {
		defer store.Close()
	}

	player := playerName()
	access := resolveAccess(store, player)

	cfg := runtimeConfig(player)

	for {
		result, err := tui.RunMenu(cfg, access, localRequest(store, access, player))
		if err != nil {
			logger.Error("menu failed", "error", err)
			return
		}
		cfg = result.Config

		if result.Quit || (result.GameID == "" && !result.WantsScoreboard) {
			return
		}

		if result.WantsScoreboard {
			goBack, err := tui.RunScoreboard(scoreReader(store), cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				logger.Error("scoreboard failed", "error", err)
			}
			if !goBack {
				return
			}
			continue
		}

		game, err := registry.Create(result.GameID)
		if err != nil {
			logger.Error("cannot create game", "game", result.GameID, "error", err)
			continue
		}
		if !pickDifficulty(game, cfg) {
			continue
		}

		// Fresh seed per game unless the run was pinned with --seed
		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}
		if err := tui.Run(game, scoreSaver(store), cfg, logger); err != nil {
			logger.Error("game failed", "game", result.GameID, "error", err)
		}
	}
}

// localRequest files membership requests for a known, non-member player.
func localRequest(store *storage.Store, access membership.Access, player string) tui.RequestFunc {
	if store == nil || !access.IsAuthenticated() || access.IsMember() {
		return nil
	}
	members := newMembers(store, flagConfig)
	return func() (string, error) {
		req, err := members.RequestMembership(player)
		if errors.Is(err, membership.ErrAlreadyMember) {
			return "You are already a member. Restart the menu to refresh access.", nil
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Request #%d filed for %d credits. An operator will verify it.", req.ID, req.Amount), nil
	}
}
