// arcade serves the gem match game in the terminal, locally or over SSH.
//
// Usage:
//
//	arcade list              - List available games
//	arcade play <game>       - Play a game
//	arcade menu              - Start menu to pick games interactively
//	arcade serve             - Start SSH (and optional HTTP) server
//	arcade scores <game>     - Show high scores for a game
//	arcade members ...       - Manage accounts and membership requests
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible gameplay
//	--db <path>          - Set database path (default: ~/.arcade/scores.db)
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gem-arcade/internal/config"
	"github.com/vovakirdan/gem-arcade/internal/core"
	"github.com/vovakirdan/gem-arcade/internal/membership"
	"github.com/vovakirdan/gem-arcade/internal/storage"

	// Import games to register them
	_ "github.com/vovakirdan/gem-arcade/internal/games/match3"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string

	logger = log.Default()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Gem Arcade - match gems in your terminal",
	Long: `Gem Arcade is a terminal match-3 game you can play locally or
host over SSH for members.

Available commands:
  list     - Show all available games
  play     - Play a specific game directly
  menu     - Interactive game picker menu
  serve    - Start SSH server for remote play
  scores   - View high scores
  members  - Manage accounts and membership

Examples:
  arcade list
  arcade play gems --difficulty easy
  arcade menu
  arcade serve --ssh :2222 --http :8080
  arcade scores gems`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "arcade",
			Level:           level,
		})
		log.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(membersCmd)
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// runtimeConfig applies the global flags and the terminal size to the
// platform defaults.
func runtimeConfig(player string) core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW, cfg.ScreenH = w, h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	cfg.Player = player
	return cfg
}

// openStoreOrWarn opens the database; games still run without it.
func openStoreOrWarn() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

// newMembers builds the membership service with the configured price.
func newMembers(store *storage.Store, configPath string) *membership.Service {
	cfg, err := config.LoadGems(configPath)
	if err != nil {
		logger.Warn("using default gems config", "error", err)
		cfg = config.DefaultGemsConfig()
	}
	return membership.NewService(store, membership.Options{
		Price:  cfg.Membership.Price,
		Logger: logger,
	})
}

// localUsername is the OS account name, used as the default player.
func localUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return membership.NormalizeUsername(u.Username)
	}
	if name := os.Getenv("USER"); name != "" {
		return membership.NormalizeUsername(name)
	}
	return "player"
}
