package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/gem-arcade/internal/config"
	"github.com/vovakirdan/gem-arcade/internal/games/match3"
	"github.com/vovakirdan/gem-arcade/internal/httpapi"
	"github.com/vovakirdan/gem-arcade/internal/membership"
	"github.com/vovakirdan/gem-arcade/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHTTPAddr    string
	flagHostKey     string
	flagIdleTimeout int
	flagAdminUser   string
	flagServeConfig string
)

// adminPasswordEnv holds the bootstrap admin password for --admin.
const adminPasswordEnv = "ARCADE_ADMIN_PASSWORD"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arcade SSH server",
	Long: `Start an SSH server that allows users to connect and play games.

Each SSH connection logs in (or registers) with the SSH username
prefilled, then gets a game picker menu. Members-only games need an
approved membership. Scores are stored per-server under the account name.

With --http a read-only JSON API is served alongside:
  GET /healthz
  GET /api/games
  GET /api/scores/{game}?limit=N

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arcade/host_key

Examples:
  arcade serve                           # Listen on :23234 with auto-generated key
  arcade serve --ssh :2222               # Listen on port 2222
  arcade serve --http :8080              # Also serve the score API
  arcade serve --admin root              # Bootstrap an admin ($ARCADE_ADMIN_PASSWORD)

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP API address (empty disables it)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagAdminUser, "admin", "", "Ensure this admin account exists (password from "+adminPasswordEnv+")")
	serveCmd.Flags().StringVar(&flagServeConfig, "config", "", "Path to custom gems config YAML")
}

func runServe(_ *cobra.Command, _ []string) {
	if err := useGameConfig(flagServeConfig); err != nil {
		fail("%v", err)
	}

	store := openStoreOrWarn()
	if store != nil {
		defer store.Close()
	}

	var (
		scores  tui.ScoreStore
		members tui.Members
		source  httpapi.ScoreSource
	)
	if store != nil {
		svc := newMembers(store, flagServeConfig)
		ensureAdmin(svc)
		scores, members, source = store, svc, store
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.TickRate = flagFPS

	server, err := tui.NewSSHServer(cfg, scores, members, logger.WithPrefix("ssh"))
	if err != nil {
		fail("creating server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx)
	})
	if flagHTTPAddr != "" {
		api := httpapi.New(source, logger.WithPrefix("http"))
		g.Go(func() error {
			return api.ListenAndServe(ctx, flagHTTPAddr)
		})
	}

	logger.Info("arcade is up", "ssh", flagSSHAddr, "http", flagHTTPAddr)
	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		stop()
		if store != nil {
			store.Close()
		}
		os.Exit(1)
	}
	logger.Info("bye")
}

// useGameConfig points every gem session started by the server at path.
// A custom file must load cleanly, so a broken one stops the server at
// startup instead of silently falling back to defaults per session.
func useGameConfig(path string) error {
	if path != "" {
		if _, err := config.LoadGems(path); err != nil {
			return err
		}
	}
	match3.SetConfigPath(path)
	return nil
}

func ensureAdmin(svc *membership.Service) {
	if flagAdminUser == "" {
		return
	}
	password := os.Getenv(adminPasswordEnv)
	if password == "" {
		fail("--admin needs %s to be set", adminPasswordEnv)
	}
	account, err := svc.EnsureAdmin(flagAdminUser, password)
	if err != nil {
		fail("bootstrapping admin: %v", err)
	}
	logger.Info("admin ready", "user", account.Username)
}
