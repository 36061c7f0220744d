// Command deadside-ingest manages Deadside game-server telemetry:
// it registers servers per Discord guild, locates their death-event
// and engine-log paths over SFTP, and sweeps new telemetry into
// per-player statistics.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/deadside-tools/deadside-ingest/internal/config"
	"github.com/deadside-tools/deadside-ingest/internal/ingest"
	"github.com/deadside-tools/deadside-ingest/internal/pathfind"
	"github.com/deadside-tools/deadside-ingest/internal/sftpfs"
	"github.com/deadside-tools/deadside-ingest/internal/store"
)

// version is set at build time via ldflags.
var version = "dev"

// defaultConfigPath is used when --config is not given.
const defaultConfigPath = "deadside-ingest.toml"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagVerbose    bool
	flagQuiet      bool
)

// cfg holds the effective configuration loaded by PersistentPreRunE.
var cfg *config.Config

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deadside-ingest",
		Short: "Deadside server telemetry ingestion",
		Long: `Register Deadside game servers per guild, locate their telemetry
paths over SFTP even as hosting panels shuffle directory layouts, and
sweep death events and engine logs into per-player statistics.`,
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newServersCmd())
	cmd.AddCommand(newFixPathsCmd())
	cmd.AddCommand(newSweepCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}

// loadConfig resolves the effective configuration and stores it in cfg
// for use by subcommands.
func loadConfig() error {
	path := flagConfigPath
	if path == "" {
		path = defaultConfigPath
	}

	loaded, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg = loaded

	return nil
}

// buildLogger creates an slog.Logger configured by the loaded config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win. The "auto" format
// picks text on a terminal and JSON otherwise.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	if cfg != nil {
		switch cfg.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	format := "auto"
	if cfg != nil {
		format = cfg.Logging.LogFormat
	}

	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	default:
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			return slog.New(slog.NewTextHandler(os.Stderr, opts))
		}

		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
}

// app bundles the wired subsystems a subcommand needs. Close releases
// the store.
type app struct {
	store   *store.Store
	remote  *sftpfs.Client
	res     *pathfind.Resolver
	disc    *pathfind.Discovery
	sweeper *ingest.Sweeper
	logger  *slog.Logger
}

// buildApp opens the database and wires discovery and ingestion on top
// of a fresh path cache.
func buildApp() (*app, error) {
	logger := buildLogger()

	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	remote := sftpfs.New(cfg.DialTimeout(), logger)

	res := pathfind.NewResolver(remote, pathfind.NewCache(), logger)
	res.SetSearchBounds(cfg.Sweep.SearchMaxDepth, cfg.Sweep.SearchMaxFiles)

	disc := pathfind.NewDiscovery(remote, res, logger)
	sweeper := ingest.NewSweeper(remote, disc, st, cfg.Sweep.Workers, logger)

	return &app{
		store:   st,
		remote:  remote,
		res:     res,
		disc:    disc,
		sweeper: sweeper,
		logger:  logger,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing database", "error", err)
	}
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
