package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogforge/internal/buildlog"
	"git.home.luguber.info/inful/blogforge/internal/config"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blogforge.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the site from local content"`
	Serve   ServeCmd   `cmd:"" help:"Serve the site locally with rebuild on change"`
	Check   CheckCmd   `cmd:"" help:"Build and verify internal links without writing a report"`
	Init    InitCmd    `cmd:"" help:"Scaffold a new site project"`
	History HistoryCmd `cmd:"" help:"Show recent build runs from the build log"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig reads the configuration named by the root --config flag.
func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}

// openHistory opens the configured build log, or returns nil when disabled.
func openHistory(cfg *config.Config) *buildlog.Store {
	if cfg.Build.HistoryPath == "" {
		return nil
	}
	if cfg.Build.HistoryPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Build.HistoryPath), 0o750); err != nil {
			slog.Warn("Build history disabled", "path", cfg.Build.HistoryPath, "error", err)
			return nil
		}
	}
	store, err := buildlog.Open(cfg.Build.HistoryPath)
	if err != nil {
		slog.Warn("Build history disabled", "path", cfg.Build.HistoryPath, "error", err)
		return nil
	}
	return store
}
