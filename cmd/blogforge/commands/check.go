package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/blogforge/internal/build"
)

// CheckCmd implements the 'check' command: a full build into a throwaway
// directory with fail-soft rendering and link verification, exiting non-zero
// if anything is wrong. Nothing is written to the configured output.
type CheckCmd struct{}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	tmp, err := os.MkdirTemp("", "blogforge-check-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	cfg.Output.Directory = tmp
	cfg.Output.Clean = true
	cfg.Build.CheckLinks = true
	cfg.Build.HistoryPath = ""
	failFast := false
	cfg.Build.FailFast = &failFast

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := build.NewService(cfg).Run(ctx)
	printReport(report)
	if err != nil {
		return err
	}
	if report.LinkIssues > 0 {
		return fmt.Errorf("%d broken internal links", report.LinkIssues)
	}
	fmt.Println("Site is healthy")
	return nil
}
