package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/blogforge/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output   string `short:"o" help:"Override the configured output directory"`
	Drafts   bool   `short:"D" help:"Include documents marked draft"`
	FailSoft bool   `help:"Render what can be rendered, report failures at the end"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Drafts {
		cfg.Source.IncludeDrafts = true
	}
	if b.FailSoft {
		failFast := false
		cfg.Build.FailFast = &failFast
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := build.NewService(cfg)
	if history := openHistory(cfg); history != nil {
		defer history.Close()
		svc = svc.WithHistory(history)
	}

	report, err := svc.Run(ctx)
	printReport(report)
	return err
}

func printReport(report *build.Report) {
	fmt.Printf("Build %s: %s (%d pages, %d categories, %s)\n",
		report.BuildID, report.Outcome, report.PagesRendered, report.Categories, report.Duration.Round(time.Millisecond))
	if len(report.Failures) > 0 {
		fmt.Fprintln(os.Stderr, "Failures:")
		for _, f := range report.Failures {
			fmt.Fprintf(os.Stderr, "  [%s] %s: %v\n", f.Kind, f.Path, f.Err)
		}
	}
	if report.LinkIssues > 0 {
		fmt.Fprintf(os.Stderr, "Broken internal links: %d\n", report.LinkIssues)
	}
}
