package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/blogforge/internal/buildlog"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" default:"20" help:"Number of builds to show"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Build.HistoryPath == "" {
		return fmt.Errorf("build history is disabled (set build.history_path)")
	}

	store, err := buildlog.Open(cfg.Build.HistoryPath)
	if err != nil {
		return fmt.Errorf("open build log: %w", err)
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No builds recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tOUTCOME\tPAGES\tFAILURES\tDURATION\tID")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			e.StartedAt.Format(time.RFC3339), e.Outcome, e.Pages, e.Failures,
			e.Duration.Round(time.Millisecond), e.ID)
	}
	return w.Flush()
}
