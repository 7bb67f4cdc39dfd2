// Package build orchestrates the publishing pipeline: template loading,
// content discovery, per-document rendering and site assembly.
package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogforge/internal/buildlog"
	"git.home.luguber.info/inful/blogforge/internal/config"
	"git.home.luguber.info/inful/blogforge/internal/content"
	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
	"git.home.luguber.info/inful/blogforge/internal/linkcheck"
	"git.home.luguber.info/inful/blogforge/internal/logfields"
	"git.home.luguber.info/inful/blogforge/internal/metrics"
	"git.home.luguber.info/inful/blogforge/internal/render"
	"git.home.luguber.info/inful/blogforge/internal/site"
	"git.home.luguber.info/inful/blogforge/internal/templates"
)

// Service runs complete builds from a loaded configuration.
type Service struct {
	cfg      *config.Config
	recorder metrics.Recorder
	history  *buildlog.Store
}

// NewService creates a build service. recorder may be nil (no metrics).
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg, recorder: metrics.NoopRecorder{}}
}

// WithRecorder injects a metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithHistory injects a build log store; each run is recorded on completion.
func (s *Service) WithHistory(h *buildlog.Store) *Service {
	s.history = h
	return s
}

// Run executes one complete build.
//
// Under the fail-fast policy (default) the first document failure aborts the
// run with that error. Under fail-soft every document is attempted, failures
// are collected in the report, and the error return carries the first one so
// callers still get a non-nil error for a failed build.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{
		BuildID: uuid.NewString(),
		Start:   start,
		Outcome: OutcomeFailed,
	}
	defer func() {
		report.Duration = time.Since(start)
		s.recorder.ObserveBuildDuration(report.Duration)
		s.recorder.IncBuildOutcome(string(report.Outcome))
		s.logHistory(ctx, report)
	}()

	if s.cfg == nil {
		return report, bferrors.ConfigError("config required", nil)
	}
	failFast := s.cfg.Build.FailFastEnabled()

	// Stage 1: template resolution. Layouts and includes are loaded up front
	// so a missing template fails the build before any document renders.
	stageStart := time.Now()
	reg, err := templates.LoadRegistry(s.cfg.Source.LayoutsDir, s.cfg.Source.IncludesDir)
	if err != nil {
		return report, err
	}
	s.recorder.ObserveStageDuration("templates", time.Since(stageStart))

	// Stage 2: content discovery.
	stageStart = time.Now()
	loader := content.NewLoader(s.cfg.Source.Directory, s.cfg.Build.DefaultLayout, s.cfg.Source.IncludeDrafts)
	docs, parseFailures, err := loader.Load()
	if err != nil {
		return report, err
	}
	s.recorder.ObserveStageDuration("discover", time.Since(stageStart))

	for _, ferr := range parseFailures {
		s.recorder.IncPageResult(metrics.ResultFailed)
		report.Failures = append(report.Failures, newFailure(ferr))
		if failFast {
			return report, ferr
		}
		slog.Warn("Skipping malformed document", logfields.Error(ferr))
	}

	// Stage 3: rendering.
	stageStart = time.Now()
	siteMeta := templates.SiteMeta{
		Title:       s.cfg.Site.Title,
		BaseURL:     s.cfg.Site.BaseURL,
		Description: s.cfg.Site.Description,
	}
	renderer := render.New(reg, siteMeta)

	pages := make([]*render.Page, 0, len(docs))
	for _, doc := range docs {
		select {
		case <-ctx.Done():
			report.Outcome = OutcomeCancelled
			return report, ctx.Err()
		default:
		}

		page, err := renderer.Render(doc)
		if err != nil {
			s.recorder.IncPageResult(metrics.ResultFailed)
			report.Failures = append(report.Failures, newFailure(err))
			if failFast {
				return report, err
			}
			slog.Warn("Skipping failed document",
				logfields.Path(doc.RelPath), logfields.Error(err))
			continue
		}
		s.recorder.IncPageResult(metrics.ResultSuccess)
		pages = append(pages, page)
	}
	s.recorder.ObserveStageDuration("render", time.Since(stageStart))

	// Stage 4: assembly.
	stageStart = time.Now()
	assembler := site.NewAssembler(reg, siteMeta, site.Options{
		OutputDir:  s.cfg.Output.Directory,
		StaticDir:  s.cfg.Source.StaticDir,
		ListLayout: s.cfg.Build.ListLayout,
		FeedSize:   s.cfg.Build.FeedSize,
		Clean:      s.cfg.Output.Clean,
	})
	if err := assembler.Assemble(pages); err != nil {
		return report, err
	}
	s.recorder.ObserveStageDuration("assemble", time.Since(stageStart))

	report.PagesRendered = len(pages)
	report.Categories = len(site.GroupByCategory(pages))
	s.recorder.SetPagesTotal(report.PagesRendered)
	s.recorder.SetCategoriesTotal(report.Categories)

	// Stage 5: link verification (optional).
	if s.cfg.Build.CheckLinks {
		stageStart = time.Now()
		issues, err := linkcheck.Check(s.cfg.Output.Directory)
		if err != nil {
			return report, err
		}
		s.recorder.ObserveStageDuration("check", time.Since(stageStart))
		report.LinkIssues = len(issues)
		for _, issue := range issues {
			slog.Warn("Broken internal link",
				logfields.Path(issue.File), slog.String("url", issue.URL))
		}
	}

	if len(report.Failures) > 0 {
		report.Outcome = OutcomeFailed
		return report, report.Failures[0].Err
	}

	report.Outcome = OutcomeSuccess
	slog.Info("Build completed",
		slog.String("build_id", report.BuildID),
		logfields.Pages(report.PagesRendered),
		slog.Int("categories", report.Categories),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return report, nil
}

func (s *Service) logHistory(ctx context.Context, report *Report) {
	if s.history == nil {
		return
	}
	entry := buildlog.Entry{
		ID:        report.BuildID,
		StartedAt: report.Start,
		Duration:  report.Duration,
		Pages:     report.PagesRendered,
		Failures:  len(report.Failures),
		Outcome:   string(report.Outcome),
	}
	if err := s.history.Record(ctx, entry); err != nil {
		slog.Warn("Failed to record build history", logfields.Error(err))
	}
}

// KindCounts tallies report failures by kind, for summary output.
func (r *Report) KindCounts() map[bferrors.Kind]int {
	counts := map[bferrors.Kind]int{}
	for _, f := range r.Failures {
		counts[f.Kind]++
	}
	return counts
}
