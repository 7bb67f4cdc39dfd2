package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogforge/internal/build"
	"git.home.luguber.info/inful/blogforge/internal/config"
	"git.home.luguber.info/inful/blogforge/internal/metrics"
)

// ServeCmd implements the 'serve' command: build once, then serve the output
// directory locally and rebuild when content or templates change.
type ServeCmd struct {
	Port   int  `short:"p" help:"Override the configured serve port"`
	Drafts bool `short:"D" help:"Include documents marked draft"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}
	if s.Drafts {
		cfg.Source.IncludeDrafts = true
	}
	// A failed document should not kill the preview loop.
	failFast := false
	cfg.Build.FailFast = &failFast

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := build.NewService(cfg)

	var reg *prom.Registry
	if cfg.Serve.Metrics {
		reg = prom.NewRegistry()
		svc = svc.WithRecorder(metrics.NewPrometheusRecorder(reg))
	}
	if history := openHistory(cfg); history != nil {
		defer history.Close()
		svc = svc.WithHistory(history)
	}

	if _, err := svc.Run(ctx); err != nil {
		// Serve what we have; the watcher will rebuild on the next change.
		slog.Error("Initial build failed", "error", err)
	}

	server := newPreviewServer(cfg, reg)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server failed", "error", err)
			cancel()
		}
	}()
	slog.Info("Preview server listening",
		"port", cfg.Serve.Port,
		"url", fmt.Sprintf("http://localhost:%d", cfg.Serve.Port))

	rebuildReq, trigger := newDebouncer()
	startRebuildWorker(ctx, svc, rebuildReq)

	scheduler, err := startPeriodicRebuild(cfg, trigger)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	watcher, err := newSourceWatcher(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	return watchLoop(ctx, watcher, trigger, server)
}

func newPreviewServer(cfg *config.Config, reg *prom.Registry) *http.Server {
	mux := http.NewServeMux()
	if reg != nil {
		mux.Handle(cfg.Serve.MetricsPath, metrics.HTTPHandler(reg))
	}
	files := http.FileServer(http.Dir(cfg.Output.Directory))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Local preview must never serve stale pages from browser cache.
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Serve.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// newDebouncer coalesces bursts of filesystem events into one rebuild request.
func newDebouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(300*time.Millisecond, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

func startRebuildWorker(ctx context.Context, svc *build.Service, rebuildReq chan struct{}) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				slog.Info("Change detected; rebuilding site")
				if _, err := svc.Run(ctx); err != nil {
					slog.Warn("Rebuild failed", "error", err)
				}
			}
		}
	}()
}

func startPeriodicRebuild(cfg *config.Config, trigger func()) (gocron.Scheduler, error) {
	interval := time.Duration(cfg.Serve.RebuildInterval)
	if interval <= 0 {
		return nil, nil
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(trigger),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}
	scheduler.Start()
	slog.Info("Periodic rebuild scheduled", "interval", interval.String())
	return scheduler, nil
}

func newSourceWatcher(cfg *config.Config) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, dir := range []string{
		cfg.Source.Directory,
		cfg.Source.LayoutsDir,
		cfg.Source.IncludesDir,
		cfg.Source.StaticDir,
	} {
		if dir == "" {
			continue
		}
		if _, statErr := os.Stat(dir); statErr != nil {
			continue
		}
		if err := addDirsRecursive(watcher, dir); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, trigger func(), server *http.Server) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down preview server...")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return server.Shutdown(shutdownCtx)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

func handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	// New subdirectories must be watched too.
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", "path", ev.Name, "op", ev.Op.String())
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("Watch add failed", "dir", path, "error", err)
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	// Editor temp/swap files.
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
