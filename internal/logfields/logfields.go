package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyLayout     = "layout"
	KeyInclude    = "include"
	KeyCategory   = "category"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPages      = "pages"
	KeyFailures   = "failures"
	KeyOutput     = "output"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Layout(l string) slog.Attr        { return slog.String(KeyLayout, l) }
func Include(i string) slog.Attr       { return slog.String(KeyInclude, i) }
func Category(c string) slog.Attr      { return slog.String(KeyCategory, c) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Pages(n int) slog.Attr            { return slog.Int(KeyPages, n) }
func Failures(n int) slog.Attr         { return slog.Int(KeyFailures, n) }
func Output(dir string) slog.Attr      { return slog.String(KeyOutput, dir) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
