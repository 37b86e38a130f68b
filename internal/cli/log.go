package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the diagnostics logger. User-facing results go to
// CLI.Out, so timestamps ("15:04:05.00") are only shown at debug level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		TimeFormat: "15:04:05.00",
		Level:      level,
		Prefix:     appName,
	})
	l.SetReportTimestamp(level <= log.DebugLevel)
	return l
}

// runTimer measures one render run and logs its outcome keyed by run id.
type runTimer struct {
	logger *log.Logger
	runID  string
	start  time.Time
}

func startRun(l *log.Logger, runID string) *runTimer {
	l.Debug("render started", "run", runID)
	return &runTimer{logger: l, runID: runID, start: time.Now()}
}

// finish logs the written artifacts, e.g. "Rendered 2 artifacts run=… took=1.234s".
func (r *runTimer) finish(paths []string) {
	noun := "artifacts"
	if len(paths) == 1 {
		noun = "artifact"
	}
	r.logger.Info(fmt.Sprintf("Rendered %d %s", len(paths), noun),
		"run", r.runID,
		"took", time.Since(r.start).Round(time.Millisecond))
	for _, p := range paths {
		r.logger.Debug("wrote artifact", "path", p)
	}
}

type loggerKey struct{}

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
