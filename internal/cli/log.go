package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Wrote 24 frames (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Hooks
// =============================================================================

// logHooks reports pipeline, cache and HTTP events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnLoadStart(_ context.Context, dir string) {
	h.logger.Debug("load started", "dir", dir)
}

func (h *logHooks) OnLoadComplete(_ context.Context, dir string, frames int, d time.Duration, err error) {
	h.logger.Debug("load finished", "dir", dir, "frames", frames, "duration", d, "error", err)
}

func (h *logHooks) OnRenderStart(_ context.Context, frames int) {
	h.logger.Debug("render started", "frames", frames)
}

func (h *logHooks) OnRenderComplete(_ context.Context, frames, points int, d time.Duration, err error) {
	h.logger.Debug("render finished", "frames", frames, "points", points, "duration", d, "error", err)
}

func (h *logHooks) OnEncodeStart(_ context.Context, frames int) {
	h.logger.Debug("encode started", "frames", frames)
}

func (h *logHooks) OnEncodeComplete(_ context.Context, frames, size int, d time.Duration, err error) {
	h.logger.Debug("encode finished", "frames", frames, "bytes", size, "duration", d, "error", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path, requestID string) {
	h.logger.Debug("request", "method", method, "path", path, "request_id", requestID)
}

func (h *logHooks) OnResponse(_ context.Context, method, path, requestID string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "request_id", requestID, "status", status, "duration", d)
}
