package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dbtlineage/pkg/observability"
)

// logHooks reports pipeline stages to the debug log and served requests
// to the info log.
type logHooks struct {
	logger *log.Logger
}

// RegisterHooks installs hooks that log pipeline stages and served requests.
func (c *CLI) RegisterHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetServerHooks(h)
}

func (h *logHooks) OnLoadStart(_ context.Context, manifest string) {
	h.logger.Debug("load started", "manifest", manifest)
}

func (h *logHooks) OnLoadComplete(_ context.Context, manifest string, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "manifest", manifest, "error", err)
		return
	}
	h.logger.Debug("load finished", "nodes", nodes, "edges", edges, "duration", d)
}

func (h *logHooks) OnLayoutStart(_ context.Context, profile string, nodes int) {
	h.logger.Debug("layout started", "profile", profile, "nodes", nodes)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, profile string, d time.Duration, err error) {
	h.logger.Debug("layout finished", "profile", profile, "duration", d, "error", err)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "error", err)
		return
	}
	h.logger.Debug("render finished", "formats", formats, "duration", d)
}

func (h *logHooks) OnRequest(ctx context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("request",
		"method", method,
		"path", path,
		"status", status,
		"duration", d.Round(time.Millisecond),
		"id", middleware.GetReqID(ctx))
}
