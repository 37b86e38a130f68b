package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dbtlineage/internal/config"
	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/observability"
	"github.com/matzehuels/dbtlineage/pkg/pipeline"
	"github.com/matzehuels/dbtlineage/pkg/render/plot"
)

const shutdownTimeout = 5 * time.Second

// serveCommand serves the lineage over HTTP, rebuilding it from the
// manifest on every request so a fresh 'dbt docs generate' shows up on
// reload.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive lineage over HTTP",
		Long: `Serve the lineage graph on a local HTTP server.

Routes:
  /              interactive HTML page
  /lineage.png   layered plot
  /lineage.svg   Graphviz SVG
  /graph.json    nodes, edges and positions
  /healthz       liveness probe

The manifest is read again on every request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default "+config.DefaultAddr+")")
	cmd.Flags().Bool("ranked", false, "let Graphviz rank the SVG instead of pinning layer positions")
	cmd.Flags().Bool("detailed", false, "include type and layer in SVG labels")

	return cmd
}

// runServe listens on cfg.Serve.Addr until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	ln, err := net.Listen("tcp", cfg.Serve.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Serve.Addr, err)
	}

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler: c.newHandler(cfg),
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSuccess(c.Out, "Serving lineage for %s", cfg.ManifestPath())
	printInfo(c.Out, "Open in your browser: %s", StyleLink.Render("http://"+ln.Addr().String()))
	c.Logger.Info("starting server", "addr", ln.Addr().String())

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		c.Logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	c.Logger.Info("server stopped")
	return nil
}

// lineageHandler rebuilds artifacts from the manifest per request.
type lineageHandler struct {
	cfg    *config.Config
	runner *pipeline.Runner
	logger *log.Logger
}

// newHandler returns the HTTP routes for cfg.
func (c *CLI) newHandler(cfg *config.Config) http.Handler {
	h := &lineageHandler{cfg: cfg, runner: c.newRunner(), logger: c.Logger}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		requestHooks,
		middleware.Recoverer,
	)

	r.Get("/", h.artifact(pipeline.FormatHTML, "text/html; charset=utf-8"))
	r.Get("/lineage.png", h.artifact(pipeline.FormatPNG, "image/png"))
	r.Get("/lineage.svg", h.artifact(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/graph.json", h.artifact(pipeline.FormatJSON, "application/json"))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	return r
}

// artifact serves one rendered format.
func (h *lineageHandler) artifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h.build(r.Context(), format)
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				h.logger.Error("build failed", "format", format, "error", err)
			}
			http.Error(w, errorText(err), status)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(data)
	}
}

func (h *lineageHandler) build(ctx context.Context, format string) ([]byte, error) {
	opts := h.cfg.PipelineOptions()
	opts.Formats = []string{format}
	opts.DPI = plot.DefaultDPI
	opts.RunID = uuid.NewString()
	if id := middleware.GetReqID(ctx); id != "" {
		opts.RunID = id
	}

	result, err := h.runner.Execute(ctx, opts)
	if err != nil {
		return nil, err
	}
	return result.Artifact(format)
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidManifest:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidProfile:
		return http.StatusBadRequest
	case errors.ErrCodeInternal:
		return http.StatusInternalServerError
	}
	if stderrors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// errorText is the response body for err. A missing manifest gets the same
// message and hint the CLI prints.
func errorText(err error) string {
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		msg := "Error: Manifest file not found at " + missingPath(err)
		if hint := missingHint(err); hint != "" {
			msg += "\n" + hint
		}
		return msg
	}
	return "Error: " + errors.UserMessage(err)
}

// requestHooks reports each request to the server hooks.
func requestHooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
