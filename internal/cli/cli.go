// Package cli implements the dbtlineage command-line interface.
package cli

import (
	stderrors "errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dbtlineage/internal/config"
	"github.com/matzehuels/dbtlineage/pkg/buildinfo"
	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "dbtlineage"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// ErrAborted is returned after a command has already told the user why it
// stopped. The caller should exit non-zero without printing it again.
var ErrAborted = stderrors.New("aborted")

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives user-facing results. Logs go to the logger's writer.
	Out io.Writer

	cfgFile string
}

// New creates a new CLI instance with a default logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level. Timestamps follow debug logging.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportTimestamp(level <= log.DebugLevel)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "dbtlineage visualizes dbt data lineage",
		Long: `dbtlineage reads the manifest.json written by 'dbt docs generate', builds the
dependency graph between seeds, sources, models and snapshots, and draws it
as a layered PNG, an interactive HTML page, or Graphviz SVG/DOT.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default: dbtlineage.toml or dbtlineage.yaml in the working directory)")
	pf.String("project-dir", "", "dbt project directory (default: lineage_demo, or lineage_advanced for the advanced profile)")
	pf.String("manifest", "", "manifest path (default: <project-dir>/target/manifest.json)")
	pf.String("profile", layout.Basic, "visual profile: basic, advanced")
	pf.Bool("strict", false, "exit with status 1 when the manifest is missing")

	_ = root.RegisterFlagCompletionFunc("profile", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return layout.ProfileNames(), cobra.ShellCompDirectiveNoFileComp
	})

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.summaryCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Helpers
// =============================================================================

// loadConfig resolves configuration for cmd from file, env and its flags.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	c.Logger.Debug("resolved settings", "profile", cfg.Profile, "manifest", cfg.ManifestPath())
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// handleLoadError turns a missing manifest into the actionable message users
// expect and decides the exit status. Other errors are returned unchanged.
//
// A missing manifest ends the command successfully unless strict is set.
func (c *CLI) handleLoadError(err error, strict bool) error {
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		return err
	}

	path := missingPath(err)
	printError(c.Out, "Error: Manifest file not found at %s", path)
	hint := missingHint(err)
	if hint != "" {
		printDetail(c.Out, "%s", hint)
	}
	if strict {
		return ErrAborted
	}
	return nil
}

// missingPath extracts the checked path from a FILE_NOT_FOUND error.
func missingPath(err error) string {
	var mf *errors.MissingFileError
	if stderrors.As(err, &mf) {
		return mf.Path
	}
	return errors.UserMessage(err)
}

func missingHint(err error) string {
	var mf *errors.MissingFileError
	if stderrors.As(err, &mf) {
		return mf.Hint
	}
	return ""
}
