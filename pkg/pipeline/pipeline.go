// Package pipeline runs the load → layout → render pass over a dbt manifest.
//
// The CLI commands and the preview server share this package so that a
// manifest is read, extracted and drawn the same way everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read the manifest and extract the lineage graph
//  2. Layout: assign layers and positions for the selected profile
//  3. Render: produce artifacts (PNG, HTML, SVG, DOT, JSON)
//
// Each stage can be run on its own. The graph is rebuilt from disk on every
// run; nothing is cached between runs.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Manifest: "lineage_demo/target/manifest.json",
//	    Profile:  "basic",
//	    Formats:  []string{"png", "html"},
//	})
//	if err != nil {
//	    return err
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultDPI matches the resolution the lineage plots have always been
	// saved at.
	DefaultDPI = 300

	// DefaultProfile is used when Options.Profile is empty.
	DefaultProfile = layout.Basic
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatHTML: true,
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// DefaultFormats are rendered when Options.Formats is empty: the static
// plot and the interactive page.
var DefaultFormats = []string{FormatPNG, FormatHTML}

// FormatNames returns the supported formats in a stable order for help text.
func FormatNames() []string {
	return []string{FormatPNG, FormatHTML, FormatSVG, FormatDOT, FormatJSON}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	Manifest string `json:"manifest"`

	// Layout options
	Profile string `json:"profile,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	DPI      int      `json:"dpi,omitempty"`
	Title    string   `json:"title,omitempty"`
	Ranked   bool     `json:"ranked,omitempty"`   // let Graphviz rank the SVG instead of pinning layout positions
	Detailed bool     `json:"detailed,omitempty"` // include kind and layer in SVG/DOT labels

	// Runtime options (not serialized)
	RunID       string      `json:"-"`
	GeneratedAt time.Time   `json:"-"`
	Logger      *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Manifest is the parsed manifest.
	Manifest *manifest.Manifest

	// Graph is the extracted lineage graph.
	Graph *lineage.Graph

	// Report lists references that were dropped during extraction.
	Report lineage.Report

	// Layout holds layers and positions for every entity.
	Layout layout.Layout

	// Summary describes the graph for the reporter.
	Summary lineage.Summary

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Artifact returns the rendered output for format. A requested format with
// no artifact is an INTERNAL_ERROR.
func (r *Result) Artifact(format string) ([]byte, error) {
	data, ok := r.Artifacts[format]
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "no %s artifact was rendered", format)
	}
	return data, nil
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateProfile checks that a profile name is known.
func ValidateProfile(name string) error {
	_, err := layout.LookupProfile(name)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.Manifest == "" {
		o.Manifest = manifest.DefaultPath
	}
	o.setLogger()
	return nil
}

// ValidateForLayout normalizes the profile name and checks that it exists.
func (o *Options) ValidateForLayout() error {
	o.Profile = strings.ToLower(strings.TrimSpace(o.Profile))
	if o.Profile == "" {
		o.Profile = DefaultProfile
	}
	o.setLogger()
	return ValidateProfile(o.Profile)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = append([]string(nil), DefaultFormats...)
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.DPI < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "dpi must be positive, got %d", o.DPI)
	}
	return ValidateFormats(o.Formats)
}

// Wants reports whether format is among the requested formats.
func (o *Options) Wants(format string) bool {
	return slices.Contains(o.Formats, format)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// String describes the options for debug logs.
func (o Options) String() string {
	return fmt.Sprintf("manifest=%s profile=%s formats=%v dpi=%d", o.Manifest, o.Profile, o.Formats, o.DPI)
}
