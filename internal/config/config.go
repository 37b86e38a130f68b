// Package config loads dbtlineage settings from defaults, a config file,
// DBTLINEAGE_ environment variables and command-line flags.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
//
// A config file is either dbtlineage.toml or dbtlineage.yaml (.yml) in the
// working directory, or any file passed with --config:
//
//	profile = "advanced"
//	project_dir = "lineage_advanced"
//
//	[render]
//	formats = ["png", "html", "svg"]
//	dpi = 150
//
//	[serve]
//	addr = ":9000"
//
// Nested keys are set from the environment with a double underscore, for
// example DBTLINEAGE_RENDER__DPI=150.
package config

import (
	"path/filepath"

	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
	"github.com/matzehuels/dbtlineage/pkg/pipeline"
)

// Default file names written to Output.Dir.
const (
	DefaultHTMLFile = "lineage_interactive.html"
	DefaultSVGFile  = "lineage.svg"
	DefaultDOTFile  = "lineage.dot"
	DefaultJSONFile = "lineage.json"
)

// DefaultAddr is where serve listens unless configured otherwise.
const DefaultAddr = "127.0.0.1:8080"

// Config holds all CLI configuration options.
type Config struct {
	ProjectDir string       `koanf:"project_dir"`
	Manifest   string       `koanf:"manifest"`
	Profile    string       `koanf:"profile"`
	Title      string       `koanf:"title"`
	Strict     bool         `koanf:"strict"`
	Verbose    bool         `koanf:"verbose"`
	Output     OutputConfig `koanf:"output"`
	Render     RenderConfig `koanf:"render"`
	Serve      ServeConfig  `koanf:"serve"`

	// ManifestFromFlag is set when --manifest was given on the command line,
	// in which case it is relative to the working directory, not ProjectDir.
	ManifestFromFlag bool `koanf:"-"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// OutputConfig names the artifact files. Empty names fall back to the
// per-profile or package defaults.
type OutputConfig struct {
	Dir  string `koanf:"dir"`
	PNG  string `koanf:"png"`
	HTML string `koanf:"html"`
	SVG  string `koanf:"svg"`
	DOT  string `koanf:"dot"`
	JSON string `koanf:"json"`
}

// RenderConfig controls which artifacts are drawn and how.
type RenderConfig struct {
	Formats  []string `koanf:"formats"`
	DPI      int      `koanf:"dpi"`
	Ranked   bool     `koanf:"ranked"`
	Detailed bool     `koanf:"detailed"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// DefaultProjectDir returns the dbt project directory conventionally used
// with a profile.
func DefaultProjectDir(profile string) string {
	if profile == layout.Advanced {
		return "lineage_advanced"
	}
	return "lineage_demo"
}

// defaults returns the lowest-precedence layer of configuration.
func defaults() map[string]any {
	return map[string]any{
		"project_dir":     "",
		"manifest":        manifest.DefaultPath,
		"profile":         layout.Basic,
		"title":           "",
		"strict":          false,
		"verbose":         false,
		"output.dir":      ".",
		"render.formats":  pipeline.DefaultFormats,
		"render.dpi":      pipeline.DefaultDPI,
		"render.ranked":   false,
		"render.detailed": false,
		"serve.addr":      DefaultAddr,
	}
}

// ManifestPath returns the manifest location. Relative manifest paths from
// files, env or defaults are taken relative to ProjectDir.
func (c *Config) ManifestPath() string {
	if c.ManifestFromFlag || filepath.IsAbs(c.Manifest) {
		return c.Manifest
	}
	return filepath.Join(c.ProjectDir, c.Manifest)
}

// OutputPath returns where the artifact for format is written.
func (c *Config) OutputPath(format string) string {
	var name string
	switch format {
	case pipeline.FormatPNG:
		name = c.Output.PNG
		if name == "" {
			name = layout.MustProfile(c.Profile).DefaultPNG
		}
	case pipeline.FormatHTML:
		name = orDefault(c.Output.HTML, DefaultHTMLFile)
	case pipeline.FormatSVG:
		name = orDefault(c.Output.SVG, DefaultSVGFile)
	case pipeline.FormatDOT:
		name = orDefault(c.Output.DOT, DefaultDOTFile)
	case pipeline.FormatJSON:
		name = orDefault(c.Output.JSON, DefaultJSONFile)
	default:
		name = "lineage." + format
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}

// PipelineOptions converts the configuration to pipeline options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Manifest: c.ManifestPath(),
		Profile:  c.Profile,
		Formats:  append([]string(nil), c.Render.Formats...),
		DPI:      c.Render.DPI,
		Title:    c.Title,
		Ranked:   c.Render.Ranked,
		Detailed: c.Render.Detailed,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
