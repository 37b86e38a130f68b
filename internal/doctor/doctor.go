// Package doctor verifies that a dbt project is ready for lineage rendering.
//
// Checks are grouped the way a user sets a project up: the dbt project
// itself, seed files, models per layer, the warehouse file, the artifacts
// written by 'dbt docs generate', the rendered visualizations and the
// tools on PATH. A missing item is reported, never fatal.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
)

// Kind tells how a check is evaluated.
type Kind string

const (
	KindFile  Kind = "file"
	KindDir   Kind = "dir"
	KindCount Kind = "count" // informational file count, always passes
	KindTool  Kind = "tool"
	KindGraph Kind = "graph"
)

// Check is one verified item.
type Check struct {
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Kind   Kind   `json:"kind"`
	OK     bool   `json:"ok"`
	Count  int    `json:"count,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Group is a titled set of checks.
type Group struct {
	Title  string  `json:"title"`
	Checks []Check `json:"checks"`
}

// Report is the outcome of [Run].
type Report struct {
	Groups []Group `json:"groups"`
	Passed int     `json:"passed"`
	Failed int     `json:"failed"`
	Seeds  int     `json:"seeds"`
	Models int     `json:"models"`
}

// OK reports whether every check passed.
func (r Report) OK() bool { return r.Failed == 0 }

// Options locate the project and its outputs.
type Options struct {
	ProjectDir string
	Manifest   string   // full path to manifest.json
	Outputs    []string // rendered artifacts to look for
	Tools      []string // executables expected on PATH
}

// ModelLayers are the model subdirectories counted by [Run], in order.
var ModelLayers = []struct{ Dir, Title string }{
	{"staging", "Staging layer"},
	{"intermediate", "Intermediate layer"},
	{"marts", "Marts layer"},
}

// DefaultTools are looked up on PATH.
var DefaultTools = []string{"dbt"}

// Run performs every check. It only reads the filesystem.
func Run(opts Options) Report {
	if opts.Tools == nil {
		opts.Tools = DefaultTools
	}
	dir := opts.ProjectDir
	var r Report

	r.add(Group{Title: "dbt Project", Checks: []Check{
		dirCheck("dbt project directory", dir),
		fileCheck("dbt config", filepath.Join(dir, "dbt_project.yml")),
		dirCheck("Models directory", filepath.Join(dir, "models")),
		dirCheck("Seeds directory", filepath.Join(dir, "seeds")),
	}})

	seeds := countCheck("Seed files", filepath.Join(dir, "seeds"), "*.csv")
	r.Seeds = seeds.Count
	r.add(Group{Title: "Seed Files", Checks: []Check{seeds}})

	var models []Check
	for _, layer := range ModelLayers {
		c := countCheck(layer.Title, filepath.Join(dir, "models", layer.Dir), "*.sql")
		r.Models += c.Count
		models = append(models, c)
	}
	r.add(Group{Title: "dbt Models", Checks: models})

	r.add(Group{Title: "Database", Checks: []Check{
		fileCheck("DuckDB database", filepath.Join(dir, "dev.duckdb")),
	}})

	artifacts := []Check{
		dirCheck("Target directory", filepath.Join(dir, "target")),
		fileCheck("Manifest (lineage metadata)", opts.Manifest),
	}
	r.add(Group{Title: "dbt Artifacts", Checks: artifacts})
	if artifacts[1].OK {
		r.add(Group{Title: "Lineage", Checks: graphChecks(opts.Manifest)})
	}

	var outputs []Check
	for _, path := range opts.Outputs {
		outputs = append(outputs, fileCheck("Visualization", path))
	}
	if len(outputs) > 0 {
		r.add(Group{Title: "Generated Visualizations", Checks: outputs})
	}

	var tools []Check
	for _, name := range opts.Tools {
		tools = append(tools, toolCheck(name))
	}
	if len(tools) > 0 {
		r.add(Group{Title: "Tools", Checks: tools})
	}

	return r
}

func (r *Report) add(g Group) {
	for _, c := range g.Checks {
		if c.OK {
			r.Passed++
		} else {
			r.Failed++
		}
	}
	r.Groups = append(r.Groups, g)
}

func fileCheck(name, path string) Check {
	info, err := os.Stat(path)
	return Check{Name: name, Path: path, Kind: KindFile, OK: err == nil && !info.IsDir()}
}

func dirCheck(name, path string) Check {
	info, err := os.Stat(path)
	return Check{Name: name, Path: path, Kind: KindDir, OK: err == nil && info.IsDir()}
}

func countCheck(name, dir, pattern string) Check {
	matches, _ := filepath.Glob(filepath.Join(dir, pattern))
	return Check{Name: name, Path: dir, Kind: KindCount, OK: true, Count: len(matches)}
}

func toolCheck(name string) Check {
	path, err := exec.LookPath(name)
	c := Check{Name: name, Kind: KindTool, OK: err == nil, Path: path}
	if err != nil {
		c.Detail = "not found on PATH"
	}
	return c
}

// graphChecks parses the manifest and checks the lineage graph for cycles.
func graphChecks(path string) []Check {
	m, err := manifest.Load(path)
	if err != nil {
		return []Check{{Name: "Manifest parses", Path: path, Kind: KindGraph, Detail: err.Error()}}
	}
	g, report := lineage.ExtractWithReport(m)

	parsed := Check{Name: "Manifest parses", Path: path, Kind: KindGraph, OK: true, Count: g.NodeCount()}
	if n := len(report.Dangling); n > 0 {
		parsed.Detail = pluralize(n, "reference") + " to entities outside the manifest"
	}

	acyclic := Check{Name: "Lineage is acyclic", Kind: KindGraph, OK: true, Count: g.EdgeCount()}
	if err := g.DAG().Validate(); err != nil {
		acyclic.OK = false
		acyclic.Detail = err.Error()
	}
	return []Check{parsed, acyclic}
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
