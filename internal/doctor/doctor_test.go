package doctor

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func copyFixture(t *testing.T, dst string) {
	t.Helper()
	data, err := os.ReadFile("../../pkg/manifest/testdata/manifest.json")
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, dst, string(data))
}

func findCheck(t *testing.T, r Report, group, name string) Check {
	t.Helper()
	for _, g := range r.Groups {
		if g.Title != group {
			continue
		}
		for _, c := range g.Checks {
			if c.Name == name {
				return c
			}
		}
	}
	t.Fatalf("check %q/%q not found", group, name)
	return Check{}
}

func TestRunEmptyProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lineage_demo")

	r := Run(Options{
		ProjectDir: dir,
		Manifest:   filepath.Join(dir, "target", "manifest.json"),
		Tools:      []string{},
	})

	if r.OK() {
		t.Fatal("OK() = true for a missing project")
	}
	if c := findCheck(t, r, "dbt Project", "dbt project directory"); c.OK {
		t.Error("project directory reported present")
	}
	if c := findCheck(t, r, "Seed Files", "Seed files"); !c.OK || c.Count != 0 {
		t.Errorf("seed count = %+v, want OK with 0", c)
	}
	for _, g := range r.Groups {
		if g.Title == "Lineage" {
			t.Error("lineage checks ran without a manifest")
		}
	}
}

func TestRunCompleteProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "dbt_project.yml"), "name: healthcare_lineage\n")
	writeFile(t, filepath.Join(dir, "seeds", "raw_patients.csv"), "id\n")
	writeFile(t, filepath.Join(dir, "seeds", "raw_visits.csv"), "id\n")
	writeFile(t, filepath.Join(dir, "seeds", "README.md"), "")
	writeFile(t, filepath.Join(dir, "models", "staging", "stg_patients.sql"), "select 1")
	writeFile(t, filepath.Join(dir, "models", "staging", "stg_visits.sql"), "select 1")
	writeFile(t, filepath.Join(dir, "models", "intermediate", "int_patient_visits.sql"), "select 1")
	writeFile(t, filepath.Join(dir, "models", "marts", "fct_visits.sql"), "select 1")
	writeFile(t, filepath.Join(dir, "dev.duckdb"), "")
	manifest := filepath.Join(dir, "target", "manifest.json")
	copyFixture(t, manifest)

	out := t.TempDir()
	png := filepath.Join(out, "data_lineage.png")
	writeFile(t, png, "png")

	r := Run(Options{
		ProjectDir: dir,
		Manifest:   manifest,
		Outputs:    []string{png},
		Tools:      []string{},
	})

	if !r.OK() {
		t.Fatalf("OK() = false, failed = %d: %+v", r.Failed, r.Groups)
	}
	if r.Seeds != 2 {
		t.Errorf("Seeds = %d, want 2", r.Seeds)
	}
	if r.Models != 4 {
		t.Errorf("Models = %d, want 4", r.Models)
	}

	parsed := findCheck(t, r, "Lineage", "Manifest parses")
	if parsed.Count != 6 {
		t.Errorf("entities = %d, want 6", parsed.Count)
	}
	if parsed.Detail == "" {
		t.Error("dangling reference not reported")
	}
	if c := findCheck(t, r, "Lineage", "Lineage is acyclic"); !c.OK || c.Count != 5 {
		t.Errorf("acyclic = %+v, want OK with 5 edges", c)
	}
}

func TestRunMissingOutput(t *testing.T) {
	dir := t.TempDir()
	r := Run(Options{
		ProjectDir: dir,
		Manifest:   filepath.Join(dir, "target", "manifest.json"),
		Outputs:    []string{filepath.Join(dir, "lineage_interactive.html")},
		Tools:      []string{},
	})
	if c := findCheck(t, r, "Generated Visualizations", "Visualization"); c.OK {
		t.Error("missing HTML reported present")
	}
}

func TestRunInvalidManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "target", "manifest.json")
	writeFile(t, manifest, "{not json")

	r := Run(Options{ProjectDir: dir, Manifest: manifest, Tools: []string{}})

	c := findCheck(t, r, "Lineage", "Manifest parses")
	if c.OK || c.Detail == "" {
		t.Errorf("invalid manifest = %+v, want failure with detail", c)
	}
}

func TestCountsAreInformational(t *testing.T) {
	r := Run(Options{ProjectDir: t.TempDir(), Tools: []string{}})
	for _, g := range r.Groups {
		for _, c := range g.Checks {
			if c.Kind == KindCount && !c.OK {
				t.Errorf("count check %q failed", c.Name)
			}
		}
	}
}

func TestToolCheck(t *testing.T) {
	c := toolCheck("dbtlineage-no-such-tool")
	if c.OK || c.Detail == "" {
		t.Errorf("toolCheck = %+v, want a failure with detail", c)
	}
}
