package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/observability"
)

var fixture = filepath.Join("..", "manifest", "testdata", "manifest.json")

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"html", false},
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"pdf", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"png", "html"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"png", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		profile string
		wantErr bool
	}{
		{"basic", false},
		{"advanced", false},
		{"Advanced", false},
		{"", false},
		{"fancy", true},
	}

	for _, tt := range tests {
		err := ValidateProfile(tt.profile)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateProfile(%q) error = %v, wantErr %v", tt.profile, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	require.NoError(t, opts.ValidateAndSetDefaults())

	assert.Equal(t, "target/manifest.json", opts.Manifest)
	assert.Equal(t, layout.Basic, opts.Profile)
	assert.Equal(t, []string{FormatPNG, FormatHTML}, opts.Formats)
	assert.Equal(t, DefaultDPI, opts.DPI)
	assert.False(t, opts.GeneratedAt.IsZero())
	assert.NotNil(t, opts.Logger)

	// Defaults are copied, not shared.
	opts.Formats[0] = FormatDOT
	assert.Equal(t, FormatPNG, DefaultFormats[0])
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown profile", Options{Profile: "fancy"}, errors.ErrCodeInvalidProfile},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative dpi", Options{DPI: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "code = %s", errors.GetCode(err))
		})
	}
}

func TestOptionsProfileNormalized(t *testing.T) {
	opts := Options{Profile: "  ADVANCED "}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, layout.Advanced, opts.Profile)
}

func TestWants(t *testing.T) {
	opts := Options{Formats: []string{FormatHTML, FormatDOT}}
	assert.True(t, opts.Wants(FormatDOT))
	assert.False(t, opts.Wants(FormatPNG))
}

func TestExecute(t *testing.T) {
	var logs bytes.Buffer
	runner := NewRunner(log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel}))

	result, err := runner.Execute(context.Background(), Options{
		Manifest:    fixture,
		Formats:     []string{FormatPNG, FormatHTML, FormatDOT, FormatJSON},
		DPI:         20,
		RunID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Stats.NodeCount)
	assert.Equal(t, 5, result.Stats.EdgeCount)
	assert.Equal(t, "healthcare_lineage", result.Manifest.ProjectName)
	assert.Equal(t, 6, result.Summary.Nodes)
	assert.Len(t, result.Layout.Positions, 6)
	assert.Equal(t, []lineage.DanglingRef{{Child: "model.healthcare_lineage.int_patient_visits", Parent: "macro.dbt.is_incremental"}}, result.Report.Dangling)

	require.Len(t, result.Artifacts, 4)
	assert.True(t, bytes.HasPrefix(result.Artifacts[FormatPNG], []byte("\x89PNG")))
	assert.Contains(t, string(result.Artifacts[FormatHTML]), "vis-network")
	assert.Contains(t, string(result.Artifacts[FormatHTML]), "0f8fad5b")
	assert.True(t, strings.HasPrefix(string(result.Artifacts[FormatDOT]), "digraph lineage"))
	assert.Contains(t, string(result.Artifacts[FormatJSON]), `"project": "healthcare_lineage"`)

	assert.Contains(t, logs.String(), "dropped dependency on unknown entity")
	assert.Contains(t, logs.String(), "loaded lineage")
}

func TestExecuteMissingManifest(t *testing.T) {
	runner := NewRunner(log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
	path := filepath.Join(t.TempDir(), "target", "manifest.json")

	_, err := runner.Execute(context.Background(), Options{Manifest: path})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
	assert.Contains(t, err.Error(), path)
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
	_, err := runner.Execute(ctx, Options{Manifest: fixture, Formats: []string{FormatDOT}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerStages(t *testing.T) {
	runner := NewRunner(log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
	ctx := context.Background()
	opts := Options{Manifest: fixture, Profile: layout.Advanced}

	_, g, _, err := runner.Load(ctx, opts)
	require.NoError(t, err)

	l, err := runner.Layout(ctx, g, opts)
	require.NoError(t, err)
	assert.Equal(t, layout.Advanced, l.Profile.Name)

	// Snapshots get their own column only in the advanced profile.
	assert.Equal(t, layout.LayerSnapshots, l.Layers["snapshot.healthcare_lineage.snap_patients"])

	artifacts, err := runner.Render(ctx, g, l, Options{Formats: []string{FormatDOT}})
	require.NoError(t, err)
	assert.Contains(t, string(artifacts[FormatDOT]), "Advanced Healthcare Data Lineage")
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
	nodes  int
}

func (h *recordingHooks) OnLoadStart(context.Context, string) { h.events = append(h.events, "load") }
func (h *recordingHooks) OnLoadComplete(_ context.Context, _ string, nodes, _ int, _ time.Duration, _ error) {
	h.nodes = nodes
	h.events = append(h.events, "load done")
}
func (h *recordingHooks) OnLayoutStart(context.Context, string, int) {
	h.events = append(h.events, "layout")
}
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.events = append(h.events, "render done")
}

func TestExecuteReportsStages(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	_, err := NewRunner(nil).Execute(context.Background(), Options{
		Manifest: fixture,
		Formats:  []string{FormatJSON},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"load", "load done", "layout", "render done"}, hooks.events)
	assert.Equal(t, 6, hooks.nodes)
}

func TestResultArtifact(t *testing.T) {
	r := &Result{Artifacts: map[string][]byte{FormatDOT: []byte("digraph {}")}}

	data, err := r.Artifact(FormatDOT)
	require.NoError(t, err)
	assert.Equal(t, "digraph {}", string(data))

	_, err = r.Artifact(FormatPNG)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInternal))
}
