package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
)

func newTestListModel(t *testing.T) EntityListModel {
	t.Helper()
	m, err := manifest.Load("../../pkg/manifest/testdata/manifest.json")
	if err != nil {
		t.Fatal(err)
	}
	g := lineage.Extract(m)
	return NewEntityListModel(g, layout.Compute(g, layout.MustProfile(layout.Basic)))
}

func press(m EntityListModel, keys ...tea.KeyMsg) (EntityListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(EntityListModel)
	}
	return m, cmd
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyJ     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	keyK     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	keyQ     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func TestEntityListOrder(t *testing.T) {
	m := newTestListModel(t)

	var names []string
	for _, r := range m.Rows {
		names = append(names, r.Entity.Name)
	}
	want := []string{"raw_patients", "stg_patients", "int_patient_visits", "snap_patients", "visits", "fct_visits"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("rows = %v, want %v", names, want)
	}
	if m.Title != "Data Lineage Visualization" {
		t.Errorf("Title = %q", m.Title)
	}
}

func TestEntityListNavigation(t *testing.T) {
	tests := []struct {
		name       string
		keys       []tea.KeyMsg
		wantCursor int
	}{
		{"up at top stays", []tea.KeyMsg{keyUp}, 0},
		{"down", []tea.KeyMsg{keyDown}, 1},
		{"j and k", []tea.KeyMsg{keyJ, keyJ, keyK}, 1},
		{"down stops at end", []tea.KeyMsg{keyDown, keyDown, keyDown, keyDown, keyDown, keyDown, keyDown}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := press(newTestListModel(t), tt.keys...)
			if m.Cursor != tt.wantCursor {
				t.Errorf("Cursor = %d, want %d", m.Cursor, tt.wantCursor)
			}
		})
	}
}

func TestEntityListScrolls(t *testing.T) {
	m := newTestListModel(t)
	m.Height = 2

	m, _ = press(m, keyDown, keyDown, keyDown)
	if m.Offset != 2 {
		t.Errorf("Offset = %d, want 2", m.Offset)
	}
	m, _ = press(m, keyUp, keyUp, keyUp)
	if m.Offset != 0 {
		t.Errorf("Offset = %d after scrolling back, want 0", m.Offset)
	}
}

func TestEntityListDetails(t *testing.T) {
	m, _ := press(newTestListModel(t), keyDown, keyEnter)
	if !m.Details {
		t.Fatal("enter should open details")
	}

	view := m.View()
	for _, want := range []string{
		"model.healthcare_lineage.stg_patients",
		"Staging",
		"raw_patients",
		"int_patient_visits, snap_patients",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m, _ = press(m, keyEnter)
	if m.Details {
		t.Error("second enter should close details")
	}
}

func TestEntityListQuit(t *testing.T) {
	_, cmd := press(newTestListModel(t), keyQ)
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestEntityListWindowSize(t *testing.T) {
	next, _ := newTestListModel(t).Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if h := next.(EntityListModel).Height; h != 5 {
		t.Errorf("Height = %d, want the minimum 5", h)
	}
}

func TestEntityListEmpty(t *testing.T) {
	m := EntityListModel{Title: "Empty", Height: defaultListHeight}
	if !strings.Contains(m.View(), "no entities") {
		t.Error("empty list should say so")
	}
	m, _ = press(m, keyDown, keyEnter)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor)
	}
}
