package layout

import (
	"slices"
	"strings"

	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
)

// Layer indices produced by [Layer].
const (
	LayerRaw          = 0
	LayerStaging      = 1
	LayerIntermediate = 2
	LayerMarts        = 3
	LayerSnapshots    = 4
)

// LegendEntry is one swatch of the static image legend.
type LegendEntry struct {
	Label string
	Kind  lineage.Kind
}

// Profile bundles the spacing, naming and styling of one visual variant.
type Profile struct {
	Name  string
	Title string

	// Snapshots enables the snap_ prefix. Without it snapshots fall into
	// the default layer.
	Snapshots bool

	HSpacing    float64 // distance between layers
	VSpacing    float64 // distance between nodes of a layer
	LabelOffset float64 // layer labels sit this far above the highest node

	LayerNames map[int]string

	// Static image, in matplotlib units: figure inches, node area in pt²,
	// everything else in pt.
	FigWidth       float64
	FigHeight      float64
	NodeSize       float64
	FontSize       float64
	EdgeWidth      float64
	ArrowSize      float64
	LegendFontSize float64
	LayerFontSize  float64
	TitleFontSize  float64

	Palette      map[lineage.Kind]string
	DefaultColor string
	Legend       []LegendEntry

	SummaryTitle string
	RuleWidth    int
	RootsLabel   string

	DefaultPNG string
}

// Profile names.
const (
	Basic    = "basic"
	Advanced = "advanced"
)

// DefaultColor is used for kinds missing from a palette.
const DefaultColor = "#D3D3D3"

var profiles = map[string]Profile{
	Basic: {
		Name:        Basic,
		Title:       "Data Lineage Visualization",
		HSpacing:    3,
		VSpacing:    1.5,
		LabelOffset: 2,
		LayerNames: map[int]string{
			LayerRaw:          "Raw Data",
			LayerStaging:      "Staging",
			LayerIntermediate: "Intermediate",
			LayerMarts:        "Marts",
		},
		FigWidth:       20,
		FigHeight:      12,
		NodeSize:       3000,
		FontSize:       8,
		EdgeWidth:      2,
		ArrowSize:      20,
		LegendFontSize: 10,
		LayerFontSize:  14,
		TitleFontSize:  20,
		Palette: map[lineage.Kind]string{
			lineage.KindSeed:     "#90EE90",
			lineage.KindModel:    "#87CEEB",
			lineage.KindSource:   "#FFD700",
			lineage.KindSnapshot: "#FFA07A",
			lineage.KindTest:     "#DDA0DD",
		},
		DefaultColor: DefaultColor,
		Legend: []LegendEntry{
			{"Seeds", lineage.KindSeed},
			{"Models", lineage.KindModel},
			{"Sources", lineage.KindSource},
		},
		SummaryTitle: "DATA LINEAGE SUMMARY",
		RuleWidth:    60,
		RootsLabel:   "Root nodes (sources)",
		DefaultPNG:   "data_lineage.png",
	},
	Advanced: {
		Name:        Advanced,
		Title:       "Advanced Healthcare Data Lineage",
		Snapshots:   true,
		HSpacing:    4,
		VSpacing:    1.2,
		LabelOffset: 1.5,
		LayerNames: map[int]string{
			LayerRaw:          "Sources",
			LayerStaging:      "Staging",
			LayerIntermediate: "Intermediate",
			LayerMarts:        "Marts",
			LayerSnapshots:    "Snapshots",
		},
		FigWidth:       24,
		FigHeight:      16,
		NodeSize:       2500,
		FontSize:       7,
		EdgeWidth:      1.5,
		ArrowSize:      15,
		LegendFontSize: 12,
		LayerFontSize:  16,
		TitleFontSize:  22,
		Palette: map[lineage.Kind]string{
			lineage.KindSeed:     "#90EE90",
			lineage.KindModel:    "#87CEEB",
			lineage.KindSource:   "#FFD700",
			lineage.KindSnapshot: "#FF69B4",
		},
		DefaultColor: DefaultColor,
		Legend: []LegendEntry{
			{"Sources", lineage.KindSource},
			{"Seeds", lineage.KindSeed},
			{"Models", lineage.KindModel},
			{"Snapshots", lineage.KindSnapshot},
		},
		SummaryTitle: "ADVANCED HEALTHCARE DATA LINEAGE SUMMARY",
		RuleWidth:    70,
		RootsLabel:   "Root nodes (sources/seeds)",
		DefaultPNG:   "data_lineage_advanced.png",
	},
}

// ProfileNames returns the known profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupProfile returns the named profile. Names are case-insensitive and
// the empty name selects [Basic].
func LookupProfile(name string) (Profile, error) {
	if name == "" {
		name = Basic
	}
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Profile{}, errors.New(errors.ErrCodeInvalidProfile,
			"unknown profile %q (want one of %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

// MustProfile is [LookupProfile] for names known at compile time.
func MustProfile(name string) Profile {
	p, err := LookupProfile(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Color returns the fill colour for kind as a #RRGGBB string.
func (p Profile) Color(kind lineage.Kind) string {
	if c, ok := p.Palette[kind]; ok {
		return c
	}
	if p.DefaultColor != "" {
		return p.DefaultColor
	}
	return DefaultColor
}

// Layer maps an entity name to its layer by prefix. The first matching
// prefix wins: raw_ 0, stg_ 1, int_ 2, dim_ or fct_ 3, snap_ 4 when p
// enables snapshots. Everything else lands in the middle layer, 2.
func Layer(name string, p Profile) int {
	switch {
	case strings.HasPrefix(name, "raw_"):
		return LayerRaw
	case strings.HasPrefix(name, "stg_"):
		return LayerStaging
	case strings.HasPrefix(name, "int_"):
		return LayerIntermediate
	case strings.HasPrefix(name, "dim_"), strings.HasPrefix(name, "fct_"):
		return LayerMarts
	case p.Snapshots && strings.HasPrefix(name, "snap_"):
		return LayerSnapshots
	default:
		return LayerIntermediate
	}
}
