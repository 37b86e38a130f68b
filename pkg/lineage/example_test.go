package lineage_test

import (
	"fmt"

	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
)

func ExampleExtractWithReport() {
	m, _ := manifest.Parse([]byte(`{
		"nodes": {
			"seed.shop.raw_orders": {"name": "raw_orders", "resource_type": "seed"},
			"model.shop.stg_orders": {
				"name": "stg_orders",
				"resource_type": "model",
				"depends_on": {"nodes": ["seed.shop.raw_orders", "macro.shop.cents_to_dollars"]}
			}
		}
	}`))

	g, rep := lineage.ExtractWithReport(m)
	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Roots:", lineage.Names(g.Roots()))
	fmt.Println("Dropped:", rep.Dangling[0].Parent)
	// Output:
	// Nodes: 2
	// Edges: 1
	// Roots: [raw_orders]
	// Dropped: macro.shop.cents_to_dollars
}
