// Package graph provides the JSON wire format for laid-out lineage graphs.
//
// The format is what `dbtlineage render -f json` writes and what the preview
// server returns from /graph.json:
//
//	{
//	  "project": "shop",
//	  "profile": "basic",
//	  "nodes": [{"id": "seed.shop.raw_orders", "label": "raw_orders", "kind": "seed", "layer": 0, "x": 0, "y": -0.75}],
//	  "edges": [{"from": "seed.shop.raw_orders", "to": "model.shop.stg_orders"}]
//	}
//
// Nodes appear in manifest order, so two exports of the same manifest are
// byte-for-byte identical.
package graph
