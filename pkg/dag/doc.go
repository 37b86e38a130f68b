// Package dag provides the directed graph that stores dataset lineage.
//
// # Overview
//
// dbtlineage turns a dbt manifest into a graph whose nodes are datasets
// (seeds, models, sources, snapshots) and whose edges point from an upstream
// dataset to the dataset that depends on it. This package holds that
// structure without knowing anything about dbt: nodes carry an ID, a row
// (the visual layer) and free-form [Metadata].
//
// # Insertion Order
//
// Layout in dbtlineage stacks nodes of the same layer in the order they were
// read from the manifest, so the graph must not shuffle them. [DAG] keeps an
// explicit insertion order and every list-returning method follows it.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "seed.shop.raw_orders"})
//	g.AddNode(dag.Node{ID: "model.shop.stg_orders"})
//	g.AddEdge(dag.Edge{From: "seed.shop.raw_orders", To: "model.shop.stg_orders"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.Sources] and
// [DAG.Sinks]. [DAG.Validate] checks for cycles; nothing else does, because a
// lineage graph with a cycle is still worth drawing.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
package dag
