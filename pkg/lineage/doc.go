// Package lineage turns a dbt manifest into a dataset dependency graph.
//
// Every entry of the manifest's "nodes" and "sources" becomes an [Entity].
// For each node, every ID in depends_on.nodes that names another entity
// becomes an edge from that upstream entity to the node. References to IDs
// the manifest does not define (macros, disabled models, packages that were
// not compiled) are dropped; [ExtractWithReport] lists them.
//
// The graph is stored in a [dag.DAG], which keeps manifest order so that
// layout is reproducible for a given manifest file. Extraction does not check
// for cycles.
package lineage
