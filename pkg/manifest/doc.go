// Package manifest reads the parts of a dbt manifest.json that describe
// lineage.
//
// Only the "nodes" and "sources" objects and a little of "metadata" are
// read. Entries are walked with github.com/buger/jsonparser rather than
// decoded into maps, so the returned slices follow the order in which dbt
// wrote them. Downstream layout stacks nodes in that order.
//
//	m, err := manifest.Load("lineage_demo/target/manifest.json")
//	if errors.Is(err, errors.ErrCodeFileNotFound) {
//	    // tell the user to run `dbt docs generate`
//	}
//
// Nothing here validates the manifest against dbt's schema: unknown fields
// are ignored and fields with unexpected types are read as empty.
package manifest
