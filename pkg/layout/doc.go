// Package layout assigns lineage entities to layers and positions.
//
// Layers come from dbt naming conventions (raw_, stg_, int_, dim_/fct_,
// snap_), not from graph structure: a model called stg_orders is drawn in the
// staging column even if it reads from another staging model. Positions are a
// plain grid, one column per layer, nodes stacked in manifest order.
//
// A [Profile] carries everything that differs between the basic and advanced
// renderings: spacing, layer captions, palette, legend and figure size.
package layout
