// Package metadata describes the static shape of many-to-many relations:
// which side owns the junction rows, the junction table's owner-side and
// inverse-side column sets, and the accessors used to read relation values
// and identifier projections off entities.
//
// The reconciliation engine consumes this metadata but never introspects
// entities directly; callers supply accessor functions per relation, so
// entities may be maps, structs, or any other reference-shaped value.
// MapValue and MapIDMap provide ready-made accessors for map-shaped
// entities, which covers tests and the CLI plan command.
package metadata
