// Package reconcile computes the junction row deltas that make a
// many-to-many relation in the store match an in-memory object graph.
//
// Given the change units of one persistence pass, the Builder diffs each
// entity's current relation value against the previously persisted
// baseline and synthesizes one change unit per junction row to insert or
// delete. It decides nothing about whether entities themselves are saved
// or removed; it only resolves the junction deltas implied by units that
// already exist.
//
// # Components
//
// 1. Builder.Build / Builder.Reconcile: per (entity, relation) diffing.
// Additions append junction inserts to the registry tail so they execute
// after the rows they reference; disappearances push junction removals
// into the registry's removal buffer so they execute before anything
// already queued.
//
// 2. Builder.PlanRemovalOfAllJoins: for an entity being deleted,
// enumerates its persisted junction membership across all many-to-many
// relations and schedules every row's removal ahead of the entity's own
// removal unit.
//
// 3. buildJunctionIdentifier: assembles the fully addressed identifier
// map used to delete one junction row, selecting owner/inverse operands
// by the relation's ownership direction.
//
// # Failure Model
//
// The only fatal condition is an addition referencing an object with no
// durable identity and no pending change unit (UnresolvedReferenceError).
// Everything else degrades silently: nil relation values clear the
// relation, unset or non-list values skip it, and a missing database
// snapshot means an empty baseline.
//
// The pass is synchronous and performs no I/O; executing the planned
// units is the execution engine's concern (see core/executor).
package reconcile
