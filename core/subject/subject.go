package subject

import (
	"github.com/google/uuid"

	"github.com/chloe1331/typeorm/core/metadata"
)

// ColumnChange is one column -> value assignment applied on insert.
// Value may be an entity, an identifier projection, or a *ChangeUnit whose
// identity becomes known once the execution engine persists it.
type ColumnChange struct {
	Column *metadata.Column
	Value  any
}

// ChangeUnit represents one pending operation against the store: the
// persistence or removal of an entity, or a synthetic junction row
// insert/delete produced by reconciliation. Units are created once and,
// apart from the insert assignment list, not mutated afterwards.
type ChangeUnit struct {
	// ID correlates the unit across planner and executor logs.
	ID uuid.UUID

	// Table is the table this unit operates on: the entity's own table,
	// or the junction table for synthetic units.
	Table string

	// Metadata is the target entity descriptor. It is nil for synthetic
	// junction units, which carry no entity of their own.
	Metadata *metadata.Entity

	// Entity is the in-memory entity about to be persisted or removed.
	// Nil for synthetic junction units.
	Entity any

	// DatabaseEntity is the previously persisted snapshot, if one was
	// loaded. Nil means the entity is new and there is no baseline.
	DatabaseEntity any

	// MustInsert requests insertion of a new row.
	MustInsert bool

	// MustRemove requests removal of an existing row.
	MustRemove bool

	// Changes holds the ordered column -> value assignments applied on
	// insert: exactly one per owner-side and inverse-side junction column.
	Changes []ColumnChange

	// Identifier fully addresses the row to delete. Removal units always
	// carry every column needed to locate the row.
	Identifier metadata.IDMap
}

// NewChangeUnit creates a change unit for an entity scheduled for
// persistence or removal. The database snapshot may be nil for new entities.
func NewChangeUnit(md *metadata.Entity, entity, databaseEntity any) *ChangeUnit {
	return &ChangeUnit{
		ID:             uuid.New(),
		Table:          md.TableName,
		Metadata:       md,
		Entity:         entity,
		DatabaseEntity: databaseEntity,
	}
}

// NewJunctionInsert creates a synthetic unit inserting one junction row.
// Column assignments are appended by the reconciler.
func NewJunctionInsert(junction *metadata.Junction) *ChangeUnit {
	return &ChangeUnit{
		ID:         uuid.New(),
		Table:      junction.TableName,
		MustInsert: true,
	}
}

// NewJunctionRemoval creates a synthetic unit deleting one junction row,
// addressed by the given identifier map.
func NewJunctionRemoval(junction *metadata.Junction, identifier metadata.IDMap) *ChangeUnit {
	return &ChangeUnit{
		ID:         uuid.New(),
		Table:      junction.TableName,
		MustRemove: true,
		Identifier: identifier,
	}
}
