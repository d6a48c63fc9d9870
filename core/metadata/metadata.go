package metadata

import (
	"reflect"

	"github.com/chloe1331/typeorm/core/utils"
)

// IDMap is an identifier projection: the minimal set of column values
// that uniquely addresses one entity instance, keyed by column name.
type IDMap map[string]any

// CompareIDs reports whether two identifier projections are equal.
// Comparison is order-independent and uses deep equality per value, so
// projections built from different sources (entity reads vs database
// snapshots) compare correctly regardless of insertion order.
func CompareIDs(a, b IDMap) bool {
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}

// Column describes one junction table column: its database name and how
// to resolve the referenced value from an operand (an entity or an
// identifier projection).
type Column struct {
	// DatabaseName is the column name in the junction table.
	DatabaseName string

	// ReferencedColumn is the identifying column on the referenced entity
	// this junction column copies its value from (e.g. "id").
	ReferencedColumn string

	// ReferencedValue optionally overrides value resolution for callers
	// whose entities are not map-shaped (e.g. struct entities).
	ReferencedValue func(operand any) any
}

// Resolve extracts the referenced value from the operand. The operand may
// be an entity or an identifier projection; both resolve by the
// referenced column name unless a custom resolver is configured.
func (c *Column) Resolve(operand any) any {
	if c.ReferencedValue != nil {
		return c.ReferencedValue(operand)
	}
	if m, ok := utils.ToStringMap(operand); ok {
		return m[c.ReferencedColumn]
	}
	return nil
}

// ValueMap wraps a resolved value into a single-entry map addressed by
// the junction column's database name.
func (c *Column) ValueMap(v any) IDMap {
	return IDMap{c.DatabaseName: v}
}

// Junction describes the associative table recording one row per active
// many-to-many association.
type Junction struct {
	// TableName is the junction table name.
	TableName string

	// OwnerColumns reference the owning side of the relation.
	OwnerColumns []*Column

	// InverseColumns reference the inverse side of the relation.
	InverseColumns []*Column
}

// Relation describes one many-to-many property on an entity type and the
// accessors needed to reconcile it. The owning/inverse column split is
// fixed per relation and never mixed.
type Relation struct {
	// PropertyPath is the qualified property name (e.g. "post.categories"),
	// used in error reporting.
	PropertyPath string

	// IsOwning reports whether this side of the relation owns the junction
	// rows. When false, the owner/inverse operand roles are reversed when
	// building junction identifiers.
	IsOwning bool

	// PersistenceEnabled gates reconciliation for this relation. Disabled
	// relations are skipped entirely.
	PersistenceEnabled bool

	// Junction describes the associative table for this relation.
	Junction *Junction

	// Value reads the relation's value off an entity. The second return
	// reports whether the property is set at all: an unset property skips
	// reconciliation, while an explicit nil value means "remove everything".
	Value func(entity any) (any, bool)

	// InverseIDMap extracts the identifier projection of a related entity.
	// It returns nil when the entity has no durable identity yet.
	InverseIDMap func(entity any) IDMap

	// Compare optionally overrides identifier projection equality.
	Compare func(a, b IDMap) bool
}

// CompareIDs compares two identifier projections using the relation's
// configured comparator, falling back to the package default.
func (r *Relation) CompareIDs(a, b IDMap) bool {
	if r.Compare != nil {
		return r.Compare(a, b)
	}
	return CompareIDs(a, b)
}

// Entity describes an entity type: its table and the many-to-many
// relations declared on it.
type Entity struct {
	// TableName is the entity's own table name.
	TableName string

	// ManyToManyRelations lists the many-to-many properties on this type.
	ManyToManyRelations []*Relation
}

// MapValue returns a relation value accessor for map-shaped entities.
// The comma-ok result distinguishes an unset property from an explicit nil.
func MapValue(property string) func(entity any) (any, bool) {
	return func(entity any) (any, bool) {
		m, ok := utils.ToStringMap(entity)
		if !ok {
			return nil, false
		}
		v, ok := m[property]
		return v, ok
	}
}

// MapIDMap returns an identifier projection accessor for map-shaped
// entities. The projection is nil unless every identifying column is set,
// matching "no durable identity yet" semantics for partially built objects.
func MapIDMap(idColumns ...string) func(entity any) IDMap {
	return func(entity any) IDMap {
		m, ok := utils.ToStringMap(entity)
		if !ok {
			return nil
		}
		id := make(IDMap, len(idColumns))
		for _, column := range idColumns {
			v, ok := m[column]
			if !ok || v == nil {
				return nil
			}
			id[column] = v
		}
		return id
	}
}
