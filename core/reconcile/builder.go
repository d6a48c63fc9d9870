package reconcile

import (
	"go.uber.org/zap"

	"github.com/chloe1331/typeorm/core/metadata"
	"github.com/chloe1331/typeorm/core/subject"
	"github.com/chloe1331/typeorm/core/utils"
)

// Builder computes junction row deltas for many-to-many relations: given
// the change units of one persistence pass, it diffs each entity's
// in-memory relation value against the persisted baseline and pushes the
// junction inserts and removals needed to make the store match.
//
// The builder only reads entities and mutates the shared registry; it
// performs no I/O and assumes exclusive access to the registry for the
// duration of the pass.
type Builder struct {
	registry *subject.Registry
	log      *zap.Logger
}

// NewBuilder creates a builder over the shared registry. A nil logger
// disables logging.
func NewBuilder(registry *subject.Registry, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{registry: registry, log: log}
}

// Build reconciles every many-to-many relation of every entity scheduled
// for persistence. Units without an in-memory entity (removals, synthetic
// junction units) are skipped, as are relations with persistence disabled.
func (b *Builder) Build() error {
	for _, unit := range b.registry.Units() {
		if unit.Entity == nil || unit.Metadata == nil {
			continue
		}
		for _, rel := range unit.Metadata.ManyToManyRelations {
			if !rel.PersistenceEnabled {
				continue
			}
			if err := b.reconcileRelation(unit, rel); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reconcile computes junction deltas for a single (unit, relation) pair.
// It is a no-op when the unit carries no in-memory entity or the relation
// has persistence disabled.
func (b *Builder) Reconcile(unit *subject.ChangeUnit, rel *metadata.Relation) error {
	if unit.Entity == nil || !rel.PersistenceEnabled {
		return nil
	}
	return b.reconcileRelation(unit, rel)
}

// PlanRemovalOfAllJoins schedules removal of every junction row currently
// bound to an entity being deleted, across all its many-to-many
// relations. Membership is read from the database snapshot (the "as
// persisted" state); without a snapshot there is nothing durable to clean
// up and the call is a no-op. All removals land in the registry's removal
// buffer, ahead of the entity's own removal unit.
func (b *Builder) PlanRemovalOfAllJoins(unit *subject.ChangeUnit) {
	if unit.DatabaseEntity == nil || unit.Metadata == nil {
		return
	}
	for _, rel := range unit.Metadata.ManyToManyRelations {
		if !rel.PersistenceEnabled {
			continue
		}
		for _, baselineID := range relationIDs(rel, unit.DatabaseEntity) {
			removal := subject.NewJunctionRemoval(rel.Junction, buildJunctionIdentifier(unit.DatabaseEntity, baselineID, rel))
			b.registry.PushRemoval(removal)

			b.log.Debug("planned junction removal",
				zap.String("relation", rel.PropertyPath),
				zap.String("table", rel.Junction.TableName),
				zap.String("unit_id", removal.ID.String()),
			)
		}
	}
}

// reconcileRelation diffs one relation of one persisted entity.
//
// The baseline is the relation's membership on the database snapshot; an
// absent snapshot means an empty baseline and everything current is an
// addition. A nil current value clears the relation. A current value that
// is not list-shaped skips reconciliation silently: the engine is
// permissive toward partially populated graphs, so a malformed value is
// treated as "nothing to reconcile" rather than an error.
//
// New units are staged locally and only flushed to the registry once both
// passes finish, so a fatal unresolved reference leaves the registry
// untouched.
func (b *Builder) reconcileRelation(unit *subject.ChangeUnit, rel *metadata.Relation) error {
	baseline := relationIDs(rel, unit.DatabaseEntity)

	related, ok := relatedEntities(rel, unit.Entity)
	if !ok {
		return nil
	}

	var inserts []*subject.ChangeUnit
	currentIDs := make([]metadata.IDMap, 0, len(related))

	// Addition pass: every related entity absent from the baseline gets a
	// junction insert.
	for _, relatedEntity := range related {
		relatedID := rel.InverseIDMap(relatedEntity)

		// No durable identity yet: the related object must itself be
		// scheduled for persistence in this pass, otherwise the junction
		// row could never reference it.
		var relatedUnit *subject.ChangeUnit
		if len(relatedID) == 0 {
			relatedUnit = b.registry.FindByEntity(relatedEntity)
			if relatedUnit == nil {
				return &UnresolvedReferenceError{Relation: rel.PropertyPath}
			}
		} else {
			currentIDs = append(currentIDs, relatedID)
			if containsID(baseline, relatedID, rel) {
				continue // junction row already exists
			}
		}

		inserts = append(inserts, b.buildInsert(unit, rel, relatedEntity, relatedUnit))
	}

	// Removal pass: every baseline projection missing from the current
	// value is a junction row to delete.
	var removals []*subject.ChangeUnit
	for _, baselineID := range baseline {
		if containsID(currentIDs, baselineID, rel) {
			continue
		}
		identifier := buildJunctionIdentifier(unit.Entity, baselineID, rel)
		removals = append(removals, subject.NewJunctionRemoval(rel.Junction, identifier))
	}

	// Flush: removals into the removal buffer (they must precede any
	// queued removal of the owning entity), inserts onto the tail (they
	// may depend on rows not yet inserted).
	for _, removal := range removals {
		b.registry.PushRemoval(removal)
	}
	for _, insert := range inserts {
		b.registry.Append(insert)
	}

	if len(inserts) > 0 || len(removals) > 0 {
		b.log.Debug("reconciled relation",
			zap.String("relation", rel.PropertyPath),
			zap.Int("inserts", len(inserts)),
			zap.Int("removals", len(removals)),
		)
	}
	return nil
}

// buildInsert creates a junction insert unit with one assignment per
// owner-side and inverse-side column. The owning operand is the persisted
// unit itself; the inverse operand is the related entity, or its pending
// unit when the entity has no identity yet. Roles swap when the relation
// is not the owning side.
func (b *Builder) buildInsert(unit *subject.ChangeUnit, rel *metadata.Relation, relatedEntity any, relatedUnit *subject.ChangeUnit) *subject.ChangeUnit {
	junction := subject.NewJunctionInsert(rel.Junction)

	var relatedOperand any = relatedEntity
	if relatedUnit != nil {
		relatedOperand = relatedUnit
	}

	ownerValue, inverseValue := any(unit), relatedOperand
	if !rel.IsOwning {
		ownerValue, inverseValue = relatedOperand, any(unit)
	}

	for _, column := range rel.Junction.OwnerColumns {
		junction.Changes = append(junction.Changes, subject.ColumnChange{Column: column, Value: ownerValue})
	}
	for _, column := range rel.Junction.InverseColumns {
		junction.Changes = append(junction.Changes, subject.ColumnChange{Column: column, Value: inverseValue})
	}
	return junction
}

// buildJunctionIdentifier assembles the fully addressed identifier map
// locating one junction row: every owner-side column resolved against the
// owner operand and every inverse-side column against the inverse
// operand, deep-merged with later keys winning. If the relation is
// owning, the subject entity plays the owner role and the related
// identifier projection the inverse role; otherwise the roles reverse.
// The result carries one entry per column in both sets; a missing entry
// is an implementation defect, not a runtime input error.
func buildJunctionIdentifier(entity any, relatedID metadata.IDMap, rel *metadata.Relation) metadata.IDMap {
	ownerOperand, inverseOperand := entity, any(relatedID)
	if !rel.IsOwning {
		ownerOperand, inverseOperand = any(relatedID), entity
	}

	identifier := make(metadata.IDMap)
	for _, column := range rel.Junction.OwnerColumns {
		utils.MergeMaps(identifier, column.ValueMap(column.Resolve(ownerOperand)))
	}
	for _, column := range rel.Junction.InverseColumns {
		utils.MergeMaps(identifier, column.ValueMap(column.Resolve(inverseOperand)))
	}
	return identifier
}

// relationIDs reads a relation's membership off a database snapshot as a
// list of identifier projections. A missing snapshot, unset property, or
// value that is not a list of projections degrades to empty.
func relationIDs(rel *metadata.Relation, databaseEntity any) []metadata.IDMap {
	if databaseEntity == nil {
		return nil
	}
	value, ok := rel.Value(databaseEntity)
	if !ok || value == nil {
		return nil
	}

	switch v := value.(type) {
	case []metadata.IDMap:
		return v
	case []map[string]any:
		ids := make([]metadata.IDMap, 0, len(v))
		for _, m := range v {
			ids = append(ids, metadata.IDMap(m))
		}
		return ids
	case []any:
		ids := make([]metadata.IDMap, 0, len(v))
		for _, el := range v {
			if m, ok := utils.ToStringMap(el); ok {
				ids = append(ids, metadata.IDMap(m))
			}
		}
		return ids
	}
	return nil
}

// relatedEntities normalizes the relation's in-memory value into a list
// of related entities. A nil value means "remove everything" and yields
// an empty list; an unset property or non-list value reports not-ok and
// skips reconciliation.
func relatedEntities(rel *metadata.Relation, entity any) ([]any, bool) {
	value, ok := rel.Value(entity)
	if !ok {
		return nil, false
	}
	if value == nil {
		return nil, true
	}

	switch v := value.(type) {
	case []any:
		return v, true
	case []map[string]any:
		entities := make([]any, 0, len(v))
		for _, m := range v {
			entities = append(entities, m)
		}
		return entities, true
	}
	return nil, false
}

// containsID reports whether the identifier projection appears in the
// list, using the relation's comparator.
func containsID(ids []metadata.IDMap, id metadata.IDMap, rel *metadata.Relation) bool {
	for _, candidate := range ids {
		if rel.CompareIDs(candidate, id) {
			return true
		}
	}
	return false
}
