package subject

import "reflect"

// Registry is the ordered, mutable collection of pending change units
// shared between the caller, the reconciler, and the execution engine.
//
// It keeps two buffers: the main ordered list, and a removal buffer for
// junction rows that must be deleted before anything already queued
// (notably before the removal of the owning entity itself). Ordered
// merges them in the fixed, documented order: removal buffer first.
//
// Units wrapping an entity are indexed by the entity's handle, so pending
// work for a not-yet-durable object is found in constant time instead of
// a linear scan. Entities must be reference-shaped (pointers or map
// handles); anything else is not indexed and cannot be found by identity.
type Registry struct {
	units    []*ChangeUnit
	removals []*ChangeUnit
	byEntity map[any]*ChangeUnit
}

// NewRegistry creates a registry seeded with the caller's pending units,
// building the entity identity index as it goes.
func NewRegistry(units ...*ChangeUnit) *Registry {
	r := &Registry{
		units:    make([]*ChangeUnit, 0, len(units)),
		byEntity: make(map[any]*ChangeUnit),
	}
	for _, unit := range units {
		r.Append(unit)
	}
	return r
}

// Append adds a unit to the end of the main list. Appended inserts run
// after everything already queued, so a junction row never executes
// before the rows it references.
func (r *Registry) Append(unit *ChangeUnit) {
	r.units = append(r.units, unit)
	r.index(unit)
}

// PushRemoval adds a junction removal to the removal buffer, which
// Ordered places ahead of the entire main list.
func (r *Registry) PushRemoval(unit *ChangeUnit) {
	r.removals = append(r.removals, unit)
}

// FindByEntity returns the pending unit wrapping exactly this entity
// (reference identity), or nil if none is registered.
func (r *Registry) FindByEntity(entity any) *ChangeUnit {
	key, ok := handleKey(entity)
	if !ok {
		return nil
	}
	return r.byEntity[key]
}

// Units returns the main ordered list.
func (r *Registry) Units() []*ChangeUnit {
	return r.units
}

// Removals returns the junction removal buffer.
func (r *Registry) Removals() []*ChangeUnit {
	return r.removals
}

// Ordered returns all units in execution order: the removal buffer
// first, then the main list. The execution engine must consume them in
// this order so junction row removals precede entity removals.
func (r *Registry) Ordered() []*ChangeUnit {
	ordered := make([]*ChangeUnit, 0, len(r.removals)+len(r.units))
	ordered = append(ordered, r.removals...)
	ordered = append(ordered, r.units...)
	return ordered
}

// Len returns the total number of units across both buffers.
func (r *Registry) Len() int {
	return len(r.removals) + len(r.units)
}

func (r *Registry) index(unit *ChangeUnit) {
	key, ok := handleKey(unit.Entity)
	if !ok {
		return
	}
	if _, exists := r.byEntity[key]; !exists {
		r.byEntity[key] = unit
	}
}

// handleKey derives the identity-index key for an entity. Pointers and
// map handles key by their underlying pointer, so two handles to the same
// object always match. Other comparable values key by value; everything
// else is not indexable.
func handleKey(entity any) (any, bool) {
	if entity == nil {
		return nil, false
	}
	rv := reflect.ValueOf(entity)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.UnsafePointer, reflect.Chan, reflect.Func:
		return rv.Pointer(), true
	}
	if rv.Type().Comparable() {
		return entity, true
	}
	return nil, false
}
