package reconcile

import "fmt"

// UnresolvedReferenceError is the single fatal planning failure: a
// many-to-many relation references an object that has no durable
// identifier and was never scheduled for persistence, so no junction row
// could ever address it. The whole pass for the invoking entity aborts
// and the registry is left untouched.
type UnresolvedReferenceError struct {
	// Relation is the qualified property path of the failing relation.
	Relation string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf(
		"many-to-many relation %q references an entity that has no identifier and no pending change unit; schedule the related entity for persistence first",
		e.Relation,
	)
}
