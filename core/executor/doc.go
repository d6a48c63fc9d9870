// Package executor turns planned change units into SQL against the
// backing store. It is the downstream consumer of the registry produced
// by core/reconcile and honors its ordering contract: the removal buffer
// drains before the main list, so junction rows disappear before the
// entities they reference.
//
// Insert assignments whose value is a pending change unit resolve through
// that unit's entity at execution time, once the referenced row exists.
package executor
