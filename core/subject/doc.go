// Package subject models pending persistence work as change units: one
// unit per planned insert or delete, either wrapping a real entity or
// synthesized for a junction row by the reconciler.
//
// The Registry is the shared ordered collection of units for one
// persistence pass. It is owned by the caller, mutated in place, and
// assumes exclusive single-threaded access for the duration of the pass;
// the surrounding pipeline runs planning strictly sequentially relative
// to any phase that reads or writes the same registry.
package subject
