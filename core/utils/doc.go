// Package utils provides common utility functions shared across the engine.
// It includes the deep-merge used to assemble junction row identifiers and
// small type conversion helpers that don't fit into domain-specific packages.
package utils
