// Package domain contains the Task entity and its validation rules.
// It has no dependencies on storage, scheduling, or transport concerns;
// those layers depend on this package, never the other way around.
package domain
