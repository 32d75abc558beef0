package domain

import "fmt"

// NotFoundError reports an entity or row absent from the database it was
// requested from.
type NotFoundError struct {
	Kind   Kind
	ID     int64
	Source string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found in %s", e.Kind, e.ID, e.Source)
}

// InvalidOptionsError reports a clone request with contradictory options.
type InvalidOptionsError struct {
	Reason string
}

func (e *InvalidOptionsError) Error() string {
	return fmt.Sprintf("invalid clone options: %s", e.Reason)
}

// IDCollisionError reports a forced id already present in the allocation
// domain's id space in at least one known database.
type IDCollisionError struct {
	Domain Kind
	ID     int64
	Source string
}

func (e *IDCollisionError) Error() string {
	return fmt.Sprintf("%s id %d already in use in %s", e.Domain, e.ID, e.Source)
}

// MissingDependencyError is fatal to a clone: the closure references a row
// that cannot be resolved in any known database. Committing anyway would
// produce an entity that loads but crashes at runtime.
type MissingDependencyError struct {
	Table       string
	Key         int64
	Description string
}

func (e *MissingDependencyError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("missing dependency: %s", e.Description)
	}
	return fmt.Sprintf("missing dependency: %s row %d unresolvable", e.Table, e.Key)
}

// CommitFailedError wraps a write-back failure. The target database has been
// rolled back to its pre-operation state.
type CommitFailedError struct {
	Table string
	Err   error
}

func (e *CommitFailedError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("commit failed writing %s (target rolled back): %v", e.Table, e.Err)
	}
	return fmt.Sprintf("commit failed (target rolled back): %v", e.Err)
}

func (e *CommitFailedError) Unwrap() error {
	return e.Err
}
