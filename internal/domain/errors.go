package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResourcesFound is reported when a project root holds no datafiles.
	// It never aborts a run.
	ErrNoResourcesFound = errors.New("no resources found")

	ErrBackupWriteFailed      = errors.New("backup write failed")
	ErrAtomicWriteFailed      = errors.New("atomic write failed")
	ErrTransformNotIdempotent = errors.New("transform is not idempotent")

	// ErrAlreadyRelocated means a side effect's source is gone and its
	// destination exists.
	ErrAlreadyRelocated = errors.New("already relocated")
)

// DiscoveryError means the project root could not be walked. It is the only
// error that aborts a whole run.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovering resources under %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// RuleEvaluationError records a rule that failed on a single resource.
type RuleEvaluationError struct {
	RuleID       string
	ResourcePath string
	Err          error
}

func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("rule %s could not be evaluated for %s: %v", e.RuleID, e.ResourcePath, e.Err)
}

func (e *RuleEvaluationError) Unwrap() error { return e.Err }
