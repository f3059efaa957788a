package chartconfig

import "fmt"

// NotFoundError indicates a configuration file that does not exist.
type NotFoundError struct {
	// Path is the file that could not be found.
	Path string

	// Cause is the underlying filesystem error.
	Cause error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("chart config %q not found", e.Path)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// ParseError indicates a configuration file whose content could not be
// decoded, or whose top level is not a mapping.
type ParseError struct {
	// Path is the file that failed to parse. Empty for in-memory documents.
	Path string

	// Message describes the parse failure.
	Message string

	// Cause is the underlying decoder error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error in %q: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// MergeConflictError indicates that the same key appears with incompatible
// shapes on both sides of a merge, outside the layers exception.
type MergeConflictError struct {
	// Key is the conflicting mapping key.
	Key string

	// CurrentShape is the shape of the child document's value.
	CurrentShape Shape

	// TargetShape is the shape of the base document's value.
	TargetShape Shape

	// Message carries additional detail for conflicts inside the layers
	// reconciliation, where shapes alone do not tell the story.
	Message string
}

// Error implements the error interface.
func (e *MergeConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("merge conflict at key %q: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("merge conflict at key %q: cannot merge %s into %s", e.Key, e.CurrentShape, e.TargetShape)
}
