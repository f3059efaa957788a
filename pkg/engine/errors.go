package engine

import "fmt"

// BuildError is returned by New when the effective configuration cannot
// be turned into a running tile application: unknown cache types, dangling
// grid or cache references, unreadable tile stores.
type BuildError struct {
	// Path is the configuration file the build started from.
	Path string

	// Message describes the violation.
	Message string

	// Cause is the underlying error, when one exists.
	Cause error
}

// Error returns a description of the build failure.
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("build %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("build %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error {
	return e.Cause
}
