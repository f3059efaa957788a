package bridge

// NotReadyError is returned by Invoke when no application has been
// built yet, typically before the first successful rebuild or after a
// failed one.
type NotReadyError struct{}

// Error returns a description of the condition.
func (e *NotReadyError) Error() string {
	return "no tile application available"
}
