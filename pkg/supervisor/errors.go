package supervisor

import "fmt"

// ConfigMissingError is returned by Rebuild when the chart configuration
// file disappeared between builds. Any held application is released.
type ConfigMissingError struct {
	// Path is the missing configuration file.
	Path string
}

// Error returns a description of the condition.
func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("chart configuration %s no longer exists", e.Path)
}
