package linesort

import (
	"fmt"
)

// NewDiskError wraps an underlying I/O error with the operation and path that failed
func NewDiskError(err error, operation, path string) error {
	if path != "" {
		return fmt.Errorf("disk error during %s on %s: %w", operation, path, err)
	}
	return fmt.Errorf("disk error during %s: %w", operation, err)
}

// ConfigError represents an error in configuration parameters
type ConfigError struct {
	// Field is the name of the configuration field that's invalid
	Field string
	// Value is the invalid value provided
	Value interface{}
	// Reason explains why the value is invalid
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %s (value: %v): %s", e.Field, e.Value, e.Reason)
}

// RunError reports a line in a run file that is not a record.
// Runs are only ever written by the sorter, so this means the workspace was
// modified by someone else or the disk returned bad data.
type RunError struct {
	Path string
	Line string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("corrupt run %s: invalid record %q", e.Path, e.Line)
}

// OrderError reports two adjacent records that are out of order.
type OrderError struct {
	// Line is the 1-based line number of Next
	Line int64
	Prev Record
	Next Record
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("line %d: %q sorts before previous record %q", e.Line, e.Next.String(), e.Prev.String())
}
