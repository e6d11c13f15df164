// Package rlimit reads and raises the limit on open files of the current process.
package rlimit

// OpenFiles returns the current soft limit on open files.
// A zero limit means the platform does not report one.
func OpenFiles() (uint64, error) {
	return openFiles()
}

// RaiseOpenFiles raises the soft limit on open files to the hard limit and
// returns the new soft limit.
func RaiseOpenFiles() (uint64, error) {
	return raiseOpenFiles()
}
