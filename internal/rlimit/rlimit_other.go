//go:build !unix

package rlimit

func openFiles() (uint64, error) {
	return 0, nil
}

func raiseOpenFiles() (uint64, error) {
	return 0, nil
}
