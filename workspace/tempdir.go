package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

var (
	// parent directory picked when the caller does not provide one
	defaultParent    string
	dirDiscoveryOnce sync.Once
)

// Dir returns the path of the workspace directory called name inside parent.
// If parent is empty or unusable a disk backed temporary directory is chosen
// instead, since runs for a large sort may not fit in a memory backed /tmp.
// This function is thread-safe and performs O(1) lookups after initialization.
func Dir(parent, name string) string {
	if parent != "" && isDirectoryUsable(parent) {
		return filepath.Join(parent, name)
	}
	dirDiscoveryOnce.Do(func() {
		defaultParent = findBestDirectory()
	})
	return filepath.Join(defaultParent, name)
}

// findBestDirectory returns the first usable candidate in priority order,
// falling back to the OS temp directory.
func findBestDirectory() string {
	for _, candidate := range buildCandidateList() {
		if isDirectoryUsable(candidate) {
			return candidate
		}
	}
	return os.TempDir()
}

// buildCandidateList returns a prioritized list of parent directory candidates.
func buildCandidateList() []string {
	candidates := buildDiskPreferredCandidates()
	candidates = append(candidates, os.TempDir())
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, homeDir)
	}
	if workDir, err := os.Getwd(); err == nil {
		candidates = append(candidates, workDir)
	}
	return candidates
}

// buildDiskPreferredCandidates returns directories that are more likely to be disk-backed
// rather than memory-backed (like tmpfs). On Unix-like systems, this typically includes
// /var/tmp which is traditionally disk-backed, unlike /tmp which may be tmpfs.
func buildDiskPreferredCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/var/tmp", "/private/var/tmp"}
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris":
		return []string{"/var/tmp"}
	default:
		// Windows temp dirs are disk backed already
		return nil
	}
}

// isDirectoryUsable checks that dir exists, is a directory, and is writable.
func isDirectoryUsable(dir string) bool {
	stat, err := os.Stat(dir)
	if err != nil || !stat.IsDir() {
		return false
	}
	f, err := os.CreateTemp(dir, ".linesort-probe-")
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(f.Name())
	return true
}
