// Package workspace manages the scratch directory that holds the sorted runs
// of a single sort. Every run gets a collision-free name so that concurrent
// writers never share a file.
package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/segmentio/ksuid"
)

const (
	runPrefix = "chunk_"
	runSuffix = ".txt"
)

// Workspace is a directory that holds only run files for the duration of one sort.
type Workspace struct {
	dir string
}

// Create removes dir if it exists (a leftover from a failed sort) and creates it empty.
func Create(dir string) (*Workspace, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Workspace{dir: dir}, nil
}

// Path returns the workspace directory.
func (w *Workspace) Path() string {
	return w.dir
}

// NewRun creates a new empty run file opened for writing.
func (w *Workspace) NewRun() (*os.File, error) {
	name := filepath.Join(w.dir, runPrefix+ksuid.New().String()+runSuffix)
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
}

// Runs returns the paths of all run files in the workspace ordered by name.
func (w *Workspace) Runs() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, err
	}
	var runs []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && IsRun(name) {
			runs = append(runs, filepath.Join(w.dir, name))
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// IsRun reports whether a file name is a run name.
func IsRun(name string) bool {
	name = filepath.Base(name)
	return strings.HasPrefix(name, runPrefix) && strings.HasSuffix(name, runSuffix)
}

// Remove deletes the workspace and everything inside it.
func (w *Workspace) Remove() error {
	return os.RemoveAll(w.dir)
}
