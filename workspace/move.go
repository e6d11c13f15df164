package workspace

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// Move moves the file src to dst, replacing dst if it exists. When a rename is
// not possible (e.g. the workspace is on another file system) the content is
// copied into a hidden temporary file next to dst that is renamed into place
// only once complete, so dst never holds partial output.
func Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyReplace(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyReplace(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	dst, err = filepath.Abs(dst)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-"+filepath.Base(dst))
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
