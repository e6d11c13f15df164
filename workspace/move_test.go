package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyReplace(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := filepath.Join(srcDir, "chunk_x.txt")
	dst := filepath.Join(dstDir, "sorted.txt")
	if err := os.WriteFile(src, []byte("1. a\n2. b\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := copyReplace(src, dst); err != nil {
		t.Fatalf("copyReplace: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "1. a\n2. b\n" {
		t.Errorf("unexpected content %q", b)
	}

	entries, err := os.ReadDir(dstDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no temporary files left in %s, found %d entries", dstDir, len(entries))
	}
}
