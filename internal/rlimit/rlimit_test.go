package rlimit

import (
	"runtime"
	"testing"
)

func TestOpenFiles(t *testing.T) {
	before, err := OpenFiles()
	if err != nil {
		t.Fatalf("OpenFiles: %v", err)
	}
	if runtime.GOOS != "windows" && before == 0 {
		t.Fatalf("expected a non-zero open file limit on %s", runtime.GOOS)
	}

	after, err := RaiseOpenFiles()
	if err != nil {
		// darwin may refuse RLIM_INFINITY as a soft limit
		t.Skipf("RaiseOpenFiles: %v", err)
	}
	if after < before {
		t.Errorf("limit went down from %d to %d", before, after)
	}
}
