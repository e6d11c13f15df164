package linesort

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/lanrat/linesort/workspace"
	"github.com/stretchr/testify/require"
)

func newTestJob(t *testing.T, conf Config) *job {
	t.Helper()
	s, err := New(&conf, nil, nil)
	require.NoError(t, err)
	ws, err := workspace.Create(filepath.Join(t.TempDir(), "ws"))
	require.NoError(t, err)
	return &job{Sorter: s, log: s.log, ws: ws, counts: make(map[string]int64)}
}

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

// runRecords returns the records of every run in the workspace, checking
// that each run is sorted
func runRecords(t *testing.T, j *job) []Record {
	t.Helper()
	runs, err := j.ws.Runs()
	require.NoError(t, err)
	var all []Record
	for _, run := range runs {
		var recs []Record
		for _, line := range readLines(t, run) {
			rec, ok := ParseRecord(line)
			require.True(t, ok, "invalid run line %q", line)
			recs = append(recs, rec)
		}
		require.True(t, slices.IsSortedFunc(recs, CompareRecords), "run %s is not sorted", run)
		all = append(all, recs...)
	}
	return all
}

// validRecords parses lines in memory, the reference for every sort
func validRecords(lines []string) []Record {
	var recs []Record
	for _, l := range lines {
		if rec, ok := ParseRecord(strings.TrimSuffix(l, "\r")); ok {
			recs = append(recs, rec)
		}
	}
	return recs
}

func TestPartitionBoundaries(t *testing.T) {
	lines := []string{
		"3. third line",
		"1. first line",
		"not a record",
		"5. second line",
		"",
		"2. " + strings.Repeat("a very long payload ", 8),
		"7. x",
		"8. y",
		"dsjhk. 12321",
		"9. " + strings.Repeat("z", 45),
		"10. last line without terminator",
	}
	path := filepath.Join(t.TempDir(), "input.txt")
	writeFile(t, path, lines...)
	// drop the final newline
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b[:len(b)-1], 0o644))

	want := validRecords(lines)
	slices.SortFunc(want, CompareRecords)
	for chunkSize := 1; chunkSize <= len(b)+1; chunkSize++ {
		t.Run(fmt.Sprint(chunkSize), func(t *testing.T) {
			j := newTestJob(t, Config{ChunkSize: ByteSize(chunkSize), NumWorkers: 3})
			require.NoError(t, j.partition(context.Background(), path))
			got := runRecords(t, j)
			slices.SortFunc(got, CompareRecords)
			require.Equal(t, want, got)
		})
	}
}

func TestPartitionCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("2. b\r\n1. a\r\n3. c\r\n"), 0o644))
	j := newTestJob(t, Config{ChunkSize: 5})
	require.NoError(t, j.partition(context.Background(), path))
	got := runRecords(t, j)
	slices.SortFunc(got, CompareRecords)
	require.Equal(t, []Record{{1, "a"}, {2, "b"}, {3, "c"}}, got)
}

func TestPartitionChunks(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, fmt.Sprintf("%d. payload %03d", i, (i*37)%100))
	}
	path := filepath.Join(t.TempDir(), "input.txt")
	writeFile(t, path, lines...)
	info, err := os.Stat(path)
	require.NoError(t, err)

	j := newTestJob(t, Config{ChunkSize: 128, NumWorkers: 4})
	require.NoError(t, j.partition(context.Background(), path))
	runs, err := j.ws.Runs()
	require.NoError(t, err)
	require.Len(t, runs, int((info.Size()+127)/128))
	require.Equal(t, len(runs), j.runs())
	require.Len(t, runRecords(t, j), 100)
}

func TestPartitionSingleChunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	writeFile(t, path, "415. Apple", "1. Apple", "2. Banana is yellow")
	j := newTestJob(t, Config{})
	require.NoError(t, j.partition(context.Background(), path))
	runs, err := j.ws.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, []string{"1. Apple", "415. Apple", "2. Banana is yellow"}, readLines(t, runs[0]))
	require.Equal(t, int64(3), j.runCount(runs[0]))
}

func TestPartitionEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	j := newTestJob(t, Config{})
	require.NoError(t, j.partition(context.Background(), path))
	runs, err := j.ws.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	info, err := os.Stat(runs[0])
	require.NoError(t, err)
	require.Zero(t, info.Size())
}

func TestPartitionUnique(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	writeFile(t, path, "1. a", "1. a", "2. a", "1. a")
	j := newTestJob(t, Config{Unique: true})
	require.NoError(t, j.partition(context.Background(), path))
	require.Equal(t, []Record{{1, "a"}, {2, "a"}}, runRecords(t, j))
}

func TestPartitionErrors(t *testing.T) {
	j := newTestJob(t, Config{})
	err := j.partition(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Error(t, j.partition(context.Background(), t.TempDir()))
}

func TestPartitionCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	writeFile(t, path, "1. a", "2. b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j := newTestJob(t, Config{ChunkSize: 4})
	require.ErrorIs(t, j.partition(ctx, path), context.Canceled)
}
