package linesort

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// addTestRun writes lines as a run of j
func addTestRun(t *testing.T, j *job, lines ...string) string {
	t.Helper()
	f, err := j.ws.NewRun()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	writeFile(t, f.Name(), lines...)
	j.addRun(f.Name(), int64(len(lines)))
	return f.Name()
}

func TestMergeThreeRuns(t *testing.T) {
	j := newTestJob(t, Config{})
	addTestRun(t, j, "1. a", "2. d", "4. d")
	addTestRun(t, j, "2. b", "5. e", "8. h")
	addTestRun(t, j, "3. c", "6. f", "9. i")

	out := filepath.Join(t.TempDir(), "sorted.txt")
	require.NoError(t, j.merge(context.Background(), out))
	require.Equal(t, []string{"1. a", "2. b", "3. c", "2. d", "4. d", "5. e", "6. f", "8. h", "9. i"}, readLines(t, out))

	runs, err := j.ws.Runs()
	require.NoError(t, err)
	require.Empty(t, runs)
	require.Equal(t, 9.0, testutil.ToFloat64(j.metrics.RecordsWritten))
	require.Equal(t, 1.0, testutil.ToFloat64(j.metrics.MergePasses))
}

func TestMergeOverlapping(t *testing.T) {
	j := newTestJob(t, Config{})
	addTestRun(t, j, "1. same", "5. same", "1. zzz")
	addTestRun(t, j, "3. same", "5. same")
	addTestRun(t, j)

	out := filepath.Join(t.TempDir(), "sorted.txt")
	require.NoError(t, j.merge(context.Background(), out))
	require.Equal(t, []string{"1. same", "3. same", "5. same", "5. same", "1. zzz"}, readLines(t, out))
}

func TestMergeEmptyRuns(t *testing.T) {
	j := newTestJob(t, Config{})
	addTestRun(t, j)
	addTestRun(t, j)

	out := filepath.Join(t.TempDir(), "sorted.txt")
	require.NoError(t, j.merge(context.Background(), out))
	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Zero(t, info.Size())
}

func TestMergeSingleRunIsMoved(t *testing.T) {
	j := newTestJob(t, Config{})
	run := addTestRun(t, j, "1. a", "2. b")

	out := filepath.Join(t.TempDir(), "sorted.txt")
	require.NoError(t, j.merge(context.Background(), out))
	require.Equal(t, []string{"1. a", "2. b"}, readLines(t, out))
	_, err := os.Stat(run)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Zero(t, testutil.ToFloat64(j.metrics.MergePasses))
}

func TestMergeReplacesOutput(t *testing.T) {
	j := newTestJob(t, Config{})
	addTestRun(t, j, "1. a")
	addTestRun(t, j, "2. b")

	out := filepath.Join(t.TempDir(), "sorted.txt")
	writeFile(t, out, "stale", "content", "here")
	require.NoError(t, j.merge(context.Background(), out))
	require.Equal(t, []string{"1. a", "2. b"}, readLines(t, out))
}

func TestMergeMultiPass(t *testing.T) {
	for _, maxOpen := range []int{2, 3, 4, 7} {
		t.Run(fmt.Sprint(maxOpen), func(t *testing.T) {
			j := newTestJob(t, Config{MaxOpenRuns: maxOpen})
			r := rand.New(rand.NewSource(int64(maxOpen)))
			var want []Record
			const runs = 10
			for i := 0; i < runs; i++ {
				var recs []Record
				for n := r.Intn(20); n > 0; n-- {
					recs = append(recs, Record{Tag: r.Int63n(50), Payload: fmt.Sprintf("p%02d", r.Intn(30))})
				}
				slices.SortFunc(recs, CompareRecords)
				lines := make([]string, len(recs))
				for k, rec := range recs {
					lines[k] = rec.String()
				}
				addTestRun(t, j, lines...)
				want = append(want, recs...)
			}
			slices.SortFunc(want, CompareRecords)

			out := filepath.Join(t.TempDir(), "sorted.txt")
			require.NoError(t, j.merge(context.Background(), out))
			got := validRecords(readLines(t, out))
			require.Equal(t, len(want), len(got))
			if len(want) > 0 {
				require.Equal(t, want, got)
			}

			// every pass divides the number of runs by maxOpen, rounding up
			passes := 0
			for n := runs; n > 1; n = (n + maxOpen - 1) / maxOpen {
				passes++
			}
			require.Equal(t, float64(passes), testutil.ToFloat64(j.metrics.MergePasses))
		})
	}
}

func TestMergeUnique(t *testing.T) {
	j := newTestJob(t, Config{Unique: true})
	addTestRun(t, j, "1. a", "2. b")
	addTestRun(t, j, "1. a", "2. b", "3. b")
	addTestRun(t, j, "1. a")

	out := filepath.Join(t.TempDir(), "sorted.txt")
	require.NoError(t, j.merge(context.Background(), out))
	require.Equal(t, []string{"1. a", "2. b", "3. b"}, readLines(t, out))
	require.Equal(t, 3.0, testutil.ToFloat64(j.metrics.DuplicatesDropped))
}

func TestMergeBatchCleanupOnError(t *testing.T) {
	j := newTestJob(t, Config{})
	a := addTestRun(t, j, "1. a", "2. b")
	b := addTestRun(t, j, "1. fine", "corrupt line")

	err := j.mergeBatch(context.Background(), []string{a, b})
	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	require.Equal(t, b, runErr.Path)
	require.Equal(t, "corrupt line", runErr.Line)

	// inputs and the partial output are gone
	entries, err := os.ReadDir(j.ws.Path())
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Zero(t, j.runs())
}

func TestMergeBatchMissingRun(t *testing.T) {
	j := newTestJob(t, Config{})
	a := addTestRun(t, j, "1. a")
	missing := filepath.Join(j.ws.Path(), "chunk_missing.txt")

	err := j.mergeBatch(context.Background(), []string{a, missing})
	require.ErrorIs(t, err, os.ErrNotExist)
	entries, err := os.ReadDir(j.ws.Path())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestMergeCanceled(t *testing.T) {
	j := newTestJob(t, Config{})
	addTestRun(t, j, "1. a")
	addTestRun(t, j, "2. b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, j.merge(ctx, filepath.Join(t.TempDir(), "sorted.txt")), context.Canceled)
}
