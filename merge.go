package linesort

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lanrat/linesort/queue"
	"github.com/lanrat/linesort/workspace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// merge repeatedly merges batches of at most MaxOpenRuns runs until a single
// run is left, then moves it to outputPath.
// Batches are merged one at a time so that no more than MaxOpenRuns runs
// (plus the run being written) are ever open.
func (j *job) merge(ctx context.Context, outputPath string) error {
	for pass := 1; ; pass++ {
		runs, err := j.ws.Runs()
		if err != nil {
			return NewDiskError(err, "list runs", j.ws.Path())
		}
		switch len(runs) {
		case 0:
			return fmt.Errorf("workspace %s holds no runs", j.ws.Path())
		case 1:
			if err := workspace.Move(runs[0], outputPath); err != nil {
				return NewDiskError(err, "move output", outputPath)
			}
			j.metrics.RecordsWritten.Add(float64(j.runCount(runs[0])))
			return nil
		}

		j.progress.Line(fmt.Sprintf("Merging %d chunks (pass %d)...", len(runs), pass))
		j.log.Info("merge pass", zap.Int("pass", pass), zap.Int("runs", len(runs)))
		j.metrics.MergePasses.Inc()
		for i := 0; i < len(runs); i += j.config.MaxOpenRuns {
			batch := runs[i:min(i+j.config.MaxOpenRuns, len(runs))]
			if len(batch) == 1 {
				// nothing to merge it with, it takes part in the next pass
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := j.mergeBatch(ctx, batch); err != nil {
				return err
			}
		}
	}
}

// mergeBatch k-way merges the runs in paths into a single new run.
// Whatever happens, every run in paths is closed and deleted.
func (j *job) mergeBatch(ctx context.Context, paths []string) (err error) {
	bufferSize := int(j.config.BufferSize)
	readers := make([]*runReader, 0, len(paths))
	var w *runWriter
	defer func() {
		for _, r := range readers {
			err = multierr.Append(err, r.Close())
		}
		if w != nil {
			err = multierr.Append(err, w.Close())
			if err != nil {
				os.Remove(w.name)
			}
		}
		for _, p := range paths {
			if rmErr := os.Remove(p); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				err = multierr.Append(err, NewDiskError(rmErr, "remove run", p))
			}
			j.dropRun(p)
		}
	}()

	pq := queue.NewPriorityQueueSize(len(paths), func(a, b *runReader) int {
		return CompareRecords(a.next, b.next)
	})
	// start the merge by preloading the first record of every run
	for _, p := range paths {
		r, err := openRun(p, bufferSize)
		if err != nil {
			return err
		}
		readers = append(readers, r)
		ok, err := r.advance()
		if err != nil {
			return err
		}
		if ok {
			pq.Push(r)
		}
	}

	f, err := j.ws.NewRun()
	if err != nil {
		return NewDiskError(err, "create run", j.ws.Path())
	}
	w = newRunWriter(f, bufferSize)
	uniq := uniqFilter{enabled: j.config.Unique}
	var dups int64
	for n := 0; pq.Len() > 0; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		r := pq.Peek()
		if uniq.skip(r.next) {
			dups++
		} else if err := w.Write(r.next); err != nil {
			return err
		}
		more, err := r.advance()
		if err != nil {
			return err
		}
		if more {
			pq.PeekUpdate()
		} else {
			pq.Pop()
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	j.metrics.DuplicatesDropped.Add(float64(dups))
	j.addRun(w.name, w.count)
	j.log.Debug("batch merged", zap.Int("runs", len(paths)), zap.Int64("records", w.count))
	return nil
}
