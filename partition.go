package linesort

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// partition splits the input into chunks of about ChunkSize bytes, sorts each
// one in memory and saves it as a run. Chunks are processed in waves of
// NumWorkers; a wave must finish before the next one starts.
func (j *job) partition(ctx context.Context, inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return NewDiskError(err, "stat input", inputPath)
	}
	if info.IsDir() {
		return fmt.Errorf("input %s is a directory", inputPath)
	}
	chunkSize := int64(j.config.ChunkSize)
	chunks := int((info.Size() + chunkSize - 1) / chunkSize)

	if chunks == 0 {
		// an empty run flows through the merge like any other sort and
		// becomes the (empty) output
		j.progress.Line("Input is empty")
		return j.saveRun(nil)
	}
	if chunks == 1 {
		j.progress.Line("Sorting in memory (only one chunk)...")
	} else {
		j.progress.Line(fmt.Sprintf("Splitting into %d chunks...", chunks))
		j.progress.Mark()
	}

	workers := j.config.NumWorkers
	for start := 0; start < chunks; start += workers {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+workers, chunks)
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				return j.sortChunk(gctx, inputPath, i)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if chunks > 1 {
			j.progress.Overwrite(fmt.Sprintf("%d/%d chunks created", end, chunks))
		}
	}
	return nil
}

// sortChunk reads, sorts and saves a single chunk
func (j *job) sortChunk(ctx context.Context, inputPath string, index int) error {
	recs, err := j.readChunk(ctx, inputPath, index)
	if err != nil {
		return err
	}
	slices.SortFunc(recs, CompareRecords)
	if j.config.Unique {
		var dropped int
		recs, dropped = uniqRecords(recs)
		j.metrics.DuplicatesDropped.Add(float64(dropped))
	}
	j.log.Debug("chunk sorted", zap.Int("chunk", index), zap.Int("records", len(recs)))
	return j.saveRun(recs)
}

// readChunk returns the valid records of chunk index. The chunk owns every
// line that starts inside (start, end] of its byte window, plus the line at
// offset 0 for the first chunk: a line starting exactly on a boundary belongs
// to the earlier chunk, so every chunk after the first discards the line it
// lands in, and every chunk keeps reading until the next line starts past its
// end.
func (j *job) readChunk(ctx context.Context, inputPath string, index int) ([]Record, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, NewDiskError(err, "open input", inputPath)
	}
	defer f.Close()

	chunkSize := int64(j.config.ChunkSize)
	start := int64(index) * chunkSize
	end := start + chunkSize
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, NewDiskError(err, "seek input", inputPath)
	}
	r := bufio.NewReaderSize(f, int(j.config.BufferSize))

	pos := start
	if index > 0 {
		_, n, err := readLine(r, true)
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, NewDiskError(err, "read input", inputPath)
		}
		pos += int64(n)
	}

	var recs []Record
	var lines, dropped int64
	for pos <= end {
		if lines%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line, n, err := readLine(r, true)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewDiskError(err, "read input", inputPath)
		}
		pos += int64(n)
		lines++
		if rec, ok := ParseRecord(line); ok {
			recs = append(recs, rec)
		} else {
			dropped++
		}
	}
	j.metrics.LinesRead.Add(float64(lines))
	j.metrics.LinesDropped.Add(float64(dropped))
	return recs, nil
}

// saveRun writes already sorted records to a new run in the workspace
func (j *job) saveRun(recs []Record) error {
	f, err := j.ws.NewRun()
	if err != nil {
		return NewDiskError(err, "create run", j.ws.Path())
	}
	w := newRunWriter(f, int(j.config.BufferSize))
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			w.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	j.addRun(w.name, w.count)
	return nil
}
