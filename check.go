package linesort

import (
	"bufio"
	"context"
	"io"
	"os"
)

// CheckResult describes a scanned record file.
type CheckResult struct {
	Records int64 // valid records
	Invalid int64 // lines that are not records
	// Disorder is the first pair of adjacent records out of order, nil if
	// the file is sorted.
	Disorder *OrderError
}

// Sorted reports whether no records were found out of order.
func (r CheckResult) Sorted() bool {
	return r.Disorder == nil
}

// CheckSorted scans path and reports whether its records are in sorted order.
// Lines that are not records are counted and otherwise ignored, as Sort would
// drop them.
func CheckSorted(ctx context.Context, path string) (CheckResult, error) {
	var res CheckResult
	var prior Record
	err := scanLines(ctx, path, func(line string, n int64) error {
		rec, ok := ParseRecord(line)
		if !ok {
			res.Invalid++
			return nil
		}
		if res.Records > 0 && res.Disorder == nil && CompareRecords(prior, rec) > 0 {
			res.Disorder = &OrderError{Line: n, Prev: prior, Next: rec}
		}
		prior = rec
		res.Records++
		return nil
	})
	return res, err
}

// ReadRecords streams the valid records of path in file order.
// The error channel receives at most one error and is closed, like the
// record channel, when reading stops.
func ReadRecords(ctx context.Context, path string) (<-chan Record, <-chan error) {
	out := make(chan Record, 1000)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer close(out)
		err := scanLines(ctx, path, func(line string, _ int64) error {
			rec, ok := ParseRecord(line)
			if !ok {
				return nil
			}
			select {
			case out <- rec:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errc <- err
		}
	}()
	return out, errc
}

// scanLines calls fn with every line of path and its 1-based number
func scanLines(ctx context.Context, path string, fn func(line string, n int64) error) error {
	f, err := os.Open(path)
	if err != nil {
		return NewDiskError(err, "open", path)
	}
	defer f.Close()
	r := bufio.NewReaderSize(f, int(defaultBufferSize))
	for n := int64(1); ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line, _, err := readLine(r, true)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return NewDiskError(err, "read", path)
		}
		if err := fn(line, n); err != nil {
			return err
		}
	}
}
