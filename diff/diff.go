// Package diff compares two sorted record streams and reports the records
// that appear in only one of them. Equal records are matched one to one, so
// two streams are equal as multisets exactly when no difference is reported.
package diff

import (
	"context"
	"errors"
	"fmt"

	"github.com/lanrat/linesort"
)

// Delta tells which stream a reported record belongs to.
type Delta int

const (
	// NEW is a record only found in the second stream (B)
	NEW Delta = iota // >
	// OLD is a record only found in the first stream (A)
	OLD // <
)

func (d Delta) String() string {
	switch d {
	case NEW:
		return ">"
	case OLD:
		return "<"
	default:
		return "?"
	}
}

// ResultFunc is called once for every record found in only one stream.
// Returning an error stops the diff.
type ResultFunc func(Delta, linesort.Record) error

// Result holds the totals of a diff.
type Result struct {
	ExtraA uint64 // records only in A
	ExtraB uint64 // records only in B
	TotalA uint64
	TotalB uint64
	Common uint64
}

// Equal reports whether both streams held the same records.
func (r *Result) Equal() bool {
	return r.ExtraA == 0 && r.ExtraB == 0
}

func (r *Result) String() string {
	return fmt.Sprintf("A: %d/%d\tB: %d/%d\tC: %d", r.ExtraA, r.TotalA, r.ExtraB, r.TotalB, r.Common)
}

// stream is one side of the diff and its current record
type stream struct {
	records <-chan linesort.Record
	errs    <-chan error
	cur     linesort.Record
	ok      bool
}

// next loads the following record. Once the stream is drained its error
// channel is read, so the producer must close it.
func (s *stream) next(ctx context.Context) error {
	select {
	case s.cur, s.ok = <-s.records:
	case <-ctx.Done():
		return ctx.Err()
	}
	if s.ok {
		return nil
	}
	select {
	case err := <-s.errs:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Records diffs two streams that are sorted by linesort.CompareRecords, such
// as the ones returned by linesort.ReadRecords. The order is not validated.
func Records(ctx context.Context, a, b <-chan linesort.Record, aErr, bErr <-chan error, resultFunc ResultFunc) (r Result, err error) {
	if ctx == nil || a == nil || b == nil || aErr == nil || bErr == nil || resultFunc == nil {
		return Result{}, errors.New("diff.Records() arguments must not be nil")
	}
	sa := &stream{records: a, errs: aErr}
	sb := &stream{records: b, errs: bErr}
	if err = sa.next(ctx); err != nil {
		return
	}
	if err = sb.next(ctx); err != nil {
		return
	}
	for sa.ok || sb.ok {
		var c int
		switch {
		case !sb.ok:
			c = -1
		case !sa.ok:
			c = 1
		default:
			c = linesort.CompareRecords(sa.cur, sb.cur)
		}
		switch {
		case c < 0:
			r.TotalA++
			r.ExtraA++
			if err = resultFunc(OLD, sa.cur); err != nil {
				return
			}
			err = sa.next(ctx)
		case c > 0:
			r.TotalB++
			r.ExtraB++
			if err = resultFunc(NEW, sb.cur); err != nil {
				return
			}
			err = sb.next(ctx)
		default:
			r.Common++
			r.TotalA++
			r.TotalB++
			if err = sa.next(ctx); err == nil {
				err = sb.next(ctx)
			}
		}
		if err != nil {
			return
		}
	}
	return
}

// Files diffs the records of two sorted files. Lines that are not records
// are skipped.
func Files(ctx context.Context, pathA, pathB string, resultFunc ResultFunc) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	// stops the readers if the diff returns early
	defer cancel()
	a, aErr := linesort.ReadRecords(ctx, pathA)
	b, bErr := linesort.ReadRecords(ctx, pathB)
	return Records(ctx, a, b, aErr, bErr, resultFunc)
}

// PrintDiff is a ResultFunc that prints every difference to stdout.
func PrintDiff(d Delta, r linesort.Record) error {
	_, err := fmt.Printf("%s %s\n", d, r)
	return err
}

// ResultChan returns a ResultFunc that sends every difference to the
// returned channel, for handling results in another goroutine.
// The caller closes the channel once the diff returns.
func ResultChan() (ResultFunc, chan *ChanResult) {
	c := make(chan *ChanResult, 1)
	f := func(d Delta, r linesort.Record) error {
		c <- &ChanResult{D: d, R: r}
		return nil
	}
	return f, c
}

// ChanResult is a single difference sent by a ResultChan function.
type ChanResult struct {
	D Delta
	R linesort.Record
}
