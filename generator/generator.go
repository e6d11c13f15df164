// Package generator writes files of random "<integer>. <payload>" records,
// used to feed the sorter with realistic input of a given size.
package generator

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize       = 1000
	channelCapacity = 1000
	writeBufferSize = 64 * 1024

	// files below this size are produced by a single producer
	parallelThreshold = 100 * 1024 * 1024
	maxProducers      = 4

	// numbers are drawn below this share of the estimated line count,
	// so some numbers repeat too
	numberRatio = 0.75
)

// Observer is told how much of the target size has been written.
type Observer interface {
	// Observe receives the written fraction of the target, from 0 to 1.
	Observe(fraction float64)
	// Finish is called once after the last line was written.
	Finish()
}

type nopObserver struct{}

func (nopObserver) Observe(float64) {}
func (nopObserver) Finish()         {}

// Generator produces about size bytes of records.
type Generator struct {
	w         io.Writer
	size      int64
	producers int
	seed      int64
	observer  Observer

	maxNumber int64
	pools     *pools
}

// Option configures a Generator.
type Option func(*Generator)

// WithObserver reports progress to o.
func WithObserver(o Observer) Option {
	return func(g *Generator) {
		g.observer = o
	}
}

// WithProducers overrides the number of concurrent line producers.
func WithProducers(n int) Option {
	return func(g *Generator) {
		g.producers = n
	}
}

// WithSeed makes the output reproducible when a single producer is used.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// New returns a Generator writing to w. The output stops at the first line
// that reaches size bytes, so it may be slightly larger.
func New(w io.Writer, size int64, opts ...Option) (*Generator, error) {
	if size <= 0 {
		return nil, errors.New("size must be positive")
	}
	g := &Generator{
		w:         w,
		size:      size,
		producers: defaultProducers(size),
		seed:      time.Now().UnixNano(),
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.producers < 1 {
		return nil, errors.New("at least one producer is needed")
	}

	lines := estimateLines(size)
	g.maxNumber = max(2, int64(float64(lines)*numberRatio))
	poolSize := int(math.Ceil(math.Cbrt(float64(lines) * numberRatio)))
	g.pools = newPools(rand.New(rand.NewSource(g.seed)), max(1, poolSize))
	return g, nil
}

func defaultProducers(size int64) int {
	if size < parallelThreshold {
		return 1
	}
	return min(maxProducers, runtime.NumCPU())
}

// estimateLines guesses how many lines fit in size bytes from a typical line
func estimateLines(size int64) int64 {
	sample := len("100. ") + len("Handcrafted Granite Keyboard") + len(" Ergonomic Concrete") + 1
	return int64(math.Ceil(float64(size) / float64(sample)))
}

// Generate writes the records. Producers build batches of lines
// concurrently while a single consumer writes them out.
func (g *Generator) Generate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batches := make(chan []string, channelCapacity)
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var producers errgroup.Group
		share := g.size / int64(g.producers)
		for i := 0; i < g.producers; i++ {
			target := share
			if i == 0 {
				target += g.size % int64(g.producers)
			}
			r := rand.New(rand.NewSource(g.seed + int64(i) + 1))
			producers.Go(func() error {
				return g.produce(ctx, r, target, batches)
			})
		}
		err := producers.Wait()
		close(batches)
		return err
	})

	group.Go(func() error {
		return g.consume(ctx, batches)
	})

	return group.Wait()
}

// produce sends batches of lines until target bytes were produced
func (g *Generator) produce(ctx context.Context, r *rand.Rand, target int64, out chan<- []string) error {
	var produced int64
	for produced < target {
		batch := make([]string, 0, batchSize)
		for len(batch) < batchSize && produced < target {
			line := g.line(r)
			produced += int64(len(line)) + 1
			batch = append(batch, line)
		}
		select {
		case out <- batch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// line returns a random record. Every tenth number only gets a product name.
func (g *Generator) line(r *rand.Rand) string {
	n := r.Int63n(g.maxNumber-1) + 1
	p := g.pools
	line := strconv.FormatInt(n, 10) + ". " + p.products[r.Intn(len(p.products))]
	if n%10 == 0 {
		return line
	}
	return line + " " + p.adjectives[r.Intn(len(p.adjectives))] + " " + p.materials[r.Intn(len(p.materials))]
}

// consume writes every batch and reports progress after each one
func (g *Generator) consume(ctx context.Context, in <-chan []string) error {
	w := bufio.NewWriterSize(g.w, writeBufferSize)
	var written int64
	for {
		select {
		case batch, ok := <-in:
			if !ok {
				if err := w.Flush(); err != nil {
					return err
				}
				g.observer.Finish()
				return nil
			}
			for _, line := range batch {
				if _, err := w.WriteString(line); err != nil {
					return err
				}
				if err := w.WriteByte('\n'); err != nil {
					return err
				}
				written += int64(len(line)) + 1
			}
			g.observer.Observe(float64(written) / float64(g.size))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// GenerateFile creates (or truncates) path and fills it with about size
// bytes of records.
func GenerateFile(ctx context.Context, path string, size int64, opts ...Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	g, err := New(f, size, opts...)
	if err != nil {
		return err
	}
	return g.Generate(ctx)
}
