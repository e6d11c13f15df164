package linesort

import (
	"context"
	"fmt"
	"sync"

	"github.com/lanrat/linesort/internal/rlimit"
	"github.com/lanrat/linesort/workspace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// records handled between two checks of the context
const ctxCheckInterval = 1 << 12

// file descriptors kept free for the process itself (stdio, logs, the input)
const reservedFiles = 16

// Sorter sorts record files with an external merge sort.
// A Sorter may be reused, but two Sorts must not run at the same time with
// the same TempDir and WorkspaceName since they would share a workspace.
type Sorter struct {
	config   Config
	progress Logger
	log      *zap.Logger
	metrics  *Metrics
}

// New returns a new Sorter.
// config can be nil to use the defaults, or only set the non-default values desired.
// progress receives human readable progress and log structured diagnostics,
// either may be nil.
func New(config *Config, progress Logger, log *zap.Logger) (*Sorter, error) {
	c := mergeConfig(config)
	if err := c.validate(); err != nil {
		return nil, err
	}
	if err := checkOpenFiles(c); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = NopLogger{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sorter{
		config:   *c,
		progress: progress,
		log:      log,
		metrics:  newMetrics(),
	}, nil
}

// checkOpenFiles makes sure a merge batch and a wave of chunk workers fit in
// the open file limit of the process.
func checkOpenFiles(c *Config) error {
	limit, err := rlimit.OpenFiles()
	if err != nil || limit == 0 {
		// nothing to check against
		return nil
	}
	// a merge holds its inputs and one output, a chunk worker its input and its run
	field, value, files := "MaxOpenRuns", c.MaxOpenRuns, c.MaxOpenRuns+1
	if 2*c.NumWorkers > files {
		field, value, files = "NumWorkers", c.NumWorkers, 2*c.NumWorkers
	}
	need := uint64(files + reservedFiles)
	if need > limit {
		return &ConfigError{
			Field:  field,
			Value:  value,
			Reason: fmt.Sprintf("needs %d open files but the process limit is %d", need, limit),
		}
	}
	return nil
}

// Config returns the configuration in use, defaults included.
func (s *Sorter) Config() Config {
	return s.config
}

// Metrics returns the counters updated by every Sort.
func (s *Sorter) Metrics() *Metrics {
	return s.metrics
}

// Sort sorts the records of inputPath into outputPath.
// Lines that are not records are dropped. The workspace is removed before
// Sort returns, whether it succeeded or not.
func (s *Sorter) Sort(ctx context.Context, inputPath, outputPath string) (err error) {
	dir := workspace.Dir(s.config.TempDir, s.config.WorkspaceName)
	ws, err := workspace.Create(dir)
	if err != nil {
		return NewDiskError(err, "create workspace", dir)
	}
	defer func() {
		if rmErr := ws.Remove(); rmErr != nil {
			err = multierr.Append(err, NewDiskError(rmErr, "remove workspace", dir))
		}
	}()

	log := s.log.With(zap.String("input", inputPath), zap.String("output", outputPath))
	j := &job{
		Sorter: s,
		log:    log,
		ws:     ws,
		counts: make(map[string]int64),
	}
	log.Info("partitioning",
		zap.String("workspace", dir),
		zap.Stringer("chunk_size", s.config.ChunkSize),
		zap.Int("workers", s.config.NumWorkers))
	if err := j.partition(ctx, inputPath); err != nil {
		return err
	}
	log.Info("merging", zap.Int("runs", j.runs()), zap.Int("max_open_runs", s.config.MaxOpenRuns))
	if err := j.merge(ctx, outputPath); err != nil {
		return err
	}
	log.Info("sorted")
	return nil
}

// SortFile sorts inputPath into outputPath without any logging.
func SortFile(ctx context.Context, inputPath, outputPath string, config *Config) error {
	s, err := New(config, nil, nil)
	if err != nil {
		return err
	}
	return s.Sort(ctx, inputPath, outputPath)
}

// job holds the state of a single Sort
type job struct {
	*Sorter
	log *zap.Logger
	ws  *workspace.Workspace

	mu     sync.Mutex
	counts map[string]int64 // records in each live run
}

func (j *job) addRun(path string, records int64) {
	j.mu.Lock()
	j.counts[path] = records
	j.mu.Unlock()
	j.metrics.RunsCreated.Inc()
}

func (j *job) dropRun(path string) {
	j.mu.Lock()
	delete(j.counts, path)
	j.mu.Unlock()
}

func (j *job) runCount(path string) int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.counts[path]
}

func (j *job) runs() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.counts)
}
