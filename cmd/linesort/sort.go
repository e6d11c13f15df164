package main

import (
	"fmt"
	"time"

	"github.com/lanrat/linesort"
	"github.com/lanrat/linesort/internal/rlimit"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type sortCommand struct {
	app *app

	Input       string            `short:"i" long:"input" required:"true" description:"Input file path"`
	Output      string            `short:"o" long:"output" default:"sorted.txt" description:"Sorted output file path"`
	ConfigFile  string            `long:"config" description:"YAML config file, flags override its values"`
	ChunkSize   linesort.ByteSize `long:"chunk-size" description:"Bytes of input sorted in memory at once (e.g. 10M)"`
	MaxOpen     int               `long:"max-open" description:"Maximum number of runs merged at once"`
	Workers     int               `long:"workers" description:"Number of chunks sorted concurrently"`
	TempDir     string            `long:"temp-dir" description:"Directory for the sort workspace"`
	Unique      bool              `long:"unique" description:"Drop duplicate records"`
	MetricsFile string            `long:"metrics-file" description:"Write prometheus metrics to this file after sorting"`
	Quiet       bool              `short:"q" long:"quiet" description:"Log progress instead of drawing it"`
}

func (c *sortCommand) Execute(args []string) error {
	if err := prepareOutput(c.Output); err != nil {
		return err
	}
	if err := checkInput(c.Input); err != nil {
		return err
	}
	conf, err := c.config()
	if err != nil {
		return err
	}
	log, err := c.app.logger()
	if err != nil {
		return err
	}
	defer log.Sync()

	if limit, err := rlimit.RaiseOpenFiles(); err != nil {
		log.Warn("could not raise open file limit", zap.Error(err))
	} else {
		log.Debug("open file limit", zap.Uint64("limit", limit))
	}

	s, err := linesort.New(conf, c.app.progress(c.Quiet, log), log)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := s.Sort(c.app.ctx, c.Input, c.Output); err != nil {
		return fmt.Errorf("Unexpected error occurred: %w", err)
	}
	elapsed := time.Since(start)

	if c.MetricsFile != "" {
		reg := prometheus.NewRegistry()
		if err := s.Metrics().Register(reg); err != nil {
			return err
		}
		if err := prometheus.WriteToTextfile(c.MetricsFile, reg); err != nil {
			return err
		}
	}
	fmt.Printf("Sorting is successfully finished. It took %s\n", elapsed)
	return nil
}

// config loads the config file, if any, and applies the flags on top
func (c *sortCommand) config() (*linesort.Config, error) {
	conf := &linesort.Config{}
	if c.ConfigFile != "" {
		var err error
		if conf, err = linesort.LoadConfig(c.ConfigFile); err != nil {
			return nil, err
		}
	}
	if c.ChunkSize != 0 {
		conf.ChunkSize = c.ChunkSize
	}
	if c.MaxOpen != 0 {
		conf.MaxOpenRuns = c.MaxOpen
	}
	if c.Workers != 0 {
		conf.NumWorkers = c.Workers
	}
	if c.TempDir != "" {
		conf.TempDir = c.TempDir
	}
	if c.Unique {
		conf.Unique = true
	}
	return conf, nil
}
