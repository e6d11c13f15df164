package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lanrat/linesort"
	"github.com/lanrat/linesort/generator"
	"github.com/lanrat/linesort/progress"
)

type generateCommand struct {
	app *app

	Output    string            `short:"o" long:"output" default:"./generated.txt" description:"Generated file path"`
	Size      linesort.ByteSize `short:"s" long:"size" required:"true" description:"Generated file size, a number of bytes with optional K, M and G suffixes"`
	Producers int               `long:"producers" description:"Number of concurrent line producers (default depends on the size)"`
	Seed      int64             `long:"seed" description:"Random seed, reproducible with a single producer"`
}

func (c *generateCommand) Execute(args []string) error {
	if err := prepareOutput(c.Output); err != nil {
		return err
	}
	if c.Size <= 0 {
		return errors.New("size must be positive")
	}
	opts := []generator.Option{generator.WithObserver(progress.NewBar(os.Stdout))}
	if c.Producers != 0 {
		opts = append(opts, generator.WithProducers(c.Producers))
	}
	if c.Seed != 0 {
		opts = append(opts, generator.WithSeed(c.Seed))
	}

	start := time.Now()
	if err := generator.GenerateFile(c.app.ctx, c.Output, int64(c.Size), opts...); err != nil {
		return fmt.Errorf("Unexpected error occurred: %w", err)
	}
	fmt.Printf("Generation is successfully finished. It took %s\n", time.Since(start))
	return nil
}
