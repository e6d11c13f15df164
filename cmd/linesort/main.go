// Command linesort sorts, generates, checks and compares files of
// "<integer>. <payload>" lines.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/lanrat/linesort"
	"github.com/lanrat/linesort/internal/logger"
	"github.com/lanrat/linesort/progress"
	"go.uber.org/zap"
)

type options struct {
	Log logger.Flags `group:"Logging Options"`
}

// app is shared by every command
type app struct {
	ctx  context.Context
	opts options
}

func (a *app) logger() (*zap.Logger, error) {
	return a.opts.Log.Open()
}

// progress draws on the terminal unless quiet, then it goes to the log
func (a *app) progress(quiet bool, log *zap.Logger) linesort.Logger {
	if quiet {
		return progress.NewZap(log)
	}
	return progress.NewConsole(os.Stdout)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context) int {
	a := &app{ctx: ctx}
	parser := flags.NewParser(&a.opts, flags.Default)
	parser.AddCommand("sort", "Sort a file",
		"Sorts the records of the input file by payload, then by number. Lines that are not records are dropped.",
		&sortCommand{app: a})
	parser.AddCommand("generate", "Generate a file",
		"Writes a file of random records of about the requested size.",
		&generateCommand{app: a})
	parser.AddCommand("check", "Check that a file is sorted",
		"Reports the first pair of records that is out of order.",
		&checkCommand{app: a})
	parser.AddCommand("diff", "Compare two sorted files",
		"Prints the records found in only one of two sorted files.",
		&diffCommand{app: a})

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}
	return 0
}

var (
	errOutputDir   = errors.New("Error during specified output directory creation (either invalid name or access denied)")
	errOutputName  = errors.New("Invalid output file name")
	errInputAbsent = errors.New("Input file is not found")
)

// prepareOutput creates the directory of path and checks its file name
func prepareOutput(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errOutputDir
		}
	}
	name := filepath.Base(path)
	if path == "" || strings.HasSuffix(path, string(filepath.Separator)) ||
		name == "." || name == ".." || strings.ContainsRune(name, 0) {
		return errOutputName
	}
	return nil
}

func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return errInputAbsent
	}
	return nil
}
