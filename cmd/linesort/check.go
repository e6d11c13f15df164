package main

import (
	"errors"
	"fmt"

	"github.com/lanrat/linesort"
	"github.com/lanrat/linesort/diff"
)

type checkCommand struct {
	app *app

	Args struct {
		File string `positional-arg-name:"FILE" description:"File to check"`
	} `positional-args:"yes" required:"yes"`
}

func (c *checkCommand) Execute(args []string) error {
	res, err := linesort.CheckSorted(c.app.ctx, c.Args.File)
	if err != nil {
		return err
	}
	fmt.Printf("%d records, %d invalid lines\n", res.Records, res.Invalid)
	if !res.Sorted() {
		return res.Disorder
	}
	fmt.Println("sorted")
	return nil
}

type diffCommand struct {
	app *app

	Quiet bool `short:"q" long:"quiet" description:"Only print the totals"`
	Args  struct {
		A string `positional-arg-name:"A" description:"First sorted file"`
		B string `positional-arg-name:"B" description:"Second sorted file"`
	} `positional-args:"yes" required:"yes"`
}

var errFilesDiffer = errors.New("files differ")

func (c *diffCommand) Execute(args []string) error {
	resultFunc := diff.PrintDiff
	if c.Quiet {
		resultFunc = func(diff.Delta, linesort.Record) error { return nil }
	}
	res, err := diff.Files(c.app.ctx, c.Args.A, c.Args.B, resultFunc)
	if err != nil {
		return err
	}
	fmt.Println(res.String())
	if !res.Equal() {
		return errFilesDiffer
	}
	return nil
}
