// Command tj is a personal trading journal and risk calculator.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"trading-journal/internal/cli"
	"trading-journal/internal/errors"
)

func main() {
	app := &cli.App{}
	root := cli.NewRootCmd(app)

	err := root.Execute()
	if cerr := app.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil {
		return
	}

	if errors.Is(err, errors.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "Cancelled.")
		os.Exit(1)
	}
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, errors.ErrGuardrailBlocked) {
		os.Exit(2)
	}
	os.Exit(1)
}
