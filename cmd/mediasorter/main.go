package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mediasorter/internal/services"
)

// errFilesFailed marks a run that finished but left failed files behind.
var errFilesFailed = errors.New("some files failed")

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, services.ErrConfiguration):
		return 2
	default:
		return 1
	}
}
