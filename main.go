package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/grovetools/speechprep/cmd"
	"github.com/grovetools/speechprep/internal/pipeline"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, pipeline.ErrNoValidSamples) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
