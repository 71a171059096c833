package main

import (
	"os"

	"github.com/ds124wfegd/captioner/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
