package main

import (
	"os"

	"github.com/nadia/taskwise/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
