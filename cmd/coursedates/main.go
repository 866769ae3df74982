// Package main is the entry point for the coursedates CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/coursedates/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
