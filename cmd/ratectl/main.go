// Package main is the entry point for the ratectl CLI.
package main

import (
	"os"

	"github.com/warp/rate-engine/cmd/ratectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
