// Package main is the entry point for the chatgate gateway server.
package main

import (
	"fmt"
	"os"

	"chatgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
