package main

// Entry point: wires up and executes the Cobra command tree.

import (
	"fmt"
	"os"

	"trustline-monitor/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
