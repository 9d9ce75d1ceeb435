// main is the entry point for the priorityx CLI.
package main

import (
	"fmt"
	"os"

	"github.com/priorityx/priorityx/cmd"
	"github.com/priorityx/priorityx/internal/iocache"
)

func main() {
	err := cmd.Execute()

	// Close cache connections before deciding the exit code so a failed run
	// still releases the database cleanly.
	iocache.CloseCaching()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
