// Package main is the entry point for the frontdesk binary.
// Its sole responsibility is running the root command; wiring lives in
// internal/cli.
package main

import (
	"log/slog"
	"os"

	"github.com/pkordes/frontdesk/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
