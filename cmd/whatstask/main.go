// Package main is the entry point for the whatstask CLI.
package main

import (
	"fmt"
	"os"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := cli.ResolveDataDir(args, os.Getenv, cwd)
	container, err := app.New(dir)
	if err != nil {
		// Help and version still work when the data directory is unusable.
		if canRunWithoutContainer(args) {
			return cli.NewRootCommand(nil, version).Execute()
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}

	rootCmd := cli.NewRootCommand(container, version)
	execErr := rootCmd.Execute()
	if closeErr := container.Close(); closeErr != nil && execErr == nil {
		return closeErr
	}
	return execErr
}

func canRunWithoutContainer(args []string) bool {
	if len(args) > 0 && args[0] == "help" {
		return true
	}
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "--version" || arg == "-v" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}
