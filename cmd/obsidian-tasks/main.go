// Command obsidian-tasks queries task notes in an Obsidian vault.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nibzard/obsidian-tasks/cmd"
)

func main() {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	code := run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

// run executes the CLI and maps its error to an exit code.
func run(ctx context.Context, args []string) int {
	err := cmd.Run(ctx, args)
	if err == nil {
		return 0
	}
	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "\nInterrupted\n")
		return 130
	}
	var usageErr *cmd.UsageError
	if errors.As(err, &usageErr) {
		// Usage text was already printed.
		return 2
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
