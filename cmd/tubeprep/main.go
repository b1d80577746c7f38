// Package main provides the CLI entry point for tubeprep.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const (
	appName    = "tubeprep"
	appVersion = "0.3.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string) int {
	cmd, cc := newRootCommand()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	defer cc.close()
	if err == nil {
		return 0
	}
	cc.reportError(cmd, err)
	return 1
}
