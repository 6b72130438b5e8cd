package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/FO214/remess/cmd/remess/cmd"
)

func main() {
	os.Exit(run(context.Background()))
}

func run(parent context.Context) int {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled:
		// 128 + SIGINT: report the interrupt the way a shell would.
		return 130
	default:
		return 1
	}
}
