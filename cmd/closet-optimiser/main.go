package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/constants"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(constants.ExitInterrupt)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(constants.ExitError)
	}
}
