package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
)

func main() {
	ctx, stop := interruptContext(context.Background(), slog.Default())

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		// Already reported through the notifier.
		if errors.Is(err, errReported) {
			os.Exit(1)
		}

		exitOnError(err)
	}
}
