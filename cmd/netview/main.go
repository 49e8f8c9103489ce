// Command netview lays out, filters and renders node/edge networks and keeps
// their view states as named snapshots.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/netview/internal/cli"
	"github.com/matzehuels/netview/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Stderr, os.Args[1:])
	stop()

	code := errors.ExitCode(err)
	if code != 0 && code != errors.ExitInterrupted {
		fmt.Fprintln(os.Stderr, "netview:", errors.UserMessage(err))
	}
	os.Exit(code)
}
