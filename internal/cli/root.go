package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/observability"
)

// Execute builds the command tree and runs it with args.
//
// Logs go to w at info level. --verbose switches to debug and also logs
// every filter pass, layout run, store call and HTTP request.
func Execute(ctx context.Context, w io.Writer, args []string) error {
	var verbose bool

	c := New(w, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
			observability.Register(observability.LogHooks{Logger: c.Logger})
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
