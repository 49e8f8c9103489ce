package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/layout"
	"github.com/matzehuels/netview/pkg/viewstate"
)

// layoutCommand creates the layout command for running the force layout
// headlessly.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   viewFlags
		save    string
		perturb bool
		reset   bool
	)

	cmd := &cobra.Command{
		Use:               "layout <session>",
		ValidArgsFunction: c.completeSession,
		Short:             "Run the force layout and optionally save it as a snapshot",
		Long: `Run the force layout of a view until it settles (or --ticks is reached) and
print the resulting view statistics. With --save the settled layout is pinned
and stored as a new snapshot.

Layout profiles: ` + strings.Join(layout.Names(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withView(cmd.Context(), args[0], flags, func(ctx context.Context, v *viewstate.ViewState) error {
				if reset || perturb {
					op := v.Perturb
					if reset {
						op = v.ResetLayout
					}
					if err := op(); err != nil {
						return err
					}
					if _, err := c.converge(ctx, v, flags.ticks); err != nil {
						return err
					}
				}

				if save != "" {
					return c.saveView(ctx, v, save)
				}
				h := v.Header()
				printInfo("%s at %s", StyleHighlight.Render(h.SessionName), describeSnapshot(h))
				printViewStats(h)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&save, "save", "", "save the settled layout as a snapshot with this name")
	cmd.Flags().BoolVar(&perturb, "perturb", false, "restart an existing layout at full energy")
	cmd.Flags().BoolVar(&reset, "reset", false, "discard positions and lay out from scratch")

	return cmd
}
