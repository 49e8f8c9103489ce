package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/snapshot"
	"github.com/matzehuels/netview/pkg/viewstate"
)

// snapshotCommand creates the snapshot command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snap"},
		Short:   "Save, rename and delete view snapshots",
	}

	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotRenameCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())

	return cmd
}

func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "list <session>",
		ValidArgsFunction: c.completeSession,
		Short:             "List the snapshots of a session",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sess, err := resolveSession(ctx, st, args[0])
			if err != nil {
				return err
			}
			if len(sess.Snapshots) == 0 {
				printInfo("%s has no snapshots", sess.Name)
				return nil
			}
			for i, s := range sess.Snapshots {
				printKeyValue(strconv.Itoa(i), s.Name+StyleDim.Render(snapshotSummary(s)))
			}
			return nil
		},
	}
}

func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:               "save <session> [name]",
		ValidArgsFunction: c.completeSession,
		Short:             "Lay out a view and save it as a new snapshot",
		Long: `Open a view (optionally starting from an existing snapshot), apply filters and
bindings, run the layout and save the result as a new snapshot. Without a name
the current time is used.

Examples:
  netview snapshot save karate
  netview snapshot save karate "clubs" --bind nodeColor=node.club
  netview snapshot save 1 big --filter "node.degree>=5" --ticks 500`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			return c.withView(cmd.Context(), args[0], flags, func(ctx context.Context, v *viewstate.ViewState) error {
				return c.saveView(ctx, v, name)
			})
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *CLI) snapshotRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rename <session> <index> <name>",
		ValidArgsFunction: c.completeSession,
		Short:             "Rename a snapshot",
		Args:              cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			flags := viewFlags{snapshot: idx}
			return c.withView(cmd.Context(), args[0], flags, func(ctx context.Context, v *viewstate.ViewState) error {
				old := v.Header().SnapshotName
				if err := v.Rename(ctx, args[2]); err != nil {
					return err
				}
				printSuccess("Renamed snapshot %s %s %s", old, iconArrow, StyleHighlight.Render(args[2]))
				return nil
			})
		},
	}
}

func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <session> <index>",
		ValidArgsFunction: c.completeSession,
		Aliases:           []string{"rm"},
		Short:             "Delete a snapshot",
		Args:              cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			flags := viewFlags{snapshot: idx}
			return c.withView(cmd.Context(), args[0], flags, func(ctx context.Context, v *viewstate.ViewState) error {
				name := v.Header().SnapshotName
				if err := v.DeleteSnapshot(ctx); err != nil {
					return err
				}
				printSuccess("Deleted snapshot %s", name)
				return nil
			})
		},
	}
}

// withView opens the store and a view on ref, runs fn and closes both.
func (c *CLI) withView(ctx context.Context, ref string, flags viewFlags, fn func(context.Context, *viewstate.ViewState) error) error {
	st, s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	v, err := c.openView(ctx, st, s, ref, flags)
	if err != nil {
		return err
	}
	defer v.Close()

	if flags.ticks == 0 {
		flags.ticks = s.Layout.MaxTicks
	}
	if flags.ticks > 0 && (flags.snapshot == snapshot.None || v.Dirty()) {
		if _, err := c.converge(ctx, v, flags.ticks); err != nil {
			return err
		}
	}
	return fn(ctx, v)
}

// saveView sticks the layout and saves it as a new snapshot.
func (c *CLI) saveView(ctx context.Context, v *viewstate.ViewState, name string) error {
	if err := v.Stick(); err != nil {
		return err
	}
	idx, err := v.Save(ctx, name)
	if err != nil {
		return err
	}
	h := v.Header()
	printSuccess("Saved snapshot %d %s", idx, StyleHighlight.Render(h.SnapshotName))
	printViewStats(h)
	return nil
}

func parseIndex(s string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid snapshot index %q", s)
	}
	return idx, nil
}

// describeSnapshot renders "name (#idx)" or the placeholder for no snapshot.
func describeSnapshot(h viewstate.Header) string {
	if h.Snapshot == snapshot.None {
		return h.SnapshotName
	}
	return fmt.Sprintf("%s (#%d)", h.SnapshotName, h.Snapshot)
}
