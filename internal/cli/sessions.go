package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/fields"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/snapshot"
)

// sessionsCommand creates the sessions command.
func (c *CLI) sessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session", "ls"},
		Short:   "List and manage stored sessions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.listSessions(cmd.Context())
		},
	}

	cmd.AddCommand(c.sessionsShowCommand())
	cmd.AddCommand(c.sessionsRenameCommand())
	cmd.AddCommand(c.sessionsDeleteCommand())

	return cmd
}

func (c *CLI) listSessions(ctx context.Context) error {
	st, _, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	headers, err := st.SessionHeaders(ctx)
	if err != nil {
		return err
	}
	if len(headers) == 0 {
		printInfo("No sessions stored")
		printNextStep("Import one", appName+" import <file>")
		return nil
	}
	fmt.Fprintln(stdout, sessionTable(headers, time.Now()))
	return nil
}

// sessionTable renders the listing; the first column is the reference
// accepted wherever a session argument is expected.
func sessionTable(headers []session.Header, now time.Time) string {
	rows := make([][]string, len(headers))
	for i, h := range headers {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			h.Name,
			strconv.Itoa(h.Nodes),
			strconv.Itoa(h.Edges),
			strconv.Itoa(len(h.Snapshots)),
			formatRelativeTime(h.UpdatedAt, now),
			h.ID,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Name", "Nodes", "Edges", "Snapshots", "Updated", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col >= 5:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func (c *CLI) sessionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <session>",
		ValidArgsFunction: c.completeSession,
		Short:             "Show a session's fields and snapshots",
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
			showSession(sess, fields.Classifier{})
			return nil
		},
	}
}

func showSession(sess *session.Session, cls fields.Classifier) {
	ds := sess.Dataset()

	fmt.Fprintln(stdout, StyleTitle.Render(sess.Name))
	printKeyValue("id", sess.ID)
	printKeyValue("nodes", strconv.Itoa(ds.NodeCount()))
	printKeyValue("edges", strconv.Itoa(ds.EdgeCount()))
	if ds.Dropped > 0 {
		printKeyValue("dropped", strconv.Itoa(ds.Dropped))
	}
	if !sess.UpdatedAt.IsZero() {
		printKeyValue("updated", sess.UpdatedAt.Format(time.RFC3339))
	}

	printNewline()
	fmt.Fprintln(stdout, StyleTitle.Render("Fields"))
	for _, f := range cls.Classify(ds) {
		printKeyValue(f.Key(), describeField(f))
	}

	printNewline()
	fmt.Fprintln(stdout, StyleTitle.Render("Snapshots"))
	if len(sess.Snapshots) == 0 {
		printDetail("none")
	}
	for i, s := range sess.Snapshots {
		printKeyValue(strconv.Itoa(i), s.Name+StyleDim.Render(snapshotSummary(s)))
	}
}

func describeField(f fields.Field) string {
	if d, ok := f.Domain(); ok {
		return fmt.Sprintf("numeric [%s, %s]", strconv.FormatFloat(d.Min, 'g', 6, 64), strconv.FormatFloat(d.Max, 'g', 6, 64))
	}
	groups := f.Groups()
	if len(groups) > 6 {
		return fmt.Sprintf("categorical, %d groups (%s, …)", len(groups), strings.Join(groups[:6], ", "))
	}
	return fmt.Sprintf("categorical (%s)", strings.Join(groups, ", "))
}

func snapshotSummary(s snapshot.Snapshot) string {
	parts := []string{fmt.Sprintf("%d positions", len(s.Positions))}
	if len(s.Filters) > 0 {
		parts = append(parts, fmt.Sprintf("%d filters", len(s.Filters)))
	}
	if !s.CreatedAt.IsZero() {
		parts = append(parts, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return "  " + strings.Join(parts, " · ")
}

func (c *CLI) sessionsRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rename <session> <name>",
		ValidArgsFunction: c.completeSession,
		Short:             "Rename a session",
		Args:              cobra.ExactArgs(2),
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
			old := sess.Name
			sess.Name = args[1]
			if err := st.PutSession(ctx, sess); err != nil {
				return err
			}
			printSuccess("Renamed %s %s %s", old, iconArrow, StyleHighlight.Render(sess.Name))
			return nil
		},
	}
}

func (c *CLI) sessionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <session>...",
		ValidArgsFunction: c.completeSession,
		Aliases:           []string{"rm"},
		Short:             "Delete sessions and their snapshots",
		Args:              cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			// Resolve everything first so positional references stay stable.
			targets := make([]*session.Session, 0, len(args))
			for _, ref := range args {
				sess, err := resolveSession(ctx, st, ref)
				if err != nil {
					return err
				}
				targets = append(targets, sess)
			}
			for _, sess := range targets {
				if err := st.DeleteSession(ctx, sess.ID); err != nil {
					return err
				}
				printSuccess("Deleted %s", sess.Name)
			}
			return nil
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
