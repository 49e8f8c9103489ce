package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/fileio"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "export <session>",
		ValidArgsFunction: c.completeSession,
		Short:             "Write a session with its snapshots to a JSON file",
		Long: `Write a session, including all snapshots, as a session document that
"netview import" reads back. A .gz output path is gzip-compressed.`,
		Args: cobra.ExactArgs(1),
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
			path := output
			if path == "" {
				path = sanitizeFileName(sess.Name) + ".json"
			}
			if err := fileio.WriteFile(path, sess); err != nil {
				return err
			}
			printSuccess("Exported %s", StyleHighlight.Render(sess.Name))
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <name>.json; .gz compresses)")

	return cmd
}
