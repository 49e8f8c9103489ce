package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/config"
	"github.com/matzehuels/netview/pkg/store"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and manage session storage",
	}

	cmd.AddCommand(c.storeInfoCommand())
	cmd.AddCommand(c.storeClearCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

func (c *CLI) storeInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured backend and what it holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			headers, err := st.SessionHeaders(ctx)
			if err != nil {
				return err
			}
			snaps := 0
			for _, h := range headers {
				snaps += len(h.Snapshots)
			}

			printKeyValue("backend", st.Backend())
			switch s.Store.Backend {
			case config.BackendRedis:
				printKeyValue("address", s.Store.RedisAddr)
			case config.BackendMongo:
				printKeyValue("database", s.Store.MongoDatabase)
			default:
				printKeyValue("directory", store.Dir(s.Store))
			}
			printKeyValue("sessions", fmt.Sprint(len(headers)))
			printKeyValue("snapshots", fmt.Sprint(snaps))
			return nil
		},
	}
}

func (c *CLI) storeClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored session and setting blob",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
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
				printInfo("Store is empty")
				return nil
			}
			if !yes {
				printWarning("This deletes %d sessions from the %s store; rerun with --yes", len(headers), st.Backend())
				return nil
			}
			if err := st.ClearAll(ctx); err != nil {
				return err
			}
			printSuccess("Cleared %d sessions", len(headers))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")

	return cmd
}

func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file backend's directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, store.Dir(s.Store))
			return nil
		},
	}
}
