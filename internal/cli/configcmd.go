package cli

import (
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/config"
)

// configCommand creates the settings management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and initialise the settings file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			return toml.NewEncoder(stdout).Encode(s)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the defaults if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.settingsPath
			if path == "" {
				path = config.Path()
			}
			created, err := config.EnsureExists(path)
			if err != nil {
				return err
			}
			if created {
				printSuccess("Wrote default settings")
			} else {
				printInfo("Settings file already exists")
			}
			printFile(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Run: func(cmd *cobra.Command, args []string) {
			if c.settingsPath != "" {
				cmd.Println(c.settingsPath)
				return
			}
			cmd.Println(config.Path())
		},
	})

	return cmd
}
