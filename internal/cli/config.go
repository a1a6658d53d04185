package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/eventpage/internal/config"
)

func newConfigCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the eventpage config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(root.cfgFile); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", root.cfgFile)
			}
			if err := config.DefaultConfig().Save(root.cfgFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", root.cfgFile)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
