package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/patchview/pkg/config"
)

// configCommand creates the config command that prints the effective settings.
func (c *CLI) configCommand() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration as TOML.

The output is a complete config file; save it as
~/.config/patchview/config.toml and edit the keys you want to change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if !defaults {
				var err error
				if cfg, err = c.loadConfig(); err != nil {
					return err
				}
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "ignore config files and print the defaults")
	return cmd
}
