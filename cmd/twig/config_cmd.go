package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/config"
	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/output"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage twig configuration.

Global config: $XDG_CONFIG_HOME/twig/config.toml (or $TWIG_CONFIG)
Local config:  .twig.toml in the repository root`,
		Example: `  twig config init     # Create default global config
  twig config show     # Show effective config`,
	}

	cmd.AddCommand(a.newConfigInitCmd())
	cmd.AddCommand(a.newConfigShowCmd())

	return cmd
}

func (a *app) newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  twig config init      # Create global config
  twig config init -f   # Overwrite existing config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(force)
			if err != nil {
				if !force {
					return fmt.Errorf("%w (use -f to overwrite)", err)
				}
				return err
			}
			log.FromContext(cmd.Context()).Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")

	return cmd
}

func (a *app) newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			output.FromContext(cmd.Context()).Print(cfg.String())
			return nil
		},
	}

	return cmd
}
