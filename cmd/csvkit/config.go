package main

import (
	"github.com/spf13/cobra"

	"github.com/shapestone/csvcodec/internal/config"
)

func newConfigCommand(a *app) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect csvkit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging the config file, CSVKIT_*
environment variables and flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Encode(a.cfg, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml, yaml, json")
	cfgCmd.AddCommand(showCmd)

	return cfgCmd
}
