package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Print the in-chat help text for the current config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, nil, newLogger(cmd, cfg))
			if err != nil {
				return err
			}
			verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
			fmt.Fprintln(cmd.OutOrStdout(), a.svc.HelpText(verbose))
			return nil
		},
	}
}
