package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/propimport/internal/application"
)

func newCountCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}

			app, err := application.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := app.Store.Count(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
}
