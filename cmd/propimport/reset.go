package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/propimport/internal/admin"
	"github.com/JonMunkholm/propimport/internal/application"
)

func newResetCmd(global *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored property",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return withCode(exitUsage, fmt.Errorf("%w: pass --yes to delete all properties", admin.ErrNotConfirmed))
			}

			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}

			app, err := application.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := admin.Reset(cmd.Context(), app.Store, yes)
			if errors.Is(err, admin.ErrNotConfirmed) {
				return withCode(exitUsage, err)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d properties\n", n)
			return err
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}
