package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage the stored sheet endpoint and admin password",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings(cmd)
			if err != nil {
				return err
			}
			endpoint := store.Endpoint()
			if endpoint == "" {
				endpoint = "(offline)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:     %s\n", store.Path())
			fmt.Fprintf(out, "endpoint: %s\n", endpoint)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-endpoint URL",
		Short: "Store the Apps Script web app URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings(cmd)
			if err != nil {
				return err
			}
			if err := store.SetEndpoint(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "endpoint: %s\n", store.Endpoint())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-password PASSWORD",
		Short: "Store a new admin password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings(cmd)
			if err != nil {
				return err
			}
			return store.SetAdminPassword(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Remove stored settings and return to the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings(cmd)
			if err != nil {
				return err
			}
			return store.Reset()
		},
	})

	return cmd
}
