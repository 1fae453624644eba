package cmd

import (
	"fmt"

	"github.com/klokku/multical/internal/app"
	"github.com/klokku/multical/pkg/registry"
	"github.com/spf13/cobra"
)

func newCalendarCommand(opts *options) *cobra.Command {
	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Manage named calendars",
	}

	calendarCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print calendar names, one per line",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, false, func(a *app.Application) error {
					for _, name := range a.Registry().Names() {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create an empty calendar",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, true, func(a *app.Application) error {
					return a.Registry().Create(args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a calendar and its events",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, true, func(a *app.Application) error {
					if !a.Registry().Delete(args[0]) {
						return &registry.NotFoundError{Name: args[0]}
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rename OLD NEW",
			Short: "Rename a calendar",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, true, func(a *app.Application) error {
					return a.Registry().Rename(args[0], args[1])
				})
			},
		},
	)
	return calendarCmd
}
