package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/klokku/multical/internal/app"
	"github.com/klokku/multical/pkg/google"
	"github.com/spf13/cobra"
)

func newGoogleCommand(opts *options) *cobra.Command {
	googleCmd := &cobra.Command{
		Use:   "google",
		Short: "Connect a Google account",
	}

	var code string
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Print the consent URL, or store the token for --code",
		Example: `  multical google auth
  multical google auth --code 4/0AX4XfWh...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.Google.ClientId == "" {
				return fmt.Errorf("google.clientid is not configured")
			}
			if code == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Open this link, then run again with --code:")
				fmt.Fprintln(cmd.OutOrStdout(), google.AuthURL(opts.cfg.Google, uuid.NewString()))
				return nil
			}
			if err := google.Authorize(cmd.Context(), opts.cfg.Google, code); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token stored in %s\n", opts.cfg.Google.TokenFile)
			return nil
		},
	}
	authCmd.Flags().StringVar(&code, "code", "", "authorization code from the consent page")

	calendarsCmd := &cobra.Command{
		Use:   "calendars",
		Short: "List the Google calendars of the connected account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, false, func(a *app.Application) error {
				client := a.Dependencies().GoogleClient
				if client == nil {
					return google.ErrUnauthenticated
				}
				items, err := client.ListCalendars(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSUMMARY")
				for _, item := range items {
					fmt.Fprintf(tw, "%s\t%s\n", item.ID, item.Summary)
				}
				return tw.Flush()
			})
		},
	}

	googleCmd.AddCommand(authCmd, calendarsCmd)
	return googleCmd
}
