package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/klokku/multical/internal/app"
	"github.com/klokku/multical/pkg/event"
	"github.com/spf13/cobra"
)

func newLayoutCommand(opts *options) *cobra.Command {
	var date string
	var calendars []string

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay out the events of a day into non-overlapping columns",
		Example: `  multical layout --date 2021-03-14
  multical layout --date 2021-03-14 --calendar Work --calendar Home`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := event.ParseDate(date)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, false, func(a *app.Application) error {
				columns, err := a.Dependencies().LayoutService.Day(calendars, day)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "COLUMN\tROW\tHEIGHT\tTIME\tCALENDAR\tTITLE")
				for _, col := range columns {
					for _, p := range col {
						fmt.Fprintf(tw, "%d\t%d\t%d\t%s-%s\t%s\t%s\n",
							p.Column, p.Row, p.Height, p.Event.StartTime(), p.Event.EndTime(), p.Calendar, p.Event.Title)
					}
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "day to lay out (YYYY-MM-DD)")
	cmd.Flags().StringArrayVarP(&calendars, "calendar", "C", nil, "calendar to include (repeatable, default all)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
