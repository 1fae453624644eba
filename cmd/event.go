package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/klokku/multical/internal/app"
	"github.com/klokku/multical/pkg/event"
	"github.com/klokku/multical/pkg/registry"
	"github.com/spf13/cobra"
)

func newEventCommand(opts *options) *cobra.Command {
	eventCmd := &cobra.Command{
		Use:   "event",
		Short: "Add and list events",
	}
	eventCmd.AddCommand(newEventAddCommand(opts), newEventListCommand(opts))
	return eventCmd
}

func newEventAddCommand(opts *options) *cobra.Command {
	var calendarName string
	var dto registry.EventDTO

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a timed event to a calendar",
		Example: `  multical event add --calendar Work --title Standup --date 2021-03-14 --start 09:00 --end 09:15
  multical event add -C Home -t Dentist -d 2021-03-15 --start 14:30 --end 15:00 --color "#ff8800"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := registry.DTOToEvent(dto)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, true, func(a *app.Application) error {
				if err := a.Registry().AddEvent(calendarName, e); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), e.UID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&calendarName, "calendar", "C", registry.DefaultCalendarName, "target calendar")
	cmd.Flags().StringVarP(&dto.Title, "title", "t", "", "event title")
	cmd.Flags().StringVarP(&dto.Date, "date", "d", "", "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dto.Start, "start", "", "start time (HH:MM)")
	cmd.Flags().StringVar(&dto.End, "end", "", "end time (HH:MM)")
	cmd.Flags().StringVar(&dto.Location, "location", "", "location")
	cmd.Flags().StringVar(&dto.Notes, "notes", "", "notes")
	cmd.Flags().StringVar(&dto.Color, "color", "", "color (#rrggbb)")
	for _, name := range []string{"title", "date", "start", "end"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newEventListCommand(opts *options) *cobra.Command {
	var calendarName string
	var year, month, day, hour int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the events of a year, month, day or hour as JSON",
		Example: `  multical event list --calendar Work --year 2021
  multical event list --calendar Work --year 2021 --month 3 --day 14`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("hour") && !flags.Changed("day") || flags.Changed("day") && !flags.Changed("month") {
				return fmt.Errorf("%w: --hour needs --day and --day needs --month", event.ErrInvalidArgument)
			}

			return withApp(cmd.Context(), opts, false, func(a *app.Application) error {
				reg := a.Registry()
				var events []*event.Event
				var err error
				switch {
				case flags.Changed("hour"):
					events, err = reg.EventsInHour(calendarName, year, time.Month(month), day, hour)
				case flags.Changed("day"):
					events, err = reg.EventsInDay(calendarName, year, time.Month(month), day)
				case flags.Changed("month"):
					events, err = reg.EventsInMonth(calendarName, year, time.Month(month))
				default:
					events, err = reg.EventsInYear(calendarName, year)
				}
				if err != nil {
					return err
				}

				dtos := make([]registry.EventDTO, 0, len(events))
				for _, e := range events {
					dtos = append(dtos, registry.EventToDTO(calendarName, e))
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dtos)
			})
		},
	}

	cmd.Flags().StringVarP(&calendarName, "calendar", "C", registry.DefaultCalendarName, "calendar to query")
	cmd.Flags().IntVar(&year, "year", 0, "year")
	cmd.Flags().IntVar(&month, "month", 0, "month (1-12)")
	cmd.Flags().IntVar(&day, "day", 0, "day of month")
	cmd.Flags().IntVar(&hour, "hour", 0, "hour (0-23)")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}
