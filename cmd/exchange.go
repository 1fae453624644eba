package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/klokku/multical/internal/app"
	"github.com/klokku/multical/pkg/event"
	"github.com/klokku/multical/pkg/google"
	"github.com/klokku/multical/pkg/ics"
	"github.com/klokku/multical/pkg/registry"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newExportCommand(opts *options) *cobra.Command {
	var calendarName, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a calendar as iCalendar",
		Example: `  multical export --calendar Work > work.ics
  multical export --calendar Work --out work.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, false, func(a *app.Application) error {
				cal, err := a.Registry().Calendar(calendarName)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("creating %s: %w", out, err)
					}
					defer f.Close()
					w = f
				}
				return ics.Export(w, calendarName, cal.Events(), a.Dependencies().Clock.Now())
			})
		},
	}

	cmd.Flags().StringVarP(&calendarName, "calendar", "C", registry.DefaultCalendarName, "calendar to export")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCommand(opts *options) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import events from iCalendar files or Google Calendar",
	}
	importCmd.AddCommand(newImportIcsCommand(opts), newImportGoogleCommand(opts))
	return importCmd
}

func newImportIcsCommand(opts *options) *cobra.Command {
	var calendarName, file string

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Import the timed single-day events of an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("opening %s: %w", file, err)
				}
				defer f.Close()
				r = f
			}
			events, err := ics.Import(r)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, true, func(a *app.Application) error {
				for _, e := range events {
					if err := a.Registry().AddImportedEvent(calendarName, e); err != nil {
						return err
					}
				}
				log.Infof("imported %d event(s) into %q", len(events), calendarName)
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d event(s)\n", len(events))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&calendarName, "calendar", "C", registry.DefaultCalendarName, "target calendar")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "iCalendar file (- for stdin)")
	return cmd
}

func newImportGoogleCommand(opts *options) *cobra.Command {
	var calendarName, googleCalendarId, from, to string

	cmd := &cobra.Command{
		Use:   "google",
		Short: "Import the timed single-day events of a Google calendar",
		Example: `  multical import google --calendar Team --google-calendar team@group.calendar.google.com --from 2021-03-01 --to 2021-03-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := event.ParseDate(from)
			if err != nil {
				return err
			}
			toDate, err := event.ParseDate(to)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, true, func(a *app.Application) error {
				client := a.Dependencies().GoogleClient
				if client == nil {
					return google.ErrUnauthenticated
				}
				result, err := google.NewImporter(client, a.Registry()).
					Import(cmd.Context(), googleCalendarId, calendarName, fromDate.Midnight(), toDate.AddDays(1).Midnight())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d event(s), skipped %d\n", result.Imported, result.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&calendarName, "calendar", "C", registry.DefaultCalendarName, "target calendar")
	cmd.Flags().StringVarP(&googleCalendarId, "google-calendar", "g", "primary", "Google calendar id")
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day, inclusive (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
