package cmd

import (
	"context"
	"fmt"

	"github.com/klokku/multical/internal/app"
	"github.com/klokku/multical/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

// options shared by every subcommand of one root command
type options struct {
	cfgFile  string
	logLevel string
	cfg      config.Application
}

// NewRootCommand builds the multical command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:     "multical",
		Short:   "Keep several named calendars and lay out their days",
		Long:    `multical manages named calendars of timed events, answers range queries over them and lays out overlapping events of a day into columns.`,
		Version: version,

		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logLevel != "" {
				level, err := log.ParseLevel(opts.logLevel)
				if err != nil {
					return err
				}
				log.SetLevel(level)
			}
			cfg, err := config.Load(opts.cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", config.DefaultPath, "config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newServeCommand(opts),
		newCalendarCommand(opts),
		newEventCommand(opts),
		newLayoutCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newGoogleCommand(opts),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}

// withApp opens storage, runs fn against the restored registry and, for
// mutating commands, saves the result.
func withApp(ctx context.Context, opts *options, mutating bool, fn func(a *app.Application) error) (err error) {
	cfg := opts.cfg
	cfg.Storage.Autosave = false

	a, err := app.NewApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := fn(a); err != nil {
		return err
	}
	if mutating {
		return a.Save(ctx)
	}
	return nil
}
