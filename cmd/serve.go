package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/klokku/multical/internal/app"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.NewApplication(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Run(ctx); err != nil {
				return err
			}
			if !opts.cfg.Storage.Autosave {
				log.Info("Saving calendars")
				return a.Save(cmd.Context())
			}
			return nil
		},
	}
}
