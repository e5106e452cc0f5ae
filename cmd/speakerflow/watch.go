package main

import (
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/speaker-flow/internal/watcher"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Diarize transcripts dropped into the input directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			w, err := watcher.New(a.cfg.Paths.Input, a.processor.Process, a.log, watcher.Options{
				MaxConcurrent: a.cfg.Performance.MaxConcurrent,
				SettleDelay:   a.cfg.Performance.SettleDelay,
			})
			if err != nil {
				return err
			}
			defer w.Stop()

			a.log.Info(ctx, "========================================")
			a.log.Info(ctx, "Speaker Flow is ready!")
			a.log.Info(ctx, "Monitoring: %s", a.cfg.Paths.Input)
			a.log.Info(ctx, "Output: %s", a.cfg.Paths.Output)
			a.log.Info(ctx, "Press Ctrl+C to stop")
			a.log.Info(ctx, "========================================")

			err = ignoreCanceled(w.Start(ctx))
			a.log.Info(ctx, "Speaker Flow stopped")
			return err
		},
	}
}
