package main

import (
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/speaker-flow/internal/httpapi"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diarization HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			return ignoreCanceled(httpapi.New(addr, a.processor, a.repo, a.log).Start(ctx))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
