package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/speaker-flow/internal/consumer"
)

func newConsumeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Process diarization jobs from RabbitMQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.RabbitMQ.URL == "" {
				return fmt.Errorf("rabbitmq.url is required")
			}

			c := consumer.New(a.cfg.RabbitMQ, a.processor, a.log)
			go c.Start(ctx)

			select {
			case <-ctx.Done():
				a.log.Info(ctx, "Shutdown signal received")
			case <-c.Done():
			}
			<-c.Done()
			a.log.Info(ctx, "Consumer exited")
			return nil
		},
	}
}
