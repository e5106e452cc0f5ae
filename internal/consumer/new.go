package consumer

import (
	"time"

	"github.com/nguyentantai21042004/speaker-flow/internal/config"
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
	"github.com/nguyentantai21042004/speaker-flow/internal/processor"
)

const (
	initialReconnectDelay = 5 * time.Second
	maxReconnectDelay     = 5 * time.Minute
)

type implConsumer struct {
	cfg       config.RabbitMQConfig
	processor processor.Processor
	logger    logger.Logger
	done      chan struct{}
}

// New creates a RabbitMQ consumer with one worker per prefetched message.
func New(cfg config.RabbitMQConfig, proc processor.Processor, log logger.Logger) Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	return &implConsumer{
		cfg:       cfg,
		processor: proc,
		logger:    log,
		done:      make(chan struct{}),
	}
}

func (c *implConsumer) Done() <-chan struct{} {
	return c.done
}
