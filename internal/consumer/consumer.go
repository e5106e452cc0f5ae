package consumer

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// setup dials, opens a channel, declares the queue and sets QoS. It runs again
// on every reconnect.
func (c *implConsumer) setup() (*amqp.Connection, *amqp.Channel, error) {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	conn, err := amqp.DialConfig(c.cfg.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		c.cfg.Queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := channel.Qos(c.cfg.Prefetch, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("set QoS: %w", err)
	}

	return conn, channel, nil
}

func (c *implConsumer) consume(ctx context.Context) (*amqp.Connection, <-chan amqp.Delivery, error) {
	conn, channel, err := c.setup()
	if err != nil {
		return nil, nil, err
	}

	deliveries, err := channel.ConsumeWithContext(
		ctx,
		c.cfg.Queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("register consumer: %w", err)
	}

	return conn, deliveries, nil
}

// Start runs the reconnect loop. Each connection is served by a worker pool
// that exits when the deliveries channel closes.
func (c *implConsumer) Start(ctx context.Context) {
	defer close(c.done)

	reconnectDelay := initialReconnectDelay

	for {
		if ctx.Err() != nil {
			c.logger.Info(ctx, "Consumer stopped")
			return
		}

		c.logger.Info(ctx, "Connecting to RabbitMQ (queue: %s)...", c.cfg.Queue)

		conn, deliveries, err := c.consume(ctx)
		if err != nil {
			c.logger.Error(ctx, "Failed to connect: %v (retry in %s)", err, reconnectDelay)
			sleep(ctx, reconnectDelay)
			reconnectDelay = nextDelay(reconnectDelay)
			continue
		}

		reconnectDelay = initialReconnectDelay
		c.logger.Info(ctx, "Connected to RabbitMQ (queue: %s, workers: %d)", c.cfg.Queue, c.cfg.Prefetch)

		c.runWorkerPool(ctx, deliveries)

		conn.Close()
		if ctx.Err() == nil {
			c.logger.Warn(ctx, "Deliveries channel closed, reconnecting in %s", reconnectDelay)
			sleep(ctx, reconnectDelay)
		}
	}
}

func (c *implConsumer) runWorkerPool(ctx context.Context, deliveries <-chan amqp.Delivery) {
	var wg sync.WaitGroup

	for i := 0; i < c.cfg.Prefetch; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for {
				select {
				case d, ok := <-deliveries:
					if !ok {
						c.logger.Debug(ctx, "Worker %d: deliveries closed", workerID)
						return
					}
					c.handleDelivery(ctx, d.Body, d)
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}

	wg.Wait()
	c.logger.Info(ctx, "All workers stopped")
}

// nextDelay doubles d up to maxReconnectDelay.
func nextDelay(d time.Duration) time.Duration {
	d *= 2
	if d > maxReconnectDelay {
		return maxReconnectDelay
	}
	return d
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
