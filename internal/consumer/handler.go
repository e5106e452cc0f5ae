package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

// errInvalidMessage marks bodies that will never succeed and must not be requeued.
var errInvalidMessage = errors.New("invalid message")

// acknowledger is the part of amqp.Delivery the handler needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func decodeMessage(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", errInvalidMessage, err)
	}
	if msg.TranscriptPath == "" && len(msg.Segments) == 0 {
		return Message{}, fmt.Errorf("%w: transcript_path or segments is required", errInvalidMessage)
	}
	if msg.JobID == "" {
		msg.JobID = uuid.NewString()
	}
	return msg, nil
}

// handleDelivery acks on success, nacks with requeue on transient failures and
// drops messages that can never succeed.
func (c *implConsumer) handleDelivery(ctx context.Context, body []byte, ack acknowledger) {
	msg, err := decodeMessage(body)
	if err != nil {
		c.logger.Error(ctx, "Dropping message: %v", err)
		if nackErr := ack.Nack(false, false); nackErr != nil {
			c.logger.Error(ctx, "Failed to nack message: %v", nackErr)
		}
		return
	}

	jobCtx, cancel := context.WithTimeout(logger.WithJobID(ctx, msg.JobID), c.cfg.JobTimeout)
	defer cancel()

	if err := c.process(jobCtx, msg); err != nil {
		requeue := !isPermanent(err)
		c.logger.Error(jobCtx, "Failed to process message (requeue: %t): %v", requeue, err)
		if nackErr := ack.Nack(false, requeue); nackErr != nil {
			c.logger.Error(jobCtx, "Failed to nack message: %v", nackErr)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		c.logger.Error(jobCtx, "Failed to ack message: %v", err)
	}
}

func (c *implConsumer) process(ctx context.Context, msg Message) error {
	if msg.TranscriptPath != "" {
		return c.processor.Process(ctx, msg.TranscriptPath)
	}

	out, err := c.processor.ProcessSegments(ctx, msg.JobID, "amqp", msg.Segments)
	if err != nil {
		return err
	}
	c.logger.Info(ctx, "Assigned %d segments to %d speakers", len(out.Tagged), len(out.Speakers))
	return nil
}

// isPermanent reports failures that a redelivery would hit again.
func isPermanent(err error) bool {
	return errors.Is(err, errInvalidMessage) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, transcript.ErrNoSegments) ||
		errors.Is(err, transcript.ErrMalformed)
}
