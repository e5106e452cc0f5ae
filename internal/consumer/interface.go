// Package consumer feeds diarization jobs from a RabbitMQ queue into the processor.
package consumer

import (
	"context"

	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

// Consumer defines the interface for queue intake
type Consumer interface {
	// Start consumes until ctx is cancelled, reconnecting with backoff.
	Start(ctx context.Context)
	Done() <-chan struct{}
}

// Message is the body of one job. Either TranscriptPath or Segments must be set.
type Message struct {
	JobID          string               `json:"job_id"`
	TranscriptPath string               `json:"transcript_path,omitempty"`
	Segments       []transcript.Segment `json:"segments,omitempty"`
}
