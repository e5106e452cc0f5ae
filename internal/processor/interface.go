package processor

import (
	"context"

	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

// Processor defines the interface for transcript diarization jobs
type Processor interface {
	// Process diarizes the transcript file at path, writes the tagged outputs
	// and archives the input.
	Process(ctx context.Context, transcriptPath string) error
	// ProcessSegments diarizes in-memory segments and persists them when a
	// repository is configured.
	ProcessSegments(ctx context.Context, jobID, source string, segments []transcript.Segment) (Output, error)
}

// Output is the result of one diarization job.
type Output struct {
	JobID    string                   `json:"job_id"`
	Result   diarization.Result       `json:"-"`
	Tagged   []transcript.Tagged      `json:"segments"`
	Speakers []transcript.SpeakerText `json:"speakers"`
}
