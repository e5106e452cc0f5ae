// Package diarization assigns speaker labels to transcript segments without
// acoustic embeddings. Segments are clustered on metadata and text features,
// then the assignment is smoothed and repaired before labels are attached.
package diarization

import "context"

// Diarizer defines the interface for speaker assignment
type Diarizer interface {
	Assign(ctx context.Context, segments []Segment) Result
}
