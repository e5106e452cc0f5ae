// Package httpapi exposes speaker assignment over HTTP.
package httpapi

import (
	"context"

	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

// Server defines the HTTP surface
type Server interface {
	// Start serves until ctx is cancelled, then shuts down gracefully.
	Start(ctx context.Context) error
}

type diarizeRequest struct {
	JobID    string               `json:"job_id"`
	Segments []transcript.Segment `json:"segments"`
}

type diarizeResponse struct {
	JobID        string                   `json:"job_id"`
	Assignments  []diarization.Assignment `json:"assignments"`
	Speakers     []transcript.SpeakerText `json:"speakers"`
	ClusterCount int                      `json:"cluster_count"`
	Fallback     bool                     `json:"fallback"`
}

type errorResponse struct {
	Error string `json:"error"`
}
