// Package repository stores diarization results in MySQL.
package repository

import (
	"context"

	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

// Repository defines persistence of speaker-tagged transcripts
type Repository interface {
	EnsureSchema(ctx context.Context) error
	SaveJob(ctx context.Context, jobID, source string, tagged []transcript.Tagged) error
	ListSegments(ctx context.Context, jobID string) ([]transcript.Tagged, error)
	Close() error
}
