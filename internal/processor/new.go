package processor

import (
	"github.com/nguyentantai21042004/speaker-flow/internal/config"
	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
	"github.com/nguyentantai21042004/speaker-flow/internal/repository"
	"github.com/nguyentantai21042004/speaker-flow/internal/summarizer"
)

type implProcessor struct {
	cfg        *config.Config
	diarizer   diarization.Diarizer
	repo       repository.Repository
	summarizer summarizer.Summarizer
	logger     logger.Logger
	sem        *semaphore
}

// Option configures optional collaborators of the processor.
type Option func(*implProcessor)

// WithRepository persists every job.
func WithRepository(repo repository.Repository) Option {
	return func(p *implProcessor) { p.repo = repo }
}

// WithSummarizer summarizes transcripts processed from files.
func WithSummarizer(s summarizer.Summarizer) Option {
	return func(p *implProcessor) { p.summarizer = s }
}

// New creates a new Processor instance
func New(cfg *config.Config, d diarization.Diarizer, log logger.Logger, opts ...Option) Processor {
	p := &implProcessor{
		cfg:      cfg,
		diarizer: d,
		logger:   log,
		sem:      newSemaphore(cfg.Performance.MaxConcurrent),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
