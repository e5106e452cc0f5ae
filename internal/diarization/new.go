package diarization

import (
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
)

type implDiarizer struct {
	params Params
	logger logger.Logger
	run    func([]Segment, Params) Result
}

// New creates a new Diarizer instance. Zero-valued params fall back to DefaultParams.
func New(params Params, log logger.Logger) Diarizer {
	return &implDiarizer{
		params: params.withDefaults(),
		logger: log,
		run:    Run,
	}
}
