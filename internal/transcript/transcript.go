// Package transcript reads whisper-style segment files and renders the
// speaker-tagged results.
package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
)

var (
	// ErrNoSegments is returned when a transcript decodes but holds no segments.
	ErrNoSegments = errors.New("transcript has no segments")
	// ErrMalformed wraps JSON errors of a transcript that cannot be decoded.
	ErrMalformed = errors.New("malformed transcript")
)

// Segment matches one entry of a whisper verbose_json response.
type Segment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	NoSpeechProb float64 `json:"no_speech_prob"`
	AvgLogprob   float64 `json:"avg_logprob"`
}

type document struct {
	Segments []Segment `json:"segments"`
}

// Decode accepts either {"segments": [...]} or a bare segment array.
func Decode(r io.Reader) ([]Segment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoSegments
	}

	var segments []Segment
	if data[0] == '[' {
		if err := json.Unmarshal(data, &segments); err != nil {
			return nil, fmt.Errorf("%w: decode segments: %w", ErrMalformed, err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode transcript: %w", ErrMalformed, err)
		}
		segments = doc.Segments
	}

	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	return segments, nil
}

// LoadFile decodes the transcript stored at path.
func LoadFile(path string) ([]Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// ToDiarization converts segments into engine input.
func ToDiarization(segments []Segment) []diarization.Segment {
	out := make([]diarization.Segment, len(segments))
	for i, s := range segments {
		out[i] = diarization.Segment{
			Start:        s.Start,
			End:          s.End,
			Text:         s.Text,
			NoSpeechProb: s.NoSpeechProb,
			AvgLogprob:   s.AvgLogprob,
		}
	}
	return out
}
