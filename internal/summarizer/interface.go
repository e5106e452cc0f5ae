package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

// Summarizer produces LLM-generated summaries of speaker-tagged transcripts.
type Summarizer interface {
	// Summarize writes <title>.summary.md and <title>.summary.docx into destDir
	// and returns the markdown path.
	Summarize(ctx context.Context, title string, speakers []transcript.SpeakerText, destDir string) (string, error)
	WriteTranscriptDocx(title string, tagged []transcript.Tagged, outputPath string) error
}
