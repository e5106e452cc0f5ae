package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

// Process orchestrates the file pipeline: load, diarize, write outputs, archive.
func (p *implProcessor) Process(ctx context.Context, transcriptPath string) error {
	startTime := time.Now()
	name := baseName(transcriptPath)

	jobID, ok := logger.JobID(ctx)
	if !ok {
		jobID = uuid.NewString()
		ctx = logger.WithJobID(ctx, jobID)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting diarization: %s", transcriptPath)
	p.logger.Info(ctx, "========================================")

	// Step 1: Load segments
	segments, err := transcript.LoadFile(transcriptPath)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	// Step 2: Assign speakers and persist
	out, err := p.ProcessSegments(ctx, jobID, filepath.Base(transcriptPath), segments)
	if err != nil {
		return err
	}

	// Step 3: Write tagged JSON and markdown
	jsonPath, mdPath, err := p.writeOutputs(ctx, name, out)
	if err != nil {
		return fmt.Errorf("write outputs: %w", err)
	}

	// Step 4: Summarize (optional collaborator, failures are not fatal)
	if p.summarizer != nil {
		p.summarize(ctx, name, out)
	}

	// Step 5: Move the transcript to the archived folder
	if err := p.moveToArchived(ctx, transcriptPath); err != nil {
		p.logger.Warn(ctx, "Failed to move transcript to archived folder: %v", err)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Diarization completed: %d segments, %d speakers", len(out.Tagged), len(out.Speakers))
	p.logger.Info(ctx, "Output JSON: %s", jsonPath)
	p.logger.Info(ctx, "Output transcript: %s", mdPath)
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	p.logger.Info(ctx, "========================================")

	return nil
}

func (p *implProcessor) ProcessSegments(ctx context.Context, jobID, source string, segments []transcript.Segment) (Output, error) {
	if jobID == "" {
		jobID = uuid.NewString()
	}
	if _, ok := logger.JobID(ctx); !ok {
		ctx = logger.WithJobID(ctx, jobID)
	}

	if err := p.sem.acquire(ctx); err != nil {
		return Output{}, fmt.Errorf("wait for slot: %w", err)
	}
	defer p.sem.release()

	res := p.diarizer.Assign(ctx, transcript.ToDiarization(segments))
	if res.Fallback {
		p.logger.Warn(ctx, "Fell back to a single speaker for %s", source)
	}

	tagged := transcript.Tag(segments, res)
	out := Output{
		JobID:    jobID,
		Result:   res,
		Tagged:   tagged,
		Speakers: transcript.GroupBySpeaker(tagged),
	}

	if p.repo != nil {
		if err := p.repo.SaveJob(ctx, jobID, source, tagged); err != nil {
			return Output{}, fmt.Errorf("save job: %w", err)
		}
	}

	return out, nil
}

func (p *implProcessor) summarize(ctx context.Context, name string, out Output) {
	docxPath := filepath.Join(p.cfg.Paths.Output, name+".docx")
	if err := p.summarizer.WriteTranscriptDocx(name, out.Tagged, docxPath); err != nil {
		p.logger.Warn(ctx, "Failed to write transcript docx: %v", err)
	}

	if _, err := p.summarizer.Summarize(ctx, name, out.Speakers, p.cfg.Paths.Output); err != nil {
		p.logger.Warn(ctx, "Failed to summarize %s: %v", name, err)
	}
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
