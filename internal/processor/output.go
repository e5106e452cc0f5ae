package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

// writeOutputs writes <name>.speakers.json and <name>.md into the output folder
func (p *implProcessor) writeOutputs(ctx context.Context, name string, out Output) (string, string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Output, 0755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal output: %w", err)
	}

	jsonPath := filepath.Join(p.cfg.Paths.Output, name+".speakers.json")
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", jsonPath, err)
	}

	mdPath := filepath.Join(p.cfg.Paths.Output, name+".md")
	if err := os.WriteFile(mdPath, []byte(transcript.RenderMarkdown(name, out.Tagged)), 0644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", mdPath, err)
	}

	p.logger.Debug(ctx, "Wrote %s and %s", jsonPath, mdPath)
	return jsonPath, mdPath, nil
}

// moveToArchived moves the processed transcript out of the inbox
func (p *implProcessor) moveToArchived(ctx context.Context, path string) error {
	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		return fmt.Errorf("create archived dir: %w", err)
	}

	destPath := filepath.Join(p.cfg.Paths.Archived, filepath.Base(path))
	p.logger.Info(ctx, "Moving to archived folder: %s -> %s", path, destPath)

	if err := os.Rename(path, destPath); err != nil {
		return fmt.Errorf("move to archived: %w", err)
	}
	return nil
}
