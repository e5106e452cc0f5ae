package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

const summaryPrompt = `You are an assistant that summarizes meeting transcripts. The transcript below is split by speaker.
Speaker labels were assigned automatically and may be imperfect.

Write the summary in the language of the transcript:
- Start with a one-sentence overview of the meeting
- Add one section per speaker with the points they raised, in order
- List decisions and action items, naming the speaker responsible when clear
- Use markdown: headings, bullet points, bold for key terms

Transcript:
---
%s
---`

// errTryNextKey marks failures that the next API key may not hit.
var errTryNextKey = errors.New("try next key")

// Summarize sends the per-speaker transcript to Gemini and writes the result
// as markdown and docx.
func (s *implSummarizer) Summarize(ctx context.Context, title string, speakers []transcript.SpeakerText, destDir string) (string, error) {
	if len(speakers) == 0 {
		return "", fmt.Errorf("nothing to summarize for %s", title)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create dest dir: %w", err)
	}

	s.logger.Info(ctx, "Summarizing %s (%d speakers)", title, len(speakers))

	summary, err := s.callGemini(ctx, buildPrompt(speakers))
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}

	md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
		title,
		time.Now().Format("2006-01-02 15:04"),
		strings.TrimSpace(summary),
	)

	mdPath := filepath.Join(destDir, title+".summary.md")
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	docxPath := filepath.Join(destDir, title+".summary.docx")
	if err := markdownToDocx(title, md, docxPath); err != nil {
		s.logger.Warn(ctx, "Failed to write %s: %v", docxPath, err)
	}

	s.logger.Info(ctx, "[DONE] %s -> %s", title, mdPath)
	return mdPath, nil
}

func (s *implSummarizer) WriteTranscriptDocx(title string, tagged []transcript.Tagged, outputPath string) error {
	return transcriptToDocx(title, tagged, outputPath)
}

func buildPrompt(speakers []transcript.SpeakerText) string {
	var sb strings.Builder
	for _, sp := range speakers {
		sb.WriteString(fmt.Sprintf("[%s]\n%s\n\n", sp.Speaker, sp.Text))
	}
	return fmt.Sprintf(summaryPrompt, strings.TrimSpace(sb.String()))
}

// callGemini returns the summary text, rotating API keys on 429 / quota errors.
func (s *implSummarizer) callGemini(ctx context.Context, prompt string) (string, error) {
	attempts := len(s.apiKeys)
	if attempts == 0 {
		return "", fmt.Errorf("no API keys configured")
	}

	var lastErr error
	for range attempts {
		key, idx := s.key()

		text, err := s.generate(ctx, key, s.model, prompt)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, errTryNextKey) {
			return "", err
		}

		s.logger.Warn(ctx, "Key %d rate limited, rotating: %v", idx+1, err)
		s.rotateKey()
		lastErr = err
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) key() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKeys[s.currentKey], s.currentKey
}

func (s *implSummarizer) rotateKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func generateWithGemini(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("%w: create client: %v", errTryNextKey, err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("%w: %v", errTryNextKey, err)
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		return text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
