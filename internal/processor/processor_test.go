package processor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/speaker-flow/internal/config"
	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

type fakeRepository struct {
	mu    sync.Mutex
	saved map[string][]transcript.Tagged
	err   error
}

func (f *fakeRepository) EnsureSchema(context.Context) error { return nil }

func (f *fakeRepository) SaveJob(_ context.Context, jobID, _ string, tagged []transcript.Tagged) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = make(map[string][]transcript.Tagged)
	}
	f.saved[jobID] = tagged
	return nil
}

func (f *fakeRepository) ListSegments(_ context.Context, jobID string) ([]transcript.Tagged, error) {
	return f.saved[jobID], nil
}

func (f *fakeRepository) Close() error { return nil }

type fakeSummarizer struct {
	titles []string
	err    error
}

func (f *fakeSummarizer) Summarize(_ context.Context, title string, _ []transcript.SpeakerText, _ string) (string, error) {
	f.titles = append(f.titles, title)
	return "", f.err
}

func (f *fakeSummarizer) WriteTranscriptDocx(string, []transcript.Tagged, string) error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{Paths: config.PathsConfig{
		Input:    filepath.Join(root, "input"),
		Output:   filepath.Join(root, "output"),
		Archived: filepath.Join(root, "archived"),
	}}
	require.NoError(t, cfg.Validate())
	require.NoError(t, os.MkdirAll(cfg.Paths.Input, 0755))
	return cfg
}

func newTestProcessor(cfg *config.Config, opts ...Option) Processor {
	log := logger.New("error", "text")
	return New(cfg, diarization.New(diarization.DefaultParams(), log), log, opts...)
}

const meetingJSON = `{"segments":[
	{"start":0,"end":3,"text":"おはようございます。","no_speech_prob":0.05,"avg_logprob":-0.2},
	{"start":5,"end":8,"text":"本日はよろしくお願いします。","no_speech_prob":0.05,"avg_logprob":-0.25},
	{"start":12,"end":15,"text":"資料をご覧ください。","no_speech_prob":0.06,"avg_logprob":-0.22}
]}`

func TestProcess(t *testing.T) {
	cfg := testConfig(t)
	repo := &fakeRepository{}
	sum := &fakeSummarizer{}
	p := newTestProcessor(cfg, WithRepository(repo), WithSummarizer(sum))

	input := filepath.Join(cfg.Paths.Input, "standup.json")
	require.NoError(t, os.WriteFile(input, []byte(meetingJSON), 0644))

	require.NoError(t, p.Process(context.Background(), input))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.Output, "standup.speakers.json"))
	require.NoError(t, err)

	var out Output
	require.NoError(t, json.Unmarshal(data, &out))
	assert.NotEmpty(t, out.JobID)
	require.Len(t, out.Tagged, 3)
	for i, tg := range out.Tagged {
		assert.Equal(t, i, tg.SegmentIndex)
		assert.NotEmpty(t, tg.Speaker)
	}

	assert.FileExists(t, filepath.Join(cfg.Paths.Output, "standup.md"))
	assert.FileExists(t, filepath.Join(cfg.Paths.Archived, "standup.json"))
	assert.NoFileExists(t, input)

	assert.Len(t, repo.saved[out.JobID], 3)
	assert.Equal(t, []string{"standup"}, sum.titles)
}

func TestProcessSummarizerFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	p := newTestProcessor(cfg, WithSummarizer(&fakeSummarizer{err: errors.New("quota")}))

	input := filepath.Join(cfg.Paths.Input, "a.json")
	require.NoError(t, os.WriteFile(input, []byte(meetingJSON), 0644))

	assert.NoError(t, p.Process(context.Background(), input))
}

func TestProcessErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		repoErr error
	}{
		{name: "malformed json", content: `{"segments":`},
		{name: "no segments", content: `{"segments":[]}`},
		{name: "repository failure", content: meetingJSON, repoErr: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			p := newTestProcessor(cfg, WithRepository(&fakeRepository{err: tt.repoErr}))

			input := filepath.Join(cfg.Paths.Input, "bad.json")
			require.NoError(t, os.WriteFile(input, []byte(tt.content), 0644))

			assert.Error(t, p.Process(context.Background(), input))
			assert.FileExists(t, input, "failed input stays in the inbox")
		})
	}
}

func TestProcessSegments(t *testing.T) {
	cfg := testConfig(t)
	repo := &fakeRepository{}
	p := newTestProcessor(cfg, WithRepository(repo))

	segments, err := transcript.Decode(strings.NewReader(meetingJSON))
	require.NoError(t, err)

	out, err := p.ProcessSegments(context.Background(), "job-42", "http", segments)
	require.NoError(t, err)

	assert.Equal(t, "job-42", out.JobID)
	assert.Len(t, out.Result.Assignments, 3)
	assert.Len(t, out.Tagged, 3)
	assert.NotEmpty(t, out.Speakers)
	assert.Len(t, repo.saved["job-42"], 3)
}

func TestProcessSegmentsGeneratesJobID(t *testing.T) {
	p := newTestProcessor(testConfig(t))

	out, err := p.ProcessSegments(context.Background(), "", "http", []transcript.Segment{{Start: 0, End: 1, Text: "はい"}})
	require.NoError(t, err)
	assert.Len(t, out.JobID, 36)
}

func TestProcessSegmentsHonorsCancellation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Performance.MaxConcurrent = 1
	p := newTestProcessor(cfg).(*implProcessor)

	require.NoError(t, p.sem.acquire(context.Background()))
	defer p.sem.release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.ProcessSegments(ctx, "job", "http", []transcript.Segment{{Text: "x"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSemaphore(t *testing.T) {
	s := newSemaphore(2)
	ctx := context.Background()

	require.NoError(t, s.acquire(ctx))
	require.NoError(t, s.acquire(ctx))
	assert.Equal(t, 2, s.inUse())

	s.release()
	assert.Equal(t, 1, s.inUse())

	assert.Equal(t, 1, cap(newSemaphore(0).ch))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "meeting.2024", baseName("/in/meeting.2024.json"))
}

func TestProcessUsesJobIDFromContext(t *testing.T) {
	cfg := testConfig(t)
	repo := &fakeRepository{}
	p := newTestProcessor(cfg, WithRepository(repo))

	input := filepath.Join(cfg.Paths.Input, "queued.json")
	require.NoError(t, os.WriteFile(input, []byte(meetingJSON), 0644))

	ctx := logger.WithJobID(context.Background(), "job-from-queue")
	require.NoError(t, p.Process(ctx, input))
	assert.Len(t, repo.saved["job-from-queue"], 3)
}
