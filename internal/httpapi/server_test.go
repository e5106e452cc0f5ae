package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/speaker-flow/internal/config"
	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
	"github.com/nguyentantai21042004/speaker-flow/internal/processor"
	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

type failingProcessor struct{}

func (failingProcessor) Process(context.Context, string) error { return errors.New("boom") }

func (failingProcessor) ProcessSegments(context.Context, string, string, []transcript.Segment) (processor.Output, error) {
	return processor.Output{}, errors.New("save job: connection refused")
}

type stubRepository struct {
	segments map[string][]transcript.Tagged
}

func (s stubRepository) EnsureSchema(context.Context) error { return nil }

func (s stubRepository) SaveJob(context.Context, string, string, []transcript.Tagged) error {
	return nil
}

func (s stubRepository) ListSegments(_ context.Context, jobID string) ([]transcript.Tagged, error) {
	return s.segments[jobID], nil
}

func (s stubRepository) Close() error { return nil }

func newTestServer(t *testing.T, proc processor.Processor, repo *stubRepository) *implServer {
	t.Helper()
	log := logger.New("error", "text")
	if proc == nil {
		cfg := &config.Config{Paths: config.PathsConfig{Input: t.TempDir(), Output: t.TempDir()}}
		require.NoError(t, cfg.Validate())
		proc = processor.New(cfg, diarization.New(diarization.DefaultParams(), log), log)
	}
	if repo == nil {
		return New(":0", proc, nil, log).(*implServer)
	}
	return New(":0", proc, repo, log).(*implServer)
}

func do(s *implServer, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(t, nil, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDiarize(t *testing.T) {
	body := `{"job_id":"req-1","segments":[
		{"start":0,"end":3,"text":"おはようございます。","no_speech_prob":0.05,"avg_logprob":-0.2},
		{"start":5,"end":8,"text":"よろしくお願いします。","no_speech_prob":0.05,"avg_logprob":-0.25}
	]}`

	rec := do(newTestServer(t, nil, nil), http.MethodPost, "/v1/diarize", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp diarizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.JobID)
	require.Len(t, resp.Assignments, 2)
	assert.Equal(t, 0, resp.Assignments[0].SegmentIndex)
	assert.Equal(t, 1, resp.Assignments[1].SegmentIndex)
	assert.NotEmpty(t, resp.Speakers)
	assert.False(t, resp.Fallback)
}

func TestDiarizeEmptySegments(t *testing.T) {
	rec := do(newTestServer(t, nil, nil), http.MethodPost, "/v1/diarize", `{"segments":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []any{}, resp["assignments"])
	assert.Equal(t, []any{}, resp["speakers"])
}

func TestDiarizeErrors(t *testing.T) {
	tests := []struct {
		name string
		proc processor.Processor
		body string
		code int
	}{
		{name: "malformed body", body: `{"segments":`, code: http.StatusBadRequest},
		{name: "wrong types", body: `{"segments":"nope"}`, code: http.StatusBadRequest},
		{name: "processor failure", proc: failingProcessor{}, body: `{"segments":[{"text":"a"}]}`, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newTestServer(t, tt.proc, nil), http.MethodPost, "/v1/diarize", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestJobSegments(t *testing.T) {
	repo := &stubRepository{segments: map[string][]transcript.Tagged{
		"job-1": {{SegmentIndex: 0, Speaker: "Speaker A", Text: "はい"}},
	}}
	s := newTestServer(t, nil, repo)

	rec := do(s, http.MethodGet, "/v1/jobs/job-1/segments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"segment_index":0,"speaker":"Speaker A","start":0,"end":0,"text":"はい"}]`, rec.Body.String())

	rec = do(s, http.MethodGet, "/v1/jobs/unknown/segments", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobSegmentsWithoutRepository(t *testing.T) {
	rec := do(newTestServer(t, nil, nil), http.MethodGet, "/v1/jobs/job-1/segments", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
