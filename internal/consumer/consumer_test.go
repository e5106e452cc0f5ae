package consumer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/speaker-flow/internal/config"
	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
	"github.com/nguyentantai21042004/speaker-flow/internal/processor"
	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

type fakeAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

type fakeProcessor struct {
	paths    []string
	jobIDs   []string
	segments int
	err      error
}

func (f *fakeProcessor) Process(ctx context.Context, path string) error {
	f.paths = append(f.paths, path)
	if id, ok := logger.JobID(ctx); ok {
		f.jobIDs = append(f.jobIDs, id)
	}
	return f.err
}

func (f *fakeProcessor) ProcessSegments(_ context.Context, jobID, _ string, segments []transcript.Segment) (processor.Output, error) {
	f.jobIDs = append(f.jobIDs, jobID)
	f.segments += len(segments)
	return processor.Output{JobID: jobID}, f.err
}

func newTestConsumer(proc processor.Processor) *implConsumer {
	return New(config.RabbitMQConfig{Queue: "test", JobTimeout: time.Second}, proc, logger.New("error", "text")).(*implConsumer)
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "path", body: `{"job_id":"j1","transcript_path":"/in/a.json"}`},
		{name: "segments", body: `{"job_id":"j2","segments":[{"start":0,"end":1,"text":"はい"}]}`},
		{name: "neither", body: `{"job_id":"j3"}`, wantErr: true},
		{name: "not json", body: `hello`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := decodeMessage([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidMessage)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, msg.JobID)
		})
	}
}

func TestDecodeMessageGeneratesJobID(t *testing.T) {
	msg, err := decodeMessage([]byte(`{"transcript_path":"/in/a.json"}`))
	require.NoError(t, err)
	assert.Len(t, msg.JobID, 36)
}

func TestHandleDelivery(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		procErr      error
		wantAck      bool
		wantRequeue  bool
		wantNack     bool
		wantPaths    int
		wantSegments int
	}{
		{
			name:      "transcript path acked",
			body:      `{"job_id":"j1","transcript_path":"/in/a.json"}`,
			wantAck:   true,
			wantPaths: 1,
		},
		{
			name:         "inline segments acked",
			body:         `{"job_id":"j2","segments":[{"text":"a"},{"text":"b"}]}`,
			wantAck:      true,
			wantSegments: 2,
		},
		{
			name:        "processing failure requeued",
			body:        `{"job_id":"j3","transcript_path":"/in/a.json"}`,
			procErr:     errors.New("database down"),
			wantNack:    true,
			wantRequeue: true,
			wantPaths:   1,
		},
		{
			name:     "invalid body dropped",
			body:     `{"job_id":"j4"}`,
			wantNack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{err: tt.procErr}
			c := newTestConsumer(proc)
			ack := &fakeAck{}

			c.handleDelivery(context.Background(), []byte(tt.body), ack)

			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, tt.wantNack, ack.nacked)
			assert.Equal(t, tt.wantRequeue, ack.requeued)
			assert.Len(t, proc.paths, tt.wantPaths)
			assert.Equal(t, tt.wantSegments, proc.segments)
		})
	}
}

func TestHandleDeliveryPropagatesJobID(t *testing.T) {
	proc := &fakeProcessor{}
	c := newTestConsumer(proc)

	c.handleDelivery(context.Background(), []byte(`{"job_id":"job-7","transcript_path":"/in/a.json"}`), &fakeAck{})
	assert.Equal(t, []string{"job-7"}, proc.jobIDs)
}

func TestNextDelay(t *testing.T) {
	assert.Equal(t, 10*time.Second, nextDelay(5*time.Second))
	assert.Equal(t, maxReconnectDelay, nextDelay(4*time.Minute))
}

func TestStartStopsOnCancelledContext(t *testing.T) {
	c := newTestConsumer(&fakeProcessor{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c.Start(ctx)

	select {
	case <-c.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestNewDefaults(t *testing.T) {
	c := New(config.RabbitMQConfig{}, &fakeProcessor{}, logger.New("error", "text")).(*implConsumer)
	assert.Equal(t, 1, c.cfg.Prefetch)
	assert.Equal(t, 10*time.Minute, c.cfg.JobTimeout)
}

func newFileProcessor(t *testing.T) (processor.Processor, *config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{Paths: config.PathsConfig{
		Input:    filepath.Join(root, "input"),
		Output:   filepath.Join(root, "output"),
		Archived: filepath.Join(root, "archived"),
	}}
	require.NoError(t, cfg.Validate())
	require.NoError(t, os.MkdirAll(cfg.Paths.Input, 0755))

	log := logger.New("error", "text")
	return processor.New(cfg, diarization.New(diarization.DefaultParams(), log), log), cfg
}

func TestHandleDeliveryDropsUnrecoverableTranscripts(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing file"},
		{name: "malformed json", content: `{"segments":`},
		{name: "no segments", content: `{"segments":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, cfg := newFileProcessor(t)
			c := newTestConsumer(proc)

			path := filepath.Join(cfg.Paths.Input, "meeting.json")
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			}
			body := []byte(fmt.Sprintf(`{"job_id":"j1","transcript_path":%q}`, path))

			for delivery := 0; delivery < 3; delivery++ {
				ack := &fakeAck{}
				c.handleDelivery(context.Background(), body, ack)

				assert.False(t, ack.acked, "delivery %d", delivery)
				assert.True(t, ack.nacked, "delivery %d", delivery)
				assert.False(t, ack.requeued, "delivery %d", delivery)
			}
		})
	}
}

func TestHandleDeliveryAcksRealTranscript(t *testing.T) {
	proc, cfg := newFileProcessor(t)
	c := newTestConsumer(proc)

	path := filepath.Join(cfg.Paths.Input, "call.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"start":0,"end":2,"text":"もしもし"}]`), 0644))

	ack := &fakeAck{}
	c.handleDelivery(context.Background(), []byte(fmt.Sprintf(`{"transcript_path":%q}`, path)), ack)

	assert.True(t, ack.acked)
	assert.FileExists(t, filepath.Join(cfg.Paths.Archived, "call.json"))
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid message", fmt.Errorf("%w: no body", errInvalidMessage), true},
		{"missing file", fmt.Errorf("load transcript: %w", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}), true},
		{"no segments", fmt.Errorf("load transcript: %w", transcript.ErrNoSegments), true},
		{"malformed", fmt.Errorf("load transcript: %w", transcript.ErrMalformed), true},
		{"database down", errors.New("save job: connection refused"), false},
		{"timeout", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPermanent(tt.err))
		})
	}
}
