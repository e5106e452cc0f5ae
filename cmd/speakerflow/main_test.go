package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

func writeTranscript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "call.json")
	body := `{"segments":[
		{"start":0,"end":2,"text":"もしもし","no_speech_prob":0.1,"avg_logprob":-0.3},
		{"start":6,"end":9,"text":"はい、聞こえます。","no_speech_prob":0.1,"avg_logprob":-0.3}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDiarizeCommandJSON(t *testing.T) {
	path := writeTranscript(t)

	out, err := runRoot(t, "diarize", "--config", filepath.Join(t.TempDir(), "none.yaml"), path)
	require.NoError(t, err)

	var tagged []transcript.Tagged
	require.NoError(t, json.Unmarshal([]byte(out), &tagged))
	require.Len(t, tagged, 2)
	assert.Equal(t, "もしもし", tagged[0].Text)
	assert.NotEmpty(t, tagged[1].Speaker)
}

func TestDiarizeCommandMarkdown(t *testing.T) {
	path := writeTranscript(t)

	out, err := runRoot(t, "diarize", "--markdown", "--config", filepath.Join(t.TempDir(), "none.yaml"), path)
	require.NoError(t, err)
	assert.Contains(t, out, "# call\n")
	assert.Contains(t, out, "はい、聞こえます。")
}

func TestDiarizeCommandRequiresFile(t *testing.T) {
	_, err := runRoot(t, "diarize")
	assert.Error(t, err)

	_, err = runRoot(t, "diarize", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestIgnoreCanceled(t *testing.T) {
	assert.NoError(t, ignoreCanceled(nil))
	assert.Error(t, ignoreCanceled(os.ErrNotExist))
}
