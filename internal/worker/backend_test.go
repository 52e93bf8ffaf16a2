package worker

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/ontypehq/qtts/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperWorker is not a real test: it is the helper process spawned by
// the tests below, speaking the line protocol on stdin/stdout.
func TestHelperWorker(t *testing.T) {
	mode := os.Getenv("QTTS_HELPER_WORKER")
	if mode == "" {
		return
	}
	if mode == "crash" {
		fmt.Fprintln(os.Stderr, "ModuleNotFoundError: No module named 'qwen_tts'")
		os.Exit(1)
	}

	wav, err := audio.WAVBytes(audio.Silence(0.5, 24000))
	if err != nil {
		os.Exit(2)
	}
	enc := json.NewEncoder(os.Stdout)
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		var req Request
		if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
			os.Exit(3)
		}
		resp := Response{ID: req.ID, OK: true}
		switch req.Task {
		case TaskPing:
		case TaskClone:
			if req.RefAudio == "" {
				resp = Response{ID: req.ID, Error: "ref_audio required"}
				break
			}
			resp.SampleRate = 24000
			resp.AudioBase64 = base64.StdEncoding.EncodeToString(wav)
		case TaskDesign:
			if req.Instruct == "slow" {
				time.Sleep(5 * time.Second)
			}
			// echo device and model back through the error channel for inspection
			if req.Text == "env" {
				resp = Response{ID: req.ID, Error: os.Getenv("QTTS_MODEL_ID") + "|" + os.Getenv("QTTS_DEVICE") + "|" + os.Getenv("QTTS_MODEL_KIND")}
				break
			}
			resp.SampleRate = 24000
			resp.AudioBase64 = base64.StdEncoding.EncodeToString(wav)
		default:
			resp = Response{ID: req.ID, Error: "unknown task " + req.Task}
		}
		_ = enc.Encode(resp)
	}
	os.Exit(0)
}

func helperBackend(t *testing.T, mode string) *Backend {
	b, err := NewBackend(Config{
		Command: os.Args[0],
		Args:    []string{"-test.run=^TestHelperWorker$"},
		Env:     []string{"QTTS_HELPER_WORKER=" + mode},
		Warmup:  30 * time.Second,
	})
	require.NoError(t, err)
	return b
}

func TestNewBackendRequiresCommand(t *testing.T) {
	_, err := NewBackend(Config{})
	assert.Error(t, err)
}

func TestLocalClone(t *testing.T) {
	b := helperBackend(t, "ok")
	m, err := b.Load(context.Background(), model.Spec{Kind: model.KindClone, ID: "Qwen/base", Device: "cpu"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	clip, err := m.GenerateVoiceClone(context.Background(), model.CloneRequest{Text: "hi", RefAudio: "/tmp/ref.wav", RefText: "ref"})
	require.NoError(t, err)
	assert.Equal(t, 24000, clip.SampleRate)
	assert.Equal(t, 12000, clip.Len())

	_, err = m.GenerateVoiceClone(context.Background(), model.CloneRequest{Text: "hi"})
	assert.ErrorContains(t, err, "ref_audio required")

	_, err = m.GenerateVoiceDesign(context.Background(), model.DesignRequest{Text: "hi"})
	assert.ErrorIs(t, err, model.ErrUnsupported)
}

func TestLocalDesignReceivesSpecEnv(t *testing.T) {
	b := helperBackend(t, "ok")
	m, err := b.Load(context.Background(), model.Spec{Kind: model.KindDesign, ID: "Qwen/design", Device: "cuda:0"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	_, err = m.GenerateVoiceDesign(context.Background(), model.DesignRequest{Text: "env"})
	assert.ErrorContains(t, err, "Qwen/design|cuda:0|design")

	clip, err := m.GenerateVoiceDesign(context.Background(), model.DesignRequest{Text: "hello", Language: "English", Instruct: "bright"})
	require.NoError(t, err)
	assert.Positive(t, clip.Len())
}

func TestLocalCallHonoursContext(t *testing.T) {
	b := helperBackend(t, "ok")
	m, err := b.Load(context.Background(), model.Spec{Kind: model.KindDesign, ID: "Qwen/design", Device: "cpu"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = m.GenerateVoiceDesign(ctx, model.DesignRequest{Text: "x", Instruct: "slow"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = m.GenerateVoiceDesign(context.Background(), model.DesignRequest{Text: "x"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLocalStartupFailureReportsStderr(t *testing.T) {
	b := helperBackend(t, "crash")
	_, err := b.Load(context.Background(), model.Spec{Kind: model.KindClone, ID: "Qwen/base", Device: "cpu"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No module named 'qwen_tts'")
}
