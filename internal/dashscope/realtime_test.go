package dashscope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealtimeSynthesize(t *testing.T) {
	fs, srv := newFakeService(t)
	rc := NewRealtimeClient("test-key", wsURL(srv))

	pcm, err := rc.Synthesize(context.Background(), TTSOptions{
		Model:    ModelVCRealtime,
		Voice:    "qwen-tts-vc-cloned",
		Text:     "안녕하세요.",
		Language: "Korean",
	})
	require.NoError(t, err)
	assert.Equal(t, fs.pcm, pcm)

	require.Len(t, fs.Sessions(), 1)
	assert.Equal(t, "qwen-tts-vc-cloned", fs.Sessions()[0]["voice"])
	assert.Equal(t, "pcm", fs.Sessions()[0]["response_format"])
	assert.Equal(t, "Korean", fs.Sessions()[0]["language_type"])
	assert.EqualValues(t, SampleRate, fs.Sessions()[0]["sample_rate"])
	assert.EqualValues(t, 1, fs.Sessions()[0]["speech_rate"], "tempo is applied locally")
	assert.Equal(t, []string{"안녕하세요."}, fs.Texts())
	assert.Equal(t, []string{ModelVCRealtime}, fs.Models())
}

func TestRealtimeServerError(t *testing.T) {
	_, srv := newFakeService(t)
	rc := NewRealtimeClient("test-key", wsURL(srv))

	_, err := rc.Synthesize(context.Background(), TTSOptions{Model: ModelVCRealtime, Voice: "v", Text: "fail"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Contains(t, err.Error(), "InvalidText")
}
