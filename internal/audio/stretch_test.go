package audio

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtempoFilter(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{1.5, "atempo=1.5"},
		{0.5, "atempo=0.5"},
		{2, "atempo=2"},
		{3, "atempo=2.0,atempo=1.5"},
		{0.25, "atempo=0.5,atempo=0.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AtempoFilter(tt.speed))
	}
}

func TestTimeStretchUnitSpeedIsNoop(t *testing.T) {
	c := Silence(0.1, 24000)
	out, err := TimeStretch(context.Background(), c, 1)
	require.NoError(t, err)
	assert.Same(t, c, out)
}

func TestTimeStretchRejectsBadSpeed(t *testing.T) {
	_, err := TimeStretch(context.Background(), Silence(0.1, 24000), 0)
	assert.Error(t, err)
}

func TestTimeStretchWithoutFFmpeg(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("missing") }
	t.Cleanup(func() { lookPath = orig })

	_, err := TimeStretch(context.Background(), Silence(0.1, 24000), 1.25)
	assert.ErrorIs(t, err, ErrNoTimeStretch)
}

func TestTimeStretchWithFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	c := &Clip{Samples: make([]float32, 24000), SampleRate: 24000}
	for i := range c.Samples {
		c.Samples[i] = float32(i%100) / 200
	}

	out, err := TimeStretch(context.Background(), c, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out.Seconds(), 0.1)
}
