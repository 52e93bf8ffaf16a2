package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeySeparatesParts(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("ab", ""), Key("a", "b"))
	assert.Len(t, Key("x"), 64)
}

func TestPutGetStatsClear(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	_, ok := c.Get(Key("missing"))
	assert.False(t, ok)

	clip := &audio.Clip{Samples: []float32{0, 0.5, -0.5, 0.25}, SampleRate: 24000}
	require.NoError(t, c.Put(Key("p1"), clip))
	require.NoError(t, c.Put(Key("p2"), clip))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644))

	got, ok := c.Get(Key("p1"))
	require.True(t, ok)
	assert.Equal(t, 24000, got.SampleRate)
	assert.Equal(t, 4, got.Len())

	s, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Files)
	assert.Positive(t, s.Bytes)

	n, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))

	s, err = c.Stats()
	require.NoError(t, err)
	assert.Zero(t, s.Files)
}

func TestMissingDir(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nope"))
	s, err := c.Stats()
	require.NoError(t, err)
	assert.Zero(t, s.Files)

	n, err := c.Clear()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2<<20))
	assert.Equal(t, "1.0 GB", FormatSize(1<<30))
}
