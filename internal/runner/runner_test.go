package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/ontypehq/qtts/internal/cache"
	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	rate    int
	samples int
	err     error

	mu      sync.Mutex
	clones  []model.CloneRequest
	designs []model.DesignRequest
}

func (f *fakeModel) clip() *audio.Clip {
	return &audio.Clip{Samples: make([]float32, f.samples), SampleRate: f.rate}
}

func (f *fakeModel) GenerateVoiceClone(_ context.Context, req model.CloneRequest) (*audio.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clones = append(f.clones, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.clip(), nil
}

func (f *fakeModel) GenerateVoiceDesign(_ context.Context, req model.DesignRequest) (*audio.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.designs = append(f.designs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.clip(), nil
}

func (f *fakeModel) Close() error { return nil }

type fakeModels struct {
	clone  *fakeModel
	design *fakeModel
}

func (f fakeModels) Clone(context.Context) (model.Model, error)  { return f.clone, nil }
func (f fakeModels) Design(context.Context) (model.Model, error) { return f.design, nil }

var fixedNow = time.Unix(1700000000, 0)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.wav")
	require.NoError(t, os.WriteFile(ref, []byte("RIFF"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Output.DefaultDir = filepath.Join(dir, "out")
	cfg.Reference.Audio = ref
	cfg.Reference.Text = "reference words"
	return cfg
}

func newTestRunner(cfg config.Config, models Models, c *cache.Cache) *Runner {
	r := New(cfg, models, c)
	r.now = func() time.Time { return fixedNow }
	return r
}

func TestVoiceCloneUsesConfiguredReference(t *testing.T) {
	cfg := testConfig(t)
	fm := &fakeModel{rate: 24000, samples: 2400}
	r := newTestRunner(cfg, fakeModels{clone: fm}, nil)

	res, err := r.VoiceClone(context.Background(), CloneOptions{Text: "hello"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.Output.DefaultDir, "tts_1700000000.wav"), res.Path)
	assert.Equal(t, 100*time.Millisecond, res.Duration)
	assert.Zero(t, res.Paragraphs)
	assert.FileExists(t, res.Path)

	require.Len(t, fm.clones, 1)
	assert.Equal(t, cfg.Reference.Audio, fm.clones[0].RefAudio)
	assert.Equal(t, "reference words", fm.clones[0].RefText)
	assert.Equal(t, "hello", fm.clones[0].Text)
}

func TestVoiceCloneArgumentsOverrideConfig(t *testing.T) {
	cfg := testConfig(t)
	other := filepath.Join(t.TempDir(), "other.wav")
	require.NoError(t, os.WriteFile(other, []byte("RIFF"), 0o644))

	fm := &fakeModel{rate: 24000, samples: 10}
	r := newTestRunner(cfg, fakeModels{clone: fm}, nil)

	out := filepath.Join(t.TempDir(), "nested", "x.wav")
	res, err := r.VoiceClone(context.Background(), CloneOptions{Text: "hi", RefAudio: other, RefText: "other words", Output: out})
	require.NoError(t, err)
	assert.Equal(t, out, res.Path)
	assert.Equal(t, other, fm.clones[0].RefAudio)
	assert.Equal(t, "other words", fm.clones[0].RefText)
}

func TestVoiceCloneMissingReference(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reference = config.ReferenceConfig{}
	fm := &fakeModel{rate: 24000, samples: 10}
	r := newTestRunner(cfg, fakeModels{clone: fm}, nil)

	_, err := r.VoiceClone(context.Background(), CloneOptions{Text: "hi", RefAudio: "/tmp/only-audio.wav"})
	require.ErrorIs(t, err, model.ErrMissingReference)
	assert.True(t, IsMissingReference(err))
	assert.Contains(t, err.Error(), "qtts init")
	assert.Empty(t, fm.clones)
}

func TestVoiceCloneReferenceMustExist(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reference.Audio = filepath.Join(t.TempDir(), "gone.wav")
	r := newTestRunner(cfg, fakeModels{clone: &fakeModel{rate: 24000, samples: 10}}, nil)

	_, err := r.VoiceClone(context.Background(), CloneOptions{Text: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVoiceDesignDefaultsAndResample(t *testing.T) {
	cfg := testConfig(t)
	fm := &fakeModel{rate: 12000, samples: 1200}
	r := newTestRunner(cfg, fakeModels{design: fm}, nil)

	res, err := r.VoiceDesign(context.Background(), DesignOptions{Text: "안녕하세요"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Output.DefaultDir, "tts_design_1700000000.wav"), res.Path)

	require.Len(t, fm.designs, 1)
	assert.Equal(t, "Korean", fm.designs[0].Language)
	assert.Equal(t, cfg.Design.Instruct, fm.designs[0].Instruct)

	clip, err := audio.ReadWAV(res.Path)
	require.NoError(t, err)
	assert.Equal(t, 24000, clip.SampleRate)
	assert.Equal(t, 2400, clip.Len())
}

func TestVoiceDesignModelError(t *testing.T) {
	cfg := testConfig(t)
	boom := errors.New("boom")
	r := newTestRunner(cfg, fakeModels{design: &fakeModel{err: boom}}, nil)

	_, err := r.VoiceDesign(context.Background(), DesignOptions{Text: "x", Language: "English", Instruct: "calm"})
	assert.ErrorIs(t, err, boom)
}

func TestVoiceDesignEmptyAudio(t *testing.T) {
	cfg := testConfig(t)
	r := newTestRunner(cfg, fakeModels{design: &fakeModel{rate: 24000}}, nil)

	_, err := r.VoiceDesign(context.Background(), DesignOptions{Text: "x"})
	assert.ErrorIs(t, err, model.ErrEmptyAudio)
}
