package model

import (
	"context"
	"errors"
	"testing"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	closed bool
}

func (m *stubModel) GenerateVoiceClone(context.Context, CloneRequest) (*audio.Clip, error) {
	return audio.Silence(0.1, audio.SampleRate), nil
}

func (m *stubModel) GenerateVoiceDesign(context.Context, DesignRequest) (*audio.Clip, error) {
	return nil, ErrUnsupported
}

func (m *stubModel) Close() error {
	m.closed = true
	return nil
}

type countingBackend struct {
	loads map[Kind]int
	fail  int
	made  []*stubModel
}

func (b *countingBackend) Name() string { return "counting" }

func (b *countingBackend) Load(_ context.Context, spec Spec) (Model, error) {
	if b.loads == nil {
		b.loads = map[Kind]int{}
	}
	b.loads[spec.Kind]++
	if b.fail > 0 {
		b.fail--
		return nil, errors.New("boom")
	}
	m := &stubModel{}
	b.made = append(b.made, m)
	return m, nil
}

func specs() []Spec {
	return []Spec{
		{Kind: KindClone, ID: "Qwen/clone", Device: "cpu"},
		{Kind: KindDesign, ID: "Qwen/design", Device: "cpu"},
	}
}

func TestRegistryLoadsLazilyAndOnce(t *testing.T) {
	b := &countingBackend{}
	r := NewRegistry(b, specs()...)

	assert.False(t, r.Loaded(KindClone))
	assert.Empty(t, b.loads)

	m1, err := r.Clone(context.Background())
	require.NoError(t, err)
	m2, err := r.Clone(context.Background())
	require.NoError(t, err)

	assert.Same(t, m1, m2)
	assert.Equal(t, 1, b.loads[KindClone])
	assert.Zero(t, b.loads[KindDesign])
	assert.True(t, r.Loaded(KindClone))
	assert.False(t, r.Loaded(KindDesign))
}

func TestRegistryRetriesFailedLoad(t *testing.T) {
	b := &countingBackend{fail: 1}
	r := NewRegistry(b, specs()...)

	_, err := r.Design(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Qwen/design")

	_, err = r.Design(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, b.loads[KindDesign])
}

func TestRegistryOnLoadHook(t *testing.T) {
	var events []bool
	r := NewRegistry(&countingBackend{}, specs()...)
	r.OnLoad = func(spec Spec, loaded bool) {
		assert.Equal(t, KindClone, spec.Kind)
		events = append(events, loaded)
	}

	_, err := r.Clone(context.Background())
	require.NoError(t, err)
	_, err = r.Clone(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []bool{false, true}, events)
}

func TestRegistryUnknownKind(t *testing.T) {
	r := NewRegistry(&countingBackend{}, Spec{Kind: KindClone, ID: "x"})
	_, err := r.Design(context.Background())
	assert.Error(t, err)
}

func TestRegistryClose(t *testing.T) {
	b := &countingBackend{}
	r := NewRegistry(b, specs()...)
	_, err := r.Clone(context.Background())
	require.NoError(t, err)
	_, err = r.Design(context.Background())
	require.NoError(t, err)

	require.NoError(t, r.Close())
	for _, m := range b.made {
		assert.True(t, m.closed)
	}
	assert.False(t, r.Loaded(KindClone))
}
