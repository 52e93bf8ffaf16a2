package dashscope

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/logging"
	"github.com/ontypehq/qtts/internal/model"
	"github.com/ontypehq/qtts/internal/text"
)

// VoiceStore remembers voices created on the service, keyed by a content hash.
type VoiceStore interface {
	Voice(key string) (config.VoiceRecord, bool)
	RememberVoice(key string, rec config.VoiceRecord) error
}

// Backend runs the Qwen3-TTS models hosted on DashScope. A "model" here is a
// handle to the service: cloning enrolls the reference audio once, design
// creates a voice from its description once, and both then synthesize
// through the realtime endpoint.
type Backend struct {
	client   *Client
	realtime *RealtimeClient
	store    VoiceStore
}

func NewBackend(client *Client, realtime *RealtimeClient, store VoiceStore) *Backend {
	return &Backend{client: client, realtime: realtime, store: store}
}

func (b *Backend) Name() string { return "dashscope" }

func (b *Backend) Load(_ context.Context, spec model.Spec) (model.Model, error) {
	switch spec.Kind {
	case model.KindClone, model.KindDesign:
	default:
		return nil, fmt.Errorf("dashscope: unknown model kind %q", spec.Kind)
	}
	if spec.Device != "" {
		logging.Debugf("dashscope runs remotely, device %s ignored", spec.Device)
	}
	return &hostedModel{kind: spec.Kind, b: b}, nil
}

type hostedModel struct {
	kind model.Kind
	b    *Backend
}

func (m *hostedModel) GenerateVoiceClone(ctx context.Context, req model.CloneRequest) (*audio.Clip, error) {
	if m.kind != model.KindClone {
		return nil, model.ErrUnsupported
	}
	voice, err := m.b.clonedVoice(ctx, req.RefAudio, req.RefText)
	if err != nil {
		return nil, err
	}
	return m.b.synthesize(ctx, TTSOptions{
		Model: ModelVCRealtime,
		Voice: voice,
		Text:  req.Text,
	})
}

func (m *hostedModel) GenerateVoiceDesign(ctx context.Context, req model.DesignRequest) (*audio.Clip, error) {
	if m.kind != model.KindDesign {
		return nil, model.ErrUnsupported
	}
	voice, err := m.b.designedVoice(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.b.synthesize(ctx, TTSOptions{
		Model:    ModelVDRealtime,
		Voice:    voice,
		Text:     req.Text,
		Language: LanguageType(req.Language),
	})
}

func (m *hostedModel) Close() error { return nil }

func (b *Backend) synthesize(ctx context.Context, opts TTSOptions) (*audio.Clip, error) {
	t0 := time.Now()
	pcm, err := b.realtime.Synthesize(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("realtime tts: %w", err)
	}
	if len(pcm) == 0 {
		return nil, model.ErrEmptyAudio
	}
	logging.Debugf("synthesized %d bytes with %s in %s", len(pcm), opts.Model, time.Since(t0).Round(time.Millisecond))
	return audio.FromPCM16(pcm, SampleRate), nil
}

func (b *Backend) clonedVoice(ctx context.Context, refAudio, refText string) (string, error) {
	data, err := os.ReadFile(refAudio)
	if err != nil {
		return "", fmt.Errorf("read reference audio: %w", err)
	}

	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(refText))
	h.Write([]byte{0})
	h.Write([]byte(ModelVCRealtime))
	key := "clone-" + hex.EncodeToString(h.Sum(nil))

	if rec, ok := b.lookup(key); ok {
		logging.Debugf("reusing enrolled voice %s", rec.VoiceID)
		return rec.VoiceID, nil
	}

	_, mime := audio.Sniff(data)
	if mime == "" {
		mime = "audio/wav"
	}
	uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)

	voice, err := b.client.EnrollVoice(ctx, voiceName(key), uri, refText)
	if err != nil {
		return "", fmt.Errorf("enroll voice: %w", err)
	}
	b.remember(key, config.VoiceRecord{
		VoiceID:     voice,
		TargetModel: ModelVCRealtime,
		Kind:        string(model.KindClone),
		Source:      refAudio,
		CreatedAt:   time.Now(),
	})
	return voice, nil
}

func (b *Backend) designedVoice(ctx context.Context, req model.DesignRequest) (string, error) {
	lang := LanguageCode(req.Language)
	sum := sha256.Sum256([]byte(req.Instruct + "\x00" + lang + "\x00" + ModelVDRealtime))
	key := "design-" + hex.EncodeToString(sum[:])

	if rec, ok := b.lookup(key); ok {
		logging.Debugf("reusing designed voice %s", rec.VoiceID)
		return rec.VoiceID, nil
	}

	voice, err := b.client.DesignVoice(ctx, voiceName(key), req.Instruct, text.Preview(req.Text, 200), lang)
	if err != nil {
		return "", fmt.Errorf("design voice: %w", err)
	}
	b.remember(key, config.VoiceRecord{
		VoiceID:     voice,
		TargetModel: ModelVDRealtime,
		Kind:        string(model.KindDesign),
		Source:      req.Instruct,
		CreatedAt:   time.Now(),
	})
	return voice, nil
}

func (b *Backend) lookup(key string) (config.VoiceRecord, bool) {
	if b.store == nil {
		return config.VoiceRecord{}, false
	}
	return b.store.Voice(key)
}

func (b *Backend) remember(key string, rec config.VoiceRecord) {
	if b.store == nil {
		return
	}
	if err := b.store.RememberVoice(key, rec); err != nil {
		logging.Warnf("could not save voice %s: %v", rec.VoiceID, err)
	}
}

// voiceName derives a preferred_name (at most 16 alphanumeric runes) from a cache key.
func voiceName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "qtts" + hex.EncodeToString(sum[:])[:10]
}
