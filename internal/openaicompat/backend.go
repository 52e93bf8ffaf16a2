// Package openaicompat talks to servers exposing an OpenAI-compatible
// /v1/audio/speech endpoint, such as LocalAI hosting a Qwen3-TTS backend.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/ontypehq/qtts/internal/model"
	openai "github.com/sashabaranov/go-openai"
)

type Config struct {
	BaseURL string
	APIKey  string
	// Model names on the server; empty uses the configured model ID.
	CloneModel  string
	DesignModel string
}

type Backend struct {
	cfg    Config
	client *openai.Client
}

func NewBackend(cfg Config) (*Backend, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("openai backend needs openai.base_url (or OPENAI_BASE_URL)")
	}
	c := openai.DefaultConfig(cfg.APIKey)
	c.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Backend{cfg: cfg, client: openai.NewClientWithConfig(c)}, nil
}

func (b *Backend) Name() string { return "openai" }

func (b *Backend) Load(_ context.Context, spec model.Spec) (model.Model, error) {
	name := spec.ID
	switch spec.Kind {
	case model.KindClone:
		if b.cfg.CloneModel != "" {
			name = b.cfg.CloneModel
		}
	case model.KindDesign:
		if b.cfg.DesignModel != "" {
			name = b.cfg.DesignModel
		}
	default:
		return nil, fmt.Errorf("openai: unknown model kind %q", spec.Kind)
	}
	return &speechModel{kind: spec.Kind, name: name, client: b.client}, nil
}

type speechModel struct {
	kind   model.Kind
	name   string
	client *openai.Client
}

// GenerateVoiceClone passes the reference audio path as the voice, which
// is how LocalAI selects a cloning reference.
func (m *speechModel) GenerateVoiceClone(ctx context.Context, req model.CloneRequest) (*audio.Clip, error) {
	if m.kind != model.KindClone {
		return nil, model.ErrUnsupported
	}
	return m.speak(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(m.name),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(req.RefAudio),
		Instructions:   req.RefText,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
}

// GenerateVoiceDesign sends the description as instructions and the
// language as the voice.
func (m *speechModel) GenerateVoiceDesign(ctx context.Context, req model.DesignRequest) (*audio.Clip, error) {
	if m.kind != model.KindDesign {
		return nil, model.ErrUnsupported
	}
	return m.speak(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(m.name),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(req.Language),
		Instructions:   req.Instruct,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
}

func (m *speechModel) Close() error { return nil }

func (m *speechModel) speak(ctx context.Context, req openai.CreateSpeechRequest) (*audio.Clip, error) {
	resp, err := m.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	if len(data) == 0 {
		return nil, model.ErrEmptyAudio
	}
	return audio.DecodeWAV(data)
}
