package worker

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/ontypehq/qtts/internal/model"
)

const DefaultWarmup = 10 * time.Minute

type Config struct {
	Command string
	Args    []string
	// Env is appended to the current environment of every helper.
	Env    []string
	Warmup time.Duration
}

// Backend starts one helper per model kind.
type Backend struct {
	cfg Config
}

func NewBackend(cfg Config) (*Backend, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("local backend needs local.command in the config file")
	}
	if cfg.Warmup == 0 {
		cfg.Warmup = DefaultWarmup
	}
	return &Backend{cfg: cfg}, nil
}

func (b *Backend) Name() string { return "local" }

func (b *Backend) Load(ctx context.Context, spec model.Spec) (model.Model, error) {
	env := append([]string{
		"QTTS_MODEL_ID=" + spec.ID,
		"QTTS_MODEL_KIND=" + string(spec.Kind),
		"QTTS_DEVICE=" + spec.Device,
	}, b.cfg.Env...)
	if strings.HasPrefix(spec.Device, "mps") {
		env = append(env, "PYTORCH_ENABLE_MPS_FALLBACK=1")
	}

	p, err := Start(ctx, b.cfg.Command, b.cfg.Args, env, b.cfg.Warmup)
	if err != nil {
		return nil, err
	}
	return &localModel{kind: spec.Kind, proc: p}, nil
}

type localModel struct {
	kind model.Kind
	proc *Process
}

func (m *localModel) GenerateVoiceClone(ctx context.Context, req model.CloneRequest) (*audio.Clip, error) {
	if m.kind != model.KindClone {
		return nil, model.ErrUnsupported
	}
	return m.generate(ctx, Request{
		Task:     TaskClone,
		Text:     req.Text,
		RefAudio: req.RefAudio,
		RefText:  req.RefText,
	})
}

func (m *localModel) GenerateVoiceDesign(ctx context.Context, req model.DesignRequest) (*audio.Clip, error) {
	if m.kind != model.KindDesign {
		return nil, model.ErrUnsupported
	}
	return m.generate(ctx, Request{
		Task:     TaskDesign,
		Text:     req.Text,
		Language: req.Language,
		Instruct: req.Instruct,
	})
}

func (m *localModel) Close() error {
	return m.proc.Close()
}

func (m *localModel) generate(ctx context.Context, req Request) (*audio.Clip, error) {
	resp, err := m.proc.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.AudioBase64 == "" {
		return nil, model.ErrEmptyAudio
	}
	data, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	clip, err := audio.DecodeWAV(data)
	if err != nil {
		return nil, err
	}
	if clip.Len() == 0 {
		return nil, model.ErrEmptyAudio
	}
	return clip, nil
}
