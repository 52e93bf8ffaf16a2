// Package model defines the pretrained TTS models the runner drives and
// loads them lazily.
package model

import (
	"context"
	"errors"

	"github.com/ontypehq/qtts/internal/audio"
)

var (
	ErrMissingReference = errors.New("reference audio and text are required")
	ErrUnsupported      = errors.New("operation not supported by this model")
	ErrEmptyAudio       = errors.New("model returned no audio")
)

type Kind string

const (
	KindClone  Kind = "clone"
	KindDesign Kind = "design"
)

func (k Kind) Title() string {
	switch k {
	case KindClone:
		return "Voice Clone"
	case KindDesign:
		return "Voice Design"
	default:
		return string(k)
	}
}

// Spec identifies one pretrained model and where it should run.
type Spec struct {
	Kind   Kind
	ID     string
	Device string
}

type CloneRequest struct {
	Text     string
	RefAudio string
	RefText  string
}

type DesignRequest struct {
	Text     string
	Language string
	Instruct string
}

// Model is a loaded pretrained model. A clone model only has to implement
// GenerateVoiceClone and a design model only GenerateVoiceDesign; the other
// method returns ErrUnsupported.
type Model interface {
	GenerateVoiceClone(ctx context.Context, req CloneRequest) (*audio.Clip, error)
	GenerateVoiceDesign(ctx context.Context, req DesignRequest) (*audio.Clip, error)
	Close() error
}

// Backend instantiates models on some runtime.
type Backend interface {
	Name() string
	Load(ctx context.Context, spec Spec) (Model, error)
}
