// Package runner implements the three synthesis tasks on top of the
// model registry: voice clone, voice design and script narration.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/ontypehq/qtts/internal/cache"
	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/logging"
	"github.com/ontypehq/qtts/internal/model"
)

// Models hands out loaded models. *model.Registry satisfies it.
type Models interface {
	Clone(ctx context.Context) (model.Model, error)
	Design(ctx context.Context) (model.Model, error)
}

// Result describes one written WAV file.
type Result struct {
	Path       string
	Duration   time.Duration
	Elapsed    time.Duration
	Paragraphs int
}

type Runner struct {
	cfg    config.Config
	models Models
	cache  *cache.Cache

	// Progress, when set, is called before each script paragraph.
	Progress func(Progress)

	now     func() time.Time
	stretch func(ctx context.Context, c *audio.Clip, speed float64) (*audio.Clip, error)
}

// New builds a Runner. cache may be nil, which disables script resume.
func New(cfg config.Config, models Models, c *cache.Cache) *Runner {
	return &Runner{
		cfg:     cfg,
		models:  models,
		cache:   c,
		now:     time.Now,
		stretch: audio.TimeStretch,
	}
}

type CloneOptions struct {
	Text     string
	RefAudio string
	RefText  string
	Output   string
}

// VoiceClone speaks Text in the voice of the reference recording. Empty
// reference fields fall back to the configured reference.
func (r *Runner) VoiceClone(ctx context.Context, opts CloneOptions) (*Result, error) {
	start := r.now()

	refAudio, refText, err := r.reference(opts.RefAudio, opts.RefText)
	if err != nil {
		return nil, err
	}

	m, err := r.models.Clone(ctx)
	if err != nil {
		return nil, err
	}
	clip, err := m.GenerateVoiceClone(ctx, model.CloneRequest{
		Text:     opts.Text,
		RefAudio: refAudio,
		RefText:  refText,
	})
	if err != nil {
		return nil, fmt.Errorf("voice clone: %w", err)
	}

	out := r.outputPath(opts.Output, fmt.Sprintf("tts_%d.wav", start.Unix()))
	return r.write(out, clip, start, 0)
}

type DesignOptions struct {
	Text     string
	Language string
	Instruct string
	Output   string
}

// VoiceDesign speaks Text in a voice described by Instruct.
func (r *Runner) VoiceDesign(ctx context.Context, opts DesignOptions) (*Result, error) {
	start := r.now()

	lang := strings.TrimSpace(opts.Language)
	if lang == "" {
		lang = r.cfg.Design.Language
	}
	instruct := strings.TrimSpace(opts.Instruct)
	if instruct == "" {
		instruct = r.cfg.Design.Instruct
	}

	m, err := r.models.Design(ctx)
	if err != nil {
		return nil, err
	}
	clip, err := m.GenerateVoiceDesign(ctx, model.DesignRequest{
		Text:     opts.Text,
		Language: lang,
		Instruct: instruct,
	})
	if err != nil {
		return nil, fmt.Errorf("voice design: %w", err)
	}

	out := r.outputPath(opts.Output, fmt.Sprintf("tts_design_%d.wav", start.Unix()))
	return r.write(out, clip, start, 0)
}

// reference resolves the reference pair from arguments or config and
// checks that the audio file exists.
func (r *Runner) reference(audioPath, refText string) (string, string, error) {
	if strings.TrimSpace(audioPath) == "" {
		audioPath = r.cfg.Reference.Audio
	}
	if strings.TrimSpace(refText) == "" {
		refText = r.cfg.Reference.Text
	}
	audioPath = strings.TrimSpace(audioPath)
	refText = strings.TrimSpace(refText)
	if audioPath == "" || refText == "" {
		return "", "", fmt.Errorf("%w: run `qtts init` first", model.ErrMissingReference)
	}

	audioPath = config.ExpandHome(audioPath)
	if _, err := os.Stat(audioPath); err != nil {
		return "", "", fmt.Errorf("reference audio %s: %w", audioPath, err)
	}
	return audioPath, refText, nil
}

func (r *Runner) outputPath(output, name string) string {
	if strings.TrimSpace(output) != "" {
		return config.ExpandHome(output)
	}
	return filepath.Join(config.ExpandHome(r.cfg.Output.DefaultDir), name)
}

// write resamples clip to the configured output rate and saves it.
func (r *Runner) write(path string, clip *audio.Clip, start time.Time, paragraphs int) (*Result, error) {
	if clip.Len() == 0 {
		return nil, model.ErrEmptyAudio
	}
	if rate := r.cfg.Output.SampleRate; rate > 0 && clip.SampleRate != rate {
		clip = clip.Resample(rate)
	}
	if err := audio.WriteWAV(path, clip); err != nil {
		return nil, err
	}
	logging.Infof("wrote %s (%.2fs at %d Hz)", path, clip.Seconds(), clip.SampleRate)
	return &Result{
		Path:       path,
		Duration:   clip.Duration(),
		Elapsed:    r.now().Sub(start),
		Paragraphs: paragraphs,
	}, nil
}

// IsMissingReference reports whether err means no reference was configured.
func IsMissingReference(err error) bool {
	return errors.Is(err, model.ErrMissingReference)
}
