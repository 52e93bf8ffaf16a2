package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/ontypehq/qtts/internal/cache"
	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/logging"
	"github.com/ontypehq/qtts/internal/model"
	"github.com/ontypehq/qtts/internal/text"
)

type ScriptOptions struct {
	Script string
	Output string
	// Pause between paragraphs in seconds; negative uses the configured value.
	Pause float64
	// Speed is the tempo factor; zero or negative uses the configured value.
	Speed float64
	// Resume reuses paragraphs synthesized by an earlier run.
	Resume bool
}

// Progress is reported once per paragraph before it is synthesized.
type Progress struct {
	Index  int
	Total  int
	Text   string
	Cached bool
}

// ScriptToAudio narrates a script file with the reference voice into a
// single WAV, paragraph by paragraph.
func (r *Runner) ScriptToAudio(ctx context.Context, opts ScriptOptions) (*Result, error) {
	start := r.now()

	scriptPath := config.ExpandHome(strings.TrimSpace(opts.Script))
	content, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	cleaned := text.CleanScript(string(content))
	if cleaned == "" {
		return nil, fmt.Errorf("script %s has no speakable text", scriptPath)
	}

	refAudio, refText, err := r.reference("", "")
	if err != nil {
		return nil, err
	}

	pause := opts.Pause
	if pause < 0 {
		pause = r.cfg.Script.Pause
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = r.cfg.Script.Speed
	}

	paragraphs := text.Split(cleaned, r.cfg.Script.MaxChars)
	logging.Infof("script %s: %d paragraphs", scriptPath, len(paragraphs))

	var refSum string
	if opts.Resume && r.cache != nil {
		data, err := os.ReadFile(refAudio)
		if err != nil {
			return nil, fmt.Errorf("read reference audio: %w", err)
		}
		refSum = cache.Key(string(data))
	}

	m, err := r.models.Clone(ctx)
	if err != nil {
		return nil, err
	}

	rate := r.cfg.Output.SampleRate
	if rate <= 0 {
		rate = audio.SampleRate
	}
	var gap *audio.Clip
	if pause > 0 {
		gap = audio.Silence(pause, rate)
	}

	clips := make([]*audio.Clip, 0, 2*len(paragraphs))
	for i, para := range paragraphs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := cache.Key(r.cfg.Backend, r.cfg.Models.Clone, refSum, refText, para)
		clip, cached := r.cached(opts.Resume, key)
		if r.Progress != nil {
			r.Progress(Progress{Index: i, Total: len(paragraphs), Text: para, Cached: cached})
		}
		if !cached {
			clip, err = m.GenerateVoiceClone(ctx, model.CloneRequest{
				Text:     para,
				RefAudio: refAudio,
				RefText:  refText,
			})
			if err != nil {
				return nil, fmt.Errorf("paragraph %d/%d: %w", i+1, len(paragraphs), err)
			}
			if opts.Resume && r.cache != nil {
				if err := r.cache.Put(key, clip); err != nil {
					logging.Warnf("cache paragraph %d: %v", i+1, err)
				}
			}
		}

		if clip.SampleRate != rate {
			clip = clip.Resample(rate)
		}
		clips = append(clips, clip)
		if gap != nil && i < len(paragraphs)-1 {
			clips = append(clips, gap)
		}
	}

	combined, err := audio.Concat(clips...)
	if err != nil {
		return nil, err
	}

	if speed != 1 {
		stretched, err := r.stretch(ctx, combined, speed)
		switch {
		case errors.Is(err, audio.ErrNoTimeStretch):
			logging.Warnf("ffmpeg not found, writing at normal speed instead of %.2fx", speed)
		case err != nil:
			return nil, fmt.Errorf("speed %.2f: %w", speed, err)
		default:
			combined = stretched
		}
	}

	stem := strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
	out := r.outputPath(opts.Output, stem+".wav")
	return r.write(out, combined, start, len(paragraphs))
}

func (r *Runner) cached(resume bool, key string) (*audio.Clip, bool) {
	if !resume || r.cache == nil {
		return nil, false
	}
	return r.cache.Get(key)
}
