package cmd

import (
	"context"

	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/runner"
	"github.com/ontypehq/qtts/internal/text"
	"github.com/ontypehq/qtts/internal/ui"
)

type VoiceCloneCmd struct {
	Text     string `short:"t" required:"" help:"Text to speak"`
	RefAudio string `help:"Reference audio (defaults to reference.audio)"`
	RefText  string `help:"Transcript of the reference audio (defaults to reference.text)"`
	Output   string `short:"o" help:"Output WAV path (default <output.default_dir>/tts_<unix>.wav)"`
	Play     bool   `help:"Play the result when done"`
}

func (c *VoiceCloneCmd) Run(cfg *config.AppConfig) error {
	res, err := withRunner(cfg, func(ctx context.Context, r *runner.Runner) (*runner.Result, error) {
		return r.VoiceClone(ctx, runner.CloneOptions{
			Text:     c.Text,
			RefAudio: c.RefAudio,
			RefText:  c.RefText,
			Output:   c.Output,
		})
	})
	if err != nil {
		return err
	}
	return report(res, c.Play)
}

type VoiceDesignCmd struct {
	Text     string `short:"t" required:"" help:"Text to speak"`
	Language string `short:"l" help:"Language (defaults to design.language)"`
	Instruct string `short:"i" help:"Voice description (defaults to design.instruct)"`
	Output   string `short:"o" help:"Output WAV path (default <output.default_dir>/tts_design_<unix>.wav)"`
	Play     bool   `help:"Play the result when done"`
}

func (c *VoiceDesignCmd) Run(cfg *config.AppConfig) error {
	res, err := withRunner(cfg, func(ctx context.Context, r *runner.Runner) (*runner.Result, error) {
		return r.VoiceDesign(ctx, runner.DesignOptions{
			Text:     c.Text,
			Language: c.Language,
			Instruct: c.Instruct,
			Output:   c.Output,
		})
	})
	if err != nil {
		return err
	}
	return report(res, c.Play)
}

type ScriptCmd struct {
	Script string  `short:"s" required:"" help:"Script file (markdown headings and rules are skipped)"`
	Output string  `short:"o" help:"Output WAV path (default <output.default_dir>/<script name>.wav)"`
	Pause  float64 `default:"-1" help:"Silence between paragraphs in seconds (default script.pause)"`
	Speed  float64 `default:"0" help:"Tempo factor, 1.2 is 20% faster (default script.speed)"`
	Resume bool    `help:"Reuse paragraphs synthesized by an earlier run"`
	Play   bool    `help:"Play the result when done"`
}

func (c *ScriptCmd) Run(cfg *config.AppConfig) error {
	var bar *ui.Progress
	res, err := withRunner(cfg, func(ctx context.Context, r *runner.Runner) (*runner.Result, error) {
		r.Progress = func(p runner.Progress) {
			if bar == nil {
				bar = ui.NewProgress(p.Total, "script")
			}
			label := text.Preview(p.Text, 40)
			if p.Cached {
				label = "(cached) " + label
			}
			bar.Step(p.Index, label)
		}
		return r.ScriptToAudio(ctx, runner.ScriptOptions{
			Script: c.Script,
			Output: c.Output,
			Pause:  c.Pause,
			Speed:  c.Speed,
			Resume: c.Resume,
		})
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	return report(res, c.Play)
}
