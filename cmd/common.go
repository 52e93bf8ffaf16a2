package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/ontypehq/qtts/internal/cache"
	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/dashscope"
	"github.com/ontypehq/qtts/internal/device"
	"github.com/ontypehq/qtts/internal/model"
	"github.com/ontypehq/qtts/internal/openaicompat"
	"github.com/ontypehq/qtts/internal/runner"
	"github.com/ontypehq/qtts/internal/ui"
	"github.com/ontypehq/qtts/internal/worker"
)

// signalContext is cancelled on Ctrl-C so backends can stop cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func dashscopeClient(cfg *config.AppConfig) (*dashscope.Client, error) {
	key, err := cfg.RequireAPIKey()
	if err != nil {
		return nil, err
	}
	return dashscope.NewClient(key, cfg.Config.DashScope.HTTPBaseURL), nil
}

func newBackend(cfg *config.AppConfig) (model.Backend, error) {
	c := cfg.Config
	switch c.Backend {
	case config.BackendDashScope:
		key, err := cfg.RequireAPIKey()
		if err != nil {
			return nil, err
		}
		return dashscope.NewBackend(
			dashscope.NewClient(key, c.DashScope.HTTPBaseURL),
			dashscope.NewRealtimeClient(key, c.DashScope.WSBaseURL),
			cfg,
		), nil
	case config.BackendLocal:
		return worker.NewBackend(worker.Config{
			Command: config.ExpandHome(c.Local.Command),
			Args:    c.Local.Args,
		})
	case config.BackendOpenAI:
		return openaicompat.NewBackend(openaicompat.Config{
			BaseURL:     c.OpenAI.BaseURL,
			APIKey:      c.OpenAI.APIKey,
			CloneModel:  c.OpenAI.CloneModel,
			DesignModel: c.OpenAI.DesignModel,
		})
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// newRegistry wires the configured backend with both model specs on the
// selected device. Loading is announced on the terminal.
func newRegistry(cfg *config.AppConfig, probe device.Probe) (*model.Registry, error) {
	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}
	dev := device.Select(cfg.Config.Environment.Device, probe)

	reg := model.NewRegistry(backend,
		model.Spec{Kind: model.KindClone, ID: cfg.Config.Models.Clone, Device: dev},
		model.Spec{Kind: model.KindDesign, ID: cfg.Config.Models.Design, Device: dev},
	)
	reg.OnLoad = announceLoad
	return reg, nil
}

func announceLoad(spec model.Spec, loaded bool) {
	if loaded {
		ui.Info("%s", ui.Dim("Model loaded."))
		return
	}
	ui.Info("Loading %s model on %s...", ui.Key(spec.Kind.Title()), spec.Device)
}

// withRunner builds a runner for one command and releases its models afterwards.
func withRunner(cfg *config.AppConfig, fn func(ctx context.Context, r *runner.Runner) (*runner.Result, error)) (*runner.Result, error) {
	reg, err := newRegistry(cfg, device.NewSystemProbe())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reg.Close(); err != nil {
			ui.Warn("%v", err)
		}
	}()

	ctx, cancel := signalContext()
	defer cancel()

	r := runner.New(cfg.Config, reg, cache.New(cfg.CacheDir()))
	res, err := fn(ctx, r)
	if runner.IsMissingReference(err) {
		ui.Info("  Run: %s", ui.Key("qtts init --ref-audio <file> --ref-text <transcript>"))
	}
	return res, err
}

func generatedLine(res *runner.Result) string {
	if res.Paragraphs > 0 {
		return fmt.Sprintf("Generated: %s (%.1fs, %d paragraphs)", res.Path, res.Duration.Seconds(), res.Paragraphs)
	}
	return fmt.Sprintf("Generated: %s (%.1fs in %.1fs)", res.Path, res.Duration.Seconds(), res.Elapsed.Seconds())
}

// report prints the success line and plays the file when asked.
func report(res *runner.Result, play bool) error {
	ui.Success("%s", generatedLine(res))
	if !play {
		return nil
	}
	clip, err := audio.ReadWAV(res.Path)
	if err != nil {
		return err
	}
	return audio.Play(clip)
}
