package cmd

import (
	"context"
	"sort"

	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/dashscope"
	"github.com/ontypehq/qtts/internal/model"
	"github.com/ontypehq/qtts/internal/ui"
)

type VoiceCmd struct {
	List   VoiceListCmd   `cmd:"" default:"withargs" help:"List voices created on DashScope"`
	Delete VoiceDeleteCmd `cmd:"" help:"Delete a cloned or designed voice"`
}

type VoiceListCmd struct{}

func (c *VoiceListCmd) Run(cfg *config.AppConfig) error {
	if len(cfg.State.Voices) > 0 {
		ui.Info("\n%s", ui.Key("Remembered Voices"))
		for _, rec := range sortedVoices(cfg.State.Voices) {
			ui.Info("  %-8s %s  %s  %s", ui.Key(rec.Kind), rec.VoiceID, ui.Dim(rec.CreatedAt.Format("2006-01-02")), ui.Dim(rec.Source))
		}
	}

	client, err := dashscopeClient(cfg)
	if err != nil {
		ui.Info("\n%s", ui.Dim("  (login to see voices stored on DashScope)"))
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	for _, m := range []struct{ title, model string }{
		{"Cloned Voices", dashscope.ModelEnrollment},
		{"Designed Voices", dashscope.ModelDesign},
	} {
		voices, err := client.ListVoices(ctx, m.model, 0, 50)
		if err != nil {
			ui.Warn("Failed to fetch %s: %v", m.title, err)
			continue
		}
		ui.Info("\n%s", ui.Key(m.title))
		if len(voices) == 0 {
			ui.Info("  %s", ui.Dim("none"))
			continue
		}
		for _, v := range voices {
			ui.Info("  %s  %s  %s  %s", ui.Key(v.Voice), ui.Dim(v.Language), ui.Dim(v.TargetModel), ui.Dim(v.GmtCreate))
		}
	}
	return nil
}

func sortedVoices(m map[string]config.VoiceRecord) []config.VoiceRecord {
	out := make([]config.VoiceRecord, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

type VoiceDeleteCmd struct {
	VoiceID string `arg:"" help:"Voice ID to delete"`
	Design  bool   `help:"The voice was created by voice_design (looked up automatically when remembered)"`
}

func (c *VoiceDeleteCmd) Run(cfg *config.AppConfig) error {
	client, err := dashscopeClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := deleteVoice(ctx, client, cfg, c.VoiceID, c.Design); err != nil {
		return err
	}
	ui.Success("Deleted voice: %s", c.VoiceID)
	return nil
}

type voiceDeleter interface {
	DeleteVoice(ctx context.Context, model, voiceID string) error
}

// deleteVoice removes the voice on the service, then forgets it locally.
func deleteVoice(ctx context.Context, client voiceDeleter, cfg *config.AppConfig, voiceID string, design bool) error {
	target := enrollmentModel(cfg.State.Voices, voiceID, design)
	if err := client.DeleteVoice(ctx, target, voiceID); err != nil {
		return err
	}
	_, err := cfg.ForgetVoice(voiceID)
	return err
}

func enrollmentModel(voices map[string]config.VoiceRecord, voiceID string, design bool) string {
	for _, rec := range voices {
		if rec.VoiceID == voiceID {
			design = rec.Kind == string(model.KindDesign)
			break
		}
	}
	if design {
		return dashscope.ModelDesign
	}
	return dashscope.ModelEnrollment
}
