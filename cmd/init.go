package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ontypehq/qtts/internal/audio"
	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/dashscope"
	"github.com/ontypehq/qtts/internal/ui"
)

const asrSampleRate = 16000

var sampleTexts = map[string]string{
	"zh": "今天天气真不错，适合出去走走。技术正在以前所未有的速度发展，改变着我们的生活方式。",
	"en": "The quick brown fox jumps over the lazy dog. Technology is evolving faster than ever before, reshaping how we live and work.",
	"ja": "今日はとても良い天気ですね。テクノロジーはかつてないスピードで進化しています。私たちの生活を大きく変えています。",
	"ko": "오늘 날씨가 정말 좋네요, 산책하기 딱 좋아요. 기술은 전례 없는 속도로 발전하며 우리의 생활 방식을 바꾸고 있습니다.",
	"de": "Das Wetter ist heute wirklich schön, perfekt für einen Spaziergang. Die Technologie entwickelt sich schneller als je zuvor.",
	"fr": "Le temps est vraiment magnifique aujourd'hui, parfait pour une promenade. La technologie évolue plus vite que jamais.",
	"es": "El tiempo está muy bonito hoy, perfecto para dar un paseo. La tecnología avanza más rápido que nunca.",
}

// InitCmd saves the reference voice used by voice_clone and script_to_audio.
type InitCmd struct {
	RefAudio string `help:"Existing reference recording"`
	RefText  string `help:"Transcript of the reference (transcribed with Qwen3-ASR when omitted)"`
	Record   bool   `help:"Record a new reference from the microphone"`
	Duration int    `short:"d" default:"12" help:"Recording length in seconds"`
	Language string `short:"l" help:"Language of the sample sentence to read (defaults to design.language)"`
}

func (c *InitCmd) Run(cfg *config.AppConfig) error {
	refAudio := config.ExpandHome(strings.TrimSpace(c.RefAudio))
	refText := strings.TrimSpace(c.RefText)

	switch {
	case c.Record:
		path, sample, err := c.record(cfg)
		if err != nil {
			return err
		}
		refAudio = path
		if refText == "" {
			refText = sample
		}
	case refAudio == "":
		return errors.New("give --ref-audio <file> or --record")
	}

	abs, err := filepath.Abs(refAudio)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("reference audio: %w", err)
	}

	if refText == "" {
		refText, err = transcribe(cfg, data)
		if err != nil {
			return err
		}
	}

	cfg.Config.Reference = config.ReferenceConfig{Audio: abs, Text: refText}
	if err := cfg.Save(); err != nil {
		return err
	}

	ui.Success("Reference saved")
	ui.KV("Audio", abs)
	ui.KV("Text", refText)
	ui.KV("Config", cfg.Path)
	return nil
}

// record captures the microphone while the user reads a sample sentence
// and returns the saved WAV path with that sentence as its transcript.
func (c *InitCmd) record(cfg *config.AppConfig) (string, string, error) {
	lang := c.Language
	if lang == "" {
		lang = cfg.Config.Design.Language
	}
	sample := sampleText(lang)

	ui.Info("\n%s", ui.Key("Read this aloud:"))
	ui.Info("  %s\n", sample)
	ui.Info("Recording for %ds... %s", c.Duration, ui.Dim("(speak now, Ctrl-C stops early)"))

	ctx, cancel := signalContext()
	defer cancel()
	clip, err := audio.Record(ctx, time.Duration(c.Duration)*time.Second, audio.SampleRate)
	if err != nil {
		return "", "", fmt.Errorf("record: %w", err)
	}
	if clip.Len() == 0 {
		return "", "", errors.New("nothing was recorded")
	}
	ui.Info("%s %s", ui.Dim("recorded"), ui.Dim(fmt.Sprintf("%.1fs", clip.Seconds())))

	path := filepath.Join(cfg.Dir, "voices", fmt.Sprintf("reference-%d.wav", time.Now().Unix()))
	if err := audio.WriteWAV(path, clip); err != nil {
		return "", "", err
	}
	return path, sample, nil
}

// transcribe turns a WAV reference into text with Qwen3-ASR.
func transcribe(cfg *config.AppConfig, data []byte) (string, error) {
	if ext, _ := audio.Sniff(data); ext != "wav" {
		return "", errors.New("reference is not WAV, pass --ref-text with its transcript")
	}
	clip, err := audio.DecodeWAV(data)
	if err != nil {
		return "", err
	}
	wav, err := audio.WAVBytes(clip.Resample(asrSampleRate))
	if err != nil {
		return "", err
	}

	client, err := dashscopeClient(cfg)
	if err != nil {
		return "", fmt.Errorf("transcript needed: pass --ref-text or log in (%w)", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	t0 := time.Now()
	ui.Info("%s %s", ui.Dim("transcribing with"), ui.Key(dashscope.ModelASRFlash))
	out, err := client.Transcribe(ctx, wav, "")
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	ui.Info("%s %s", ui.Dim("latency"), ui.Dim(time.Since(t0).Round(time.Millisecond).String()))

	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("transcript is empty, pass --ref-text")
	}
	return out, nil
}

func sampleText(lang string) string {
	if s, ok := sampleTexts[dashscope.LanguageCode(lang)]; ok {
		return s
	}
	return sampleTexts["en"]
}
