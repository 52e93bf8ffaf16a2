package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/ontypehq/qtts/cmd"
	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/logging"
	"github.com/ontypehq/qtts/internal/ui"
)

var cli struct {
	Config  string `short:"c" help:"Config file (default ~/.qtts/config.yaml)"`
	Verbose bool   `help:"Debug logging"`

	VoiceClone    cmd.VoiceCloneCmd  `cmd:"" name:"voice_clone" aliases:"clone" help:"Speak text in a cloned reference voice"`
	VoiceDesign   cmd.VoiceDesignCmd `cmd:"" name:"voice_design" aliases:"design" help:"Speak text in a voice described in words"`
	ScriptToAudio cmd.ScriptCmd      `cmd:"" name:"script_to_audio" aliases:"script" help:"Narrate a script file into one WAV"`
	Init          cmd.InitCmd        `cmd:"" help:"Save the reference voice for cloning"`
	Voice         cmd.VoiceCmd       `cmd:"" help:"Manage voices stored on DashScope"`
	Auth          cmd.AuthCmd        `cmd:"" help:"Manage authentication"`
	Cache         cmd.CacheCmd       `cmd:"" help:"Manage the paragraph cache"`
	Device        cmd.DeviceCmd      `cmd:"" help:"Show which device models would run on"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("qtts"),
		kong.Description("Qwen3-TTS voice clone, voice design and script narration"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		ui.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	logCfg := logging.Config{Level: cfg.Config.Logging.Level, Format: cfg.Config.Logging.Format}
	if cli.Verbose {
		logCfg.Level = "debug"
	}
	if err := logging.Init(logCfg); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
	logging.SetRunID(logging.NewRunID())
	logging.Debugf("config %q backend %s", cfg.Path, cfg.Config.Backend)

	err = ctx.Run(cfg)
	logging.Sync()
	ctx.FatalIfErrorf(err)
}
